package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hyperjump/kensa/internal/analysis"
	"github.com/hyperjump/kensa/internal/grading"
	"github.com/hyperjump/kensa/internal/llm"
	"github.com/hyperjump/kensa/internal/models"
	"github.com/hyperjump/kensa/internal/storage"
	"go.uber.org/zap"
)

// maxJSONBody bounds JSON request bodies for the core API.
const maxJSONBody = 4 << 20

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := s.svc.Status
	if s.svc.VectorDB != "" {
		size, err := storage.DatabaseUsageBytes(s.svc.VectorDB)
		if err != nil {
			s.logger.Warn("status: vector database size", zap.Error(err))
		}
		resp.VectorDBBytes = size
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req models.ExtractRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	s.respondJSON(w, http.StatusOK, models.ExtractResponse{Keywords: s.svc.Keywords.Extract(req.Text)})
}

func (s *Server) handleSimilarity(w http.ResponseWriter, r *http.Request) {
	var req models.SimilarityRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	score, err := s.svc.Scorer.Similarity(r.Context(), req.A, req.B)
	if err != nil {
		s.logger.Error("similarity failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.SimilarityResponse{Similarity: score})
}

func (s *Server) handleGrade(w http.ResponseWriter, r *http.Request) {
	var req models.GradeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	grade, err := s.svc.Grader.Grade(r.Context(), req.JobDescription, req.ResumeText)
	if err != nil {
		s.logger.Error("grading failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.GradeResponse{Grade: grade})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if !s.svc.Status.LLMConfigured {
		s.respondError(w, http.StatusServiceUnavailable, llm.ErrNotConfigured.Error())
		return
	}
	if err := s.parseMultipart(w, r); err != nil {
		s.respondUploadError(w, err)
		return
	}
	docs, err := s.readDocuments(r, "file")
	if err != nil {
		s.respondUploadError(w, err)
		return
	}
	s.logger.Debug("parse request", zap.String("file", docs[0].Name), zap.String("id", docs[0].ID))
	profile, err := s.svc.Profiles.Parse(r.Context(), docs[0].Text)
	if err != nil {
		s.respondModelError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, profile)
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	if err := s.parseMultipart(w, r); err != nil {
		s.respondUploadError(w, err)
		return
	}
	req := models.RankRequest{
		JobDescription: r.FormValue("job_description"),
		SortByGrade:    r.FormValue("sort") == "grade",
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	docs, err := s.readDocuments(r, "files")
	if err != nil {
		s.respondUploadError(w, err)
		return
	}
	s.logger.Debug("rank request", zap.Int("files", len(docs)), zap.Bool("sort", req.SortByGrade))
	records, err := s.svc.Grader.Rank(r.Context(), req.JobDescription, docs)
	if err != nil {
		s.logger.Error("ranking failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if req.SortByGrade {
		grading.SortByGrade(records)
	}
	s.respondJSON(w, http.StatusOK, records)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if !s.svc.Status.LLMConfigured {
		s.respondError(w, http.StatusServiceUnavailable, llm.ErrNotConfigured.Error())
		return
	}
	if err := s.parseMultipart(w, r); err != nil {
		s.respondUploadError(w, err)
		return
	}
	req := models.RankRequest{JobDescription: r.FormValue("job_description")}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	docs, err := s.readDocuments(r, "files")
	if err != nil {
		s.respondUploadError(w, err)
		return
	}
	s.logger.Debug("compare request", zap.Int("files", len(docs)))
	comparison, err := s.svc.Comparer.Compare(r.Context(), req.JobDescription, texts(docs))
	if err != nil {
		s.respondModelError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, comparison)
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) respondUploadError(w http.ResponseWriter, err error) {
	var bad *badRequestError
	switch {
	case errors.Is(err, errTooLarge):
		s.respondError(w, http.StatusRequestEntityTooLarge, "upload exceeds the size limit")
	case errors.As(err, &bad):
		s.respondError(w, http.StatusBadRequest, bad.msg)
	default:
		s.logger.Error("upload failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondModelError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, analysis.ErrInvalidResponse):
		s.logger.Warn("invalid model response", zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
	default:
		s.logger.Error("language model request failed", zap.Error(err))
		s.respondError(w, http.StatusBadGateway, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
