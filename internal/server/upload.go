package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/hyperjump/kensa/internal/docid"
	"github.com/hyperjump/kensa/internal/models"
	"go.uber.org/zap"
)

// multipartMemory is how much of a multipart body is kept in memory before spilling to disk.
const multipartMemory = 8 << 20

// errTooLarge marks a request body over the configured upload limit.
var errTooLarge = errors.New("upload too large")

// badRequestError is a client error whose message is returned verbatim.
type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...interface{}) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

// parseMultipart limits and parses a multipart request body.
func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			return errTooLarge
		}
		return badRequest("invalid multipart form: %v", err)
	}
	return nil
}

// readDocuments extracts the text of every file uploaded under field, in upload order.
func (s *Server) readDocuments(r *http.Request, field string) ([]models.Document, error) {
	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File[field]
	}
	if len(headers) == 0 {
		return nil, badRequest("no files uploaded in field %q", field)
	}
	docs := make([]models.Document, 0, len(headers))
	for _, fh := range headers {
		doc, err := s.readDocument(fh)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Server) readDocument(fh *multipart.FileHeader) (models.Document, error) {
	f, err := fh.Open()
	if err != nil {
		return models.Document{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return models.Document{}, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	text, err := s.svc.Extractor.ExtractUpload(fh.Filename, content)
	if err != nil {
		s.logger.Debug("extraction failed", zap.String("file", fh.Filename), zap.Error(err))
		return models.Document{}, badRequest("cannot extract text from %s: %v", fh.Filename, err)
	}
	return models.Document{Name: fh.Filename, ID: docid.ContentID(content), Text: text}, nil
}

// texts returns the extracted text of each document.
func texts(docs []models.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Text
	}
	return out
}
