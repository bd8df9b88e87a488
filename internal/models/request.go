package models

import (
	"fmt"
	"strings"
)

// ExtractRequest is the body of POST /api/v1/extract.
type ExtractRequest struct {
	Text string `json:"text"`
}

// SimilarityRequest is the body of POST /api/v1/similarity. Empty texts are allowed
// and score 0.00.
type SimilarityRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

// GradeRequest is the body of POST /api/v1/grade. Like the other core
// operations it accepts any text, including empty strings.
type GradeRequest struct {
	JobDescription string `json:"job_description"`
	ResumeText     string `json:"resume_text"`
}

// RankRequest carries the non-file parameters of POST /rank and POST /compare.
type RankRequest struct {
	JobDescription string
	SortByGrade    bool
}

// Validate ensures a job description is present and trims it.
func (r *RankRequest) Validate() error {
	r.JobDescription = strings.TrimSpace(r.JobDescription)
	if r.JobDescription == "" {
		return fmt.Errorf("job_description cannot be empty")
	}
	return nil
}
