// Package models defines the request-scoped data passed between extraction, grading and the API.
package models

// Document is the extracted text of one uploaded or watched file.
type Document struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	Text string `json:"-"`
}

// GradeRecord is the similarity grade of one resume against a job description.
// Grade is formatted with two decimals in [0.00, 100.00].
type GradeRecord struct {
	Grade string `json:"grade"`
	File  string `json:"file"`
	ID    string `json:"id"`
}

// Profile is the structured candidate information parsed from a resume.
type Profile struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Location  string   `json:"location"`
	Education string   `json:"education"`
	Skills    []string `json:"skills"`
}

// Comparison is the language model's narrative comparison of resumes against a job
// description: one "resumeN" summary per resume plus a "compare" verdict.
type Comparison map[string]interface{}
