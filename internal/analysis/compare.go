package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/kensa/internal/llm"
	"github.com/hyperjump/kensa/internal/models"
	"github.com/hyperjump/kensa/pkg/utils"
	"go.uber.org/zap"
)

// CompareKey is the comparison verdict's key in a Comparison.
const CompareKey = "compare"

// Comparer asks a language model to summarize resumes and pick the best fit for a job.
type Comparer struct {
	generator llm.Generator
	logger    *zap.Logger
}

// NewComparer returns a comparer. A nil generator makes Compare return llm.ErrNotConfigured.
func NewComparer(generator llm.Generator, logger *zap.Logger) *Comparer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Comparer{generator: generator, logger: logger}
}

// Compare returns one "resumeN" summary per resume and a "compare" verdict.
func (c *Comparer) Compare(ctx context.Context, jobDescription string, resumes []string) (models.Comparison, error) {
	if c.generator == nil {
		return nil, llm.ErrNotConfigured
	}
	if len(resumes) == 0 {
		return nil, fmt.Errorf("compare: no resumes")
	}
	prompt, err := render("compare.md", struct {
		JobDescription string
		Template       string
		Resumes        []string
	}{jobDescription, comparisonTemplate(len(resumes)), resumes})
	if err != nil {
		return nil, err
	}
	reply, err := c.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("compare resumes: %w", err)
	}
	obj, err := decodeObject(reply)
	if err != nil {
		c.logger.Debug("unparseable comparison response", zap.String("response", utils.TruncateForLog(reply, previewLength)))
		return nil, err
	}
	if _, ok := obj[CompareKey]; !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrInvalidResponse, CompareKey)
	}
	return models.Comparison(obj), nil
}

// comparisonTemplate renders the JSON skeleton the model is asked to fill in.
func comparisonTemplate(n int) string {
	var b strings.Builder
	b.WriteString("{")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "\"resume%d\": \"<summary of resume %d>\", ", i, i)
	}
	fmt.Fprintf(&b, "\"%s\": \"<comparing the resumes against the job description>\"}", CompareKey)
	return b.String()
}
