// Package grading grades resumes against a job description by comparing their key phrases.
package grading

import (
	"context"
	"sort"
	"strconv"

	"github.com/hyperjump/kensa/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// KeywordExtractor reduces text to its key phrases.
type KeywordExtractor interface {
	Extract(text string) string
}

// SimilarityScorer scores two texts as a two-decimal percentage string.
type SimilarityScorer interface {
	Similarity(ctx context.Context, a, b string) (string, error)
}

// Grader composes keyword extraction and similarity scoring. It is safe for concurrent use.
type Grader struct {
	keywords KeywordExtractor
	scorer   SimilarityScorer
	workers  int
	logger   *zap.Logger
}

// GraderOption configures a Grader.
type GraderOption func(*Grader)

// WithWorkers bounds how many resumes Rank grades at once.
func WithWorkers(n int) GraderOption {
	return func(g *Grader) {
		if n > 0 {
			g.workers = n
		}
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) GraderOption {
	return func(g *Grader) { g.logger = l }
}

// New returns a Grader.
func New(keywords KeywordExtractor, scorer SimilarityScorer, opts ...GraderOption) *Grader {
	g := &Grader{
		keywords: keywords,
		scorer:   scorer,
		workers:  4,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Grade returns the similarity of the key phrases of jobDescription and resumeText.
// Scorer errors are returned unchanged.
func (g *Grader) Grade(ctx context.Context, jobDescription, resumeText string) (string, error) {
	return g.scorer.Similarity(ctx, g.keywords.Extract(jobDescription), g.keywords.Extract(resumeText))
}

// Rank grades every document against jobDescription. Records are returned in the
// order of docs. The first scorer error cancels the remaining work and is returned.
func (g *Grader) Rank(ctx context.Context, jobDescription string, docs []models.Document) ([]models.GradeRecord, error) {
	jdKeywords := g.keywords.Extract(jobDescription)
	records := make([]models.GradeRecord, len(docs))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, doc := range docs {
		eg.Go(func() error {
			grade, err := g.scorer.Similarity(ctx, jdKeywords, g.keywords.Extract(doc.Text))
			if err != nil {
				return err
			}
			records[i] = models.GradeRecord{Grade: grade, File: doc.Name, ID: doc.ID}
			g.logger.Debug("graded", zap.String("file", doc.Name), zap.String("grade", grade))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// SortByGrade orders records by grade, highest first. Equal grades keep their order.
func SortByGrade(records []models.GradeRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return parseGrade(records[i].Grade) > parseGrade(records[j].Grade)
	})
}

func parseGrade(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return -1
	}
	return v
}
