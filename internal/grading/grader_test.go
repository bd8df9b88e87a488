package grading

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/hyperjump/kensa/internal/embedding"
	"github.com/hyperjump/kensa/internal/keyword"
	"github.com/hyperjump/kensa/internal/models"
	"github.com/hyperjump/kensa/internal/similarity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jobDescription = "We are hiring a backend engineer experienced in distributed systems, Go and Kubernetes."

var (
	backendResume = "Backend engineer. Built distributed systems in Go, deployed on Kubernetes."
	designResume  = "Graphic designer skilled in typography, branding and illustration."
)

func newTestGrader(t *testing.T, opts ...GraderOption) (*Grader, *keyword.Extractor, *similarity.Scorer) {
	t.Helper()
	kw, err := keyword.New()
	require.NoError(t, err)
	scorer := similarity.New(embedding.NewHashingEmbedder(512))
	return New(kw, scorer, opts...), kw, scorer
}

type errScorer struct {
	err   error
	calls atomic.Int32
}

func (s *errScorer) Similarity(context.Context, string, string) (string, error) {
	s.calls.Add(1)
	return "", s.err
}

func TestGrade_IsSimilarityOfKeywords(t *testing.T) {
	g, kw, scorer := newTestGrader(t)
	ctx := context.Background()

	got, err := g.Grade(ctx, jobDescription, backendResume)
	require.NoError(t, err)
	want, err := scorer.Similarity(ctx, kw.Extract(jobDescription), kw.Extract(backendResume))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGrade_DifferentResumesDifferentGrades(t *testing.T) {
	g, _, _ := newTestGrader(t)
	ctx := context.Background()

	backend, err := g.Grade(ctx, jobDescription, backendResume)
	require.NoError(t, err)
	design, err := g.Grade(ctx, jobDescription, designResume)
	require.NoError(t, err)

	assert.NotEqual(t, backend, design)
	b, _ := strconv.ParseFloat(backend, 64)
	d, _ := strconv.ParseFloat(design, 64)
	assert.GreaterOrEqual(t, b, 0.0)
	assert.GreaterOrEqual(t, d, 0.0)
	assert.Greater(t, b, d, "the matching resume should grade higher")
}

func TestGrade_EmptyResume(t *testing.T) {
	g, _, _ := newTestGrader(t)
	got, err := g.Grade(context.Background(), jobDescription, "")
	require.NoError(t, err)
	assert.Equal(t, "0.00", got)
}

func TestGrade_ScorerErrorUnchanged(t *testing.T) {
	kw, err := keyword.New()
	require.NoError(t, err)
	sentinel := errors.New("vector store closed")
	g := New(kw, &errScorer{err: sentinel})

	_, err = g.Grade(context.Background(), "a", "b")
	assert.Same(t, sentinel, err)
}

func TestRank_PreservesInputOrder(t *testing.T) {
	g, _, _ := newTestGrader(t, WithWorkers(2))
	docs := []models.Document{
		{Name: "design.pdf", ID: "sha256:d", Text: designResume},
		{Name: "backend.docx", ID: "sha256:b", Text: backendResume},
		{Name: "empty.txt", ID: "sha256:e", Text: ""},
	}

	records, err := g.Rank(context.Background(), jobDescription, docs)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, doc := range docs {
		assert.Equal(t, doc.Name, records[i].File)
		assert.Equal(t, doc.ID, records[i].ID)
		want, err := g.Grade(context.Background(), jobDescription, doc.Text)
		require.NoError(t, err)
		assert.Equal(t, want, records[i].Grade)
	}
	assert.Equal(t, "0.00", records[2].Grade)
}

func TestRank_Empty(t *testing.T) {
	g, _, _ := newTestGrader(t)
	records, err := g.Rank(context.Background(), jobDescription, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRank_Error(t *testing.T) {
	kw, err := keyword.New()
	require.NoError(t, err)
	sentinel := errors.New("boom")
	g := New(kw, &errScorer{err: sentinel}, WithWorkers(1))

	records, err := g.Rank(context.Background(), jobDescription, []models.Document{{Name: "a"}, {Name: "b"}})
	assert.ErrorIs(t, err, sentinel)
	assert.Nil(t, records)
}

func TestSortByGrade(t *testing.T) {
	records := []models.GradeRecord{
		{Grade: "12.50", File: "a"},
		{Grade: "80.00", File: "b"},
		{Grade: "12.50", File: "c"},
		{Grade: "100.00", File: "d"},
		{Grade: "9.99", File: "e"},
	}
	SortByGrade(records)
	var files []string
	for _, r := range records {
		files = append(files, r.File)
	}
	assert.Equal(t, []string{"d", "b", "a", "c", "e"}, files)
}
