package keyword

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const backendResume = "Experienced backend engineer skilled in distributed systems and Go."

func newExtractor(t *testing.T, opts ...ExtractorOption) *Extractor {
	t.Helper()
	e, err := New(opts...)
	require.NoError(t, err)
	return e
}

func TestExtract_backendEngineer(t *testing.T) {
	e := newExtractor(t)
	got := e.Extract(backendResume)

	assert.Contains(t, got, "distributed systems")
	assert.Contains(t, got, "backend engineer")
	assert.Equal(t, "experienced backend engineer skilled, distributed systems, go", got)
}

func TestExtract_empty(t *testing.T) {
	e := newExtractor(t)
	assert.Equal(t, "", e.Extract(""))
	assert.Equal(t, "", e.Extract("   \n\t "))
	assert.Equal(t, "", e.Extract("and the of, in."))
}

func TestExtract_noDuplicates(t *testing.T) {
	e := newExtractor(t)
	got := e.Phrases("Go developer. Go developer! Python; GO DEVELOPER")

	assert.Equal(t, []string{"go developer", "python"}, got)

	seen := map[string]bool{}
	for _, p := range strings.Split(e.Extract("data science, data science and machine learning"), ", ") {
		assert.False(t, seen[p], "duplicate phrase %q", p)
		seen[p] = true
	}
}

func TestExtract_invalidUTF8KeepsLaterText(t *testing.T) {
	e := newExtractor(t)
	assert.Equal(t, "garbage, bytes", e.Extract("\xff\xfe garbage \x00 bytes"))

	got := e.Extract("Backend engineer \xff built distributed systems")
	assert.Contains(t, got, "backend engineer")
	assert.Contains(t, got, "built distributed systems")
}

func TestPhrases_degreeToFrequencyRanking(t *testing.T) {
	e := newExtractor(t)
	// "learning" appears in a long and a short phrase: degree 4, frequency 2.
	got := e.Phrases("Deep machine learning. Learning")
	require.Len(t, got, 2)
	assert.Equal(t, "deep machine learning", got[0])
	assert.Equal(t, "learning", got[1])
}

func TestPhrases_tiesKeepFirstAppearance(t *testing.T) {
	e := newExtractor(t)
	assert.Equal(t, []string{"kafka", "redis", "postgres"}, e.Phrases("Kafka, Redis, Postgres"))
}

func TestPhrases_lineBreaksSplitPhrases(t *testing.T) {
	e := newExtractor(t)
	assert.Equal(t, []string{"machine learning", "python"}, e.Phrases("Machine learning\nPython"))
}

func TestPhrases_options(t *testing.T) {
	tests := []struct {
		name string
		opts []ExtractorOption
		want []string
	}{
		{"defaults", nil, []string{"experienced backend engineer skilled", "distributed systems", "go"}},
		{"min words", []ExtractorOption{WithMinPhraseWords(2)}, []string{"experienced backend engineer skilled", "distributed systems"}},
		{"max words", []ExtractorOption{WithMaxPhraseWords(2)}, []string{"distributed systems", "go"}},
		{"max phrases", []ExtractorOption{WithMaxPhrases(1)}, []string{"experienced backend engineer skilled"}},
		{"extra stop words", []ExtractorOption{WithStopWords(" Experienced ")}, []string{"backend engineer skilled", "distributed systems", "go"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newExtractor(t, tt.opts...)
			assert.Equal(t, tt.want, e.Phrases(backendResume))
		})
	}
}

func TestLoadStopWords(t *testing.T) {
	words, err := loadStopWords([]string{"Resume", ""})
	require.NoError(t, err)
	assert.True(t, words["the"])
	assert.True(t, words["and"])
	assert.True(t, words["resume"])
	assert.False(t, words[""])
	assert.False(t, words["engineer"])
}
