// Package keyword extracts ranked key phrases from free text using RAKE
// (Rapid Automatic Keyword Extraction).
package keyword

import (
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/hyperjump/kensa/pkg/utils"
	"go.uber.org/zap"
)

// Extractor ranks candidate phrases by the degree-to-frequency ratio of their words.
// It is immutable after New and safe for concurrent use.
type Extractor struct {
	stopWords      analysis.TokenMap
	extraStopWords []string
	minPhraseWords int
	maxPhraseWords int
	maxPhrases     int
	logger         *zap.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithMinPhraseWords drops candidate phrases shorter than n words.
func WithMinPhraseWords(n int) ExtractorOption {
	return func(e *Extractor) {
		if n > 0 {
			e.minPhraseWords = n
		}
	}
}

// WithMaxPhraseWords drops candidate phrases longer than n words. Zero means unlimited.
func WithMaxPhraseWords(n int) ExtractorOption {
	return func(e *Extractor) {
		if n >= 0 {
			e.maxPhraseWords = n
		}
	}
}

// WithMaxPhrases keeps only the n best phrases. Zero keeps all of them.
func WithMaxPhrases(n int) ExtractorOption {
	return func(e *Extractor) {
		if n >= 0 {
			e.maxPhrases = n
		}
	}
}

// WithStopWords adds words to the English stop list.
func WithStopWords(words ...string) ExtractorOption {
	return func(e *Extractor) { e.extraStopWords = append(e.extraStopWords, words...) }
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) ExtractorOption {
	return func(e *Extractor) { e.logger = l }
}

// New builds an Extractor. It fails only if the stop list cannot be loaded.
func New(opts ...ExtractorOption) (*Extractor, error) {
	e := &Extractor{
		minPhraseWords: 1,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	stopWords, err := loadStopWords(e.extraStopWords)
	if err != nil {
		return nil, err
	}
	e.stopWords = stopWords
	return e, nil
}

// Extract returns the ranked, deduplicated key phrases of text joined by ", ".
// Empty or stop-word-only text yields "".
func (e *Extractor) Extract(text string) string {
	return strings.Join(e.Phrases(text), ", ")
}

type rankedPhrase struct {
	text  string
	score float64
}

// Phrases returns the key phrases of text, best first. Phrases with equal
// scores keep the order in which they first appear.
func (e *Extractor) Phrases(text string) []string {
	candidates := e.candidates(text)
	if len(candidates) == 0 {
		return nil
	}

	freq := make(map[string]float64)
	degree := make(map[string]float64)
	for _, phrase := range candidates {
		for _, w := range phrase {
			freq[w]++
			degree[w] += float64(len(phrase))
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	ranked := make([]rankedPhrase, 0, len(candidates))
	for _, phrase := range candidates {
		key := strings.Join(phrase, " ")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		var score float64
		for _, w := range phrase {
			score += degree[w] / freq[w]
		}
		ranked = append(ranked, rankedPhrase{text: key, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if e.maxPhrases > 0 && len(ranked) > e.maxPhrases {
		ranked = ranked[:e.maxPhrases]
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.text
	}
	e.logger.Debug("keywords extracted",
		zap.Int("candidates", len(candidates)),
		zap.Int("phrases", len(out)))
	return out
}

// candidates splits text into lowercased word runs delimited by stop words,
// punctuation and line breaks, keeping only runs within the configured length.
func (e *Extractor) candidates(text string) [][]string {
	var phrases [][]string
	var current []string
	flush := func() {
		if n := len(current); n > 0 && n >= e.minPhraseWords && (e.maxPhraseWords == 0 || n <= e.maxPhraseWords) {
			phrases = append(phrases, current)
		}
		current = nil
	}
	for _, tok := range utils.Tokenize(text) {
		switch tok.Kind {
		case utils.TokenSpace:
		case utils.TokenWord:
			w := strings.ToLower(tok.Text)
			if e.stopWords[w] {
				flush()
				continue
			}
			current = append(current, w)
		default:
			flush()
		}
	}
	flush()
	return phrases
}
