// Package similarity scores how alike two texts are as a percentage.
package similarity

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/hyperjump/kensa/internal/embedding"
	"github.com/hyperjump/kensa/internal/vector"
	"go.uber.org/zap"
)

// Scorer compares documents by the cosine of their embeddings. It holds no
// mutable state of its own and is safe for concurrent use.
type Scorer struct {
	embedder embedding.Embedder
	logger   *zap.Logger
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) ScorerOption {
	return func(s *Scorer) { s.logger = l }
}

// New returns a Scorer over the given embedder.
func New(embedder embedding.Embedder, opts ...ScorerOption) *Scorer {
	s := &Scorer{embedder: embedder, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the similarity of a and b in [0, 100]. A text whose embedding
// has zero norm (empty, or no known words) scores 0 against anything, and
// negative cosines are clamped to 0.
func (s *Scorer) Score(ctx context.Context, a, b string) (float64, error) {
	vecs, err := s.embedder.EmbedBatch(ctx, []string{a, b})
	if err != nil {
		return 0, fmt.Errorf("embed documents: %w", err)
	}
	if vector.L2Norm(vecs[0]) == 0 || vector.L2Norm(vecs[1]) == 0 {
		s.logger.Debug("zero document vector, similarity is 0")
		return 0, nil
	}
	score := vector.Cosine(vecs[0], vecs[1]) * 100
	return math.Max(0, math.Min(100, score)), nil
}

// Similarity returns Score formatted with two decimals, e.g. "73.42".
func (s *Scorer) Similarity(ctx context.Context, a, b string) (string, error) {
	score, err := s.Score(ctx, a, b)
	if err != nil {
		return "", err
	}
	return Format(score), nil
}

// Format renders a score with exactly two decimals.
func Format(score float64) string {
	return strconv.FormatFloat(score, 'f', 2, 64)
}
