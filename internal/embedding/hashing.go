package embedding

import (
	"context"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/hyperjump/kensa/pkg/utils"
)

// HashingEmbedder is a deterministic bag-of-words embedder using signed feature hashing.
// It needs no model files; texts sharing words get similar vectors.
type HashingEmbedder struct {
	dimensions int
}

// NewHashingEmbedder returns a hashing embedder with the given dimension (384 if not positive).
func NewHashingEmbedder(dimensions int) *HashingEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &HashingEmbedder{dimensions: dimensions}
}

// Embed returns the L2-normalized hashed word counts of text.
func (e *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	emb := make([]float32, e.dimensions)
	for _, word := range utils.Words(text) {
		h := xxhash.Sum64String(strings.ToLower(word))
		idx := h % uint64(e.dimensions)
		if h>>63 == 0 {
			emb[idx]++
		} else {
			emb[idx]--
		}
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (e *HashingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, e, texts)
}

// Dimensions returns the embedding dimension.
func (e *HashingEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for HashingEmbedder.
func (e *HashingEmbedder) Close() error {
	return nil
}
