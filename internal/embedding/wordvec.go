package embedding

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hyperjump/kensa/internal/storage"
	"github.com/hyperjump/kensa/pkg/utils"
)

// VectorTable looks up pretrained word vectors.
type VectorTable interface {
	// Lookup returns vectors for the words that exist; missing words are absent.
	Lookup(ctx context.Context, words []string) (map[string][]float32, error)
	Dimensions() int
}

// WordVectorEmbedder embeds a document as the mean of its words' pretrained vectors.
// A word is looked up as written, then lowercased. Out-of-vocabulary words are ignored,
// so a text with no known words embeds to the zero vector.
type WordVectorEmbedder struct {
	table VectorTable
	cache *EmbeddingCache
}

// NewWordVectorEmbedder wraps table with an LRU cache of cacheSize words.
func NewWordVectorEmbedder(table VectorTable, cacheSize int) *WordVectorEmbedder {
	return &WordVectorEmbedder{
		table: table,
		cache: NewEmbeddingCache(cacheSize),
	}
}

// Embed returns the mean word vector of text.
func (e *WordVectorEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	words := utils.Words(text)
	vectors, err := e.lookup(ctx, words)
	if err != nil {
		return nil, err
	}

	emb := make([]float32, e.table.Dimensions())
	var n int
	for _, w := range words {
		v := vectors[w]
		if v == nil {
			v = vectors[strings.ToLower(w)]
		}
		if len(v) != len(emb) {
			continue
		}
		utils.AddInto(emb, v)
		n++
	}
	if n == 0 {
		return emb, nil
	}
	for i := range emb {
		emb[i] /= float32(n)
	}
	return emb, nil
}

// lookup resolves every surface and lowercase form of words, consulting the cache
// first and the table for the rest in one batch. OOV results are cached as nil.
func (e *WordVectorEmbedder) lookup(ctx context.Context, words []string) (map[string][]float32, error) {
	vectors := make(map[string][]float32, len(words)*2)
	var misses []string
	seen := make(map[string]struct{}, len(words)*2)
	for _, w := range words {
		for _, key := range []string{w, strings.ToLower(w)} {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			if v, ok := e.cache.Get(key); ok {
				vectors[key] = v
				continue
			}
			misses = append(misses, key)
		}
	}
	if len(misses) == 0 {
		return vectors, nil
	}

	found, err := e.table.Lookup(ctx, misses)
	if err != nil {
		return nil, fmt.Errorf("word vector lookup: %w", err)
	}
	for _, key := range misses {
		v := found[key]
		e.cache.Set(key, v)
		vectors[key] = v
	}
	return vectors, nil
}

// EmbedBatch calls Embed for each text.
func (e *WordVectorEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, e, texts)
}

// Dimensions returns the word-vector dimension.
func (e *WordVectorEmbedder) Dimensions() int {
	return e.table.Dimensions()
}

// Close closes the underlying table when it holds resources.
func (e *WordVectorEmbedder) Close() error {
	if c, ok := e.table.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// MemoryTable is an in-memory VectorTable.
type MemoryTable struct {
	dimensions int
	vectors    map[string][]float32
}

// NewMemoryTable returns a table over vectors, which must all have the same length.
func NewMemoryTable(vectors map[string][]float32) (*MemoryTable, error) {
	dims := -1
	for word, v := range vectors {
		if dims == -1 {
			dims = len(v)
		}
		if len(v) != dims || dims == 0 {
			return nil, fmt.Errorf("vector for %q has %d dimensions, want %d", word, len(v), dims)
		}
	}
	if dims <= 0 {
		return nil, fmt.Errorf("no word vectors")
	}
	return &MemoryTable{dimensions: dims, vectors: vectors}, nil
}

// LoadMemoryTable reads a GloVe or word2vec text file into memory.
func LoadMemoryTable(path string) (*MemoryTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word vectors: %w", err)
	}
	defer f.Close()

	vectors := make(map[string][]float32)
	dims, err := storage.ReadVectors(f, func(word string, vec []float32) error {
		vectors[word] = vec
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load word vectors %s: %w", path, err)
	}
	return &MemoryTable{dimensions: dims, vectors: vectors}, nil
}

// Lookup returns the vectors of words present in the table.
func (t *MemoryTable) Lookup(_ context.Context, words []string) (map[string][]float32, error) {
	out := make(map[string][]float32, len(words))
	for _, w := range words {
		if v, ok := t.vectors[w]; ok {
			out[w] = v
		}
	}
	return out, nil
}

// Dimensions returns the vector dimension.
func (t *MemoryTable) Dimensions() int {
	return t.dimensions
}

// Len returns the number of words in the table.
func (t *MemoryTable) Len() int {
	return len(t.vectors)
}
