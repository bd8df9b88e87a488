package embedding

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/kensa/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable(t *testing.T) *MemoryTable {
	t.Helper()
	table, err := NewMemoryTable(map[string][]float32{
		"go":       {1, 0, 0},
		"engineer": {0, 1, 0},
		"Python":   {0, 0, 1},
		"python":   {0, 0, -1},
	})
	require.NoError(t, err)
	return table
}

// countingTable records how many words reach the underlying table.
type countingTable struct {
	VectorTable
	lookups int
}

func (c *countingTable) Lookup(ctx context.Context, words []string) (map[string][]float32, error) {
	c.lookups += len(words)
	return c.VectorTable.Lookup(ctx, words)
}

type failingTable struct{}

func (failingTable) Lookup(context.Context, []string) (map[string][]float32, error) {
	return nil, errors.New("disk I/O error")
}

func (failingTable) Dimensions() int { return 3 }

func TestWordVectorEmbedder_Mean(t *testing.T) {
	e := NewWordVectorEmbedder(testTable(t), 100)
	got, err := e.Embed(context.Background(), "Go engineer")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5, 0}, got)
}

func TestWordVectorEmbedder_LookupOrder(t *testing.T) {
	e := NewWordVectorEmbedder(testTable(t), 100)
	ctx := context.Background()

	exact, err := e.Embed(ctx, "Python")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 1}, exact, "exact form wins")

	lowered, err := e.Embed(ctx, "GO")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, lowered, "falls back to lowercase")
}

func TestWordVectorEmbedder_OOVIsZero(t *testing.T) {
	e := NewWordVectorEmbedder(testTable(t), 100)
	for _, text := range []string{"", "kubernetes terraform", "!!!"} {
		got, err := e.Embed(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, []float32{0, 0, 0}, got, "text %q", text)
	}

	withOOV, err := e.Embed(context.Background(), "go kubernetes")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, withOOV, "OOV words do not dilute the mean")
}

func TestWordVectorEmbedder_CachesLookups(t *testing.T) {
	table := &countingTable{VectorTable: testTable(t)}
	e := NewWordVectorEmbedder(table, 100)
	ctx := context.Background()

	_, err := e.Embed(ctx, "go unknownword")
	require.NoError(t, err)
	first := table.lookups
	assert.Equal(t, 2, first)

	_, err = e.Embed(ctx, "go unknownword go")
	require.NoError(t, err)
	assert.Equal(t, first, table.lookups, "known and OOV words are served from cache")
}

func TestWordVectorEmbedder_LookupError(t *testing.T) {
	e := NewWordVectorEmbedder(failingTable{}, 10)
	_, err := e.Embed(context.Background(), "go")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
}

func TestWordVectorEmbedder_SQLiteTable(t *testing.T) {
	ctx := context.Background()
	db, err := storage.NewSQLiteVectors(filepath.Join(t.TempDir(), "vectors.db"))
	require.NoError(t, err)
	_, err = db.Import(ctx, strings.NewReader("go 1 0\nengineer 0 1\n"))
	require.NoError(t, err)

	e := NewWordVectorEmbedder(db, 10)
	defer e.Close()
	assert.Equal(t, 2, e.Dimensions())

	got, err := e.Embed(ctx, "Go engineer")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, got)
}

func TestNewMemoryTable_Errors(t *testing.T) {
	_, err := NewMemoryTable(nil)
	assert.Error(t, err)
	_, err = NewMemoryTable(map[string][]float32{"a": {1, 2}, "b": {1}})
	assert.Error(t, err)
}

func TestLoadMemoryTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glove.txt")
	require.NoError(t, os.WriteFile(path, []byte("3 2\ngo 1 0\nengineer 0 1\nrust 0.5 0.5\n"), 0644))

	table, err := LoadMemoryTable(path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Dimensions())
	assert.Equal(t, 3, table.Len())

	_, err = LoadMemoryTable(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
