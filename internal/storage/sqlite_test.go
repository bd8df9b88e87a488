package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const gloveSample = `engineer 0.1 0.2 0.3
backend -0.5 0.25 1
go 1 0 0
`

func newTestVectors(t *testing.T) *SQLiteVectors {
	t.Helper()
	store, err := NewSQLiteVectors(filepath.Join(t.TempDir(), "data", "vectors.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteVectors_ImportAndLookup(t *testing.T) {
	store := newTestVectors(t)
	ctx := context.Background()

	if store.Dimensions() != 0 {
		t.Errorf("empty database dimensions = %d", store.Dimensions())
	}

	n, err := store.Import(ctx, strings.NewReader(gloveSample))
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("imported %d vectors, want 3", n)
	}
	if store.Dimensions() != 3 {
		t.Errorf("Dimensions = %d, want 3", store.Dimensions())
	}

	got, err := store.Lookup(ctx, []string{"backend", "missing", "go"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Lookup returned %d words, want 2: %v", len(got), got)
	}
	if v := got["backend"]; len(v) != 3 || v[0] != -0.5 || v[1] != 0.25 || v[2] != 1 {
		t.Errorf("backend = %v", v)
	}
	if _, ok := got["missing"]; ok {
		t.Error("missing word should be absent")
	}

	count, err := store.CountVectors(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("CountVectors = %d, want 3", count)
	}
}

func TestSQLiteVectors_ReopenKeepsDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.db")
	store, err := NewSQLiteVectors(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Import(context.Background(), strings.NewReader(gloveSample)); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	reopened, err := NewSQLiteVectors(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if reopened.Dimensions() != 3 {
		t.Errorf("Dimensions after reopen = %d, want 3", reopened.Dimensions())
	}
	size, err := reopened.DiskUsage()
	if err != nil {
		t.Fatal(err)
	}
	if size <= 0 {
		t.Errorf("DiskUsage = %d, want > 0", size)
	}
}

func TestSQLiteVectors_ImportDimensionMismatch(t *testing.T) {
	store := newTestVectors(t)
	ctx := context.Background()
	if _, err := store.Import(ctx, strings.NewReader(gloveSample)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Import(ctx, strings.NewReader("python 1 2\n")); err == nil {
		t.Error("expected error importing vectors of a different dimension")
	}
	got, _ := store.Lookup(ctx, []string{"python"})
	if len(got) != 0 {
		t.Error("failed import should be rolled back")
	}
}

func TestSQLiteVectors_LookupManyWords(t *testing.T) {
	store := newTestVectors(t)
	ctx := context.Background()
	if _, err := store.Import(ctx, strings.NewReader(gloveSample)); err != nil {
		t.Fatal(err)
	}
	words := make([]string, 0, 1200)
	for i := 0; i < 1200; i++ {
		words = append(words, "w"+strings.Repeat("x", i%7))
	}
	words = append(words, "engineer")
	got, err := store.Lookup(ctx, words)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got["engineer"]; !ok || len(got) != 1 {
		t.Errorf("Lookup across batches = %v", got)
	}
}

func TestOpenSQLiteVectors_ReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.db")
	store, err := NewSQLiteVectors(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Import(context.Background(), strings.NewReader(gloveSample)); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	ro, err := OpenSQLiteVectors(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ro.Close()
	if ro.Dimensions() != 3 {
		t.Errorf("dimensions: got %d", ro.Dimensions())
	}
	got, err := ro.Lookup(context.Background(), []string{"go", "missing"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || len(got["go"]) != 3 {
		t.Errorf("lookup: got %v", got)
	}
	if _, err := ro.Import(context.Background(), strings.NewReader("rust 1 1 1\n")); err == nil {
		t.Error("import into a read-only database should fail")
	}
}

func TestOpenSQLiteVectors_MissingIsNotCreated(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	path := filepath.Join(dir, "vectors.db")
	_, err := OpenSQLiteVectors(path)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist", err)
	}
	if _, statErr := os.Stat(dir); !os.IsNotExist(statErr) {
		t.Errorf("directory %s should not be created", dir)
	}
}
