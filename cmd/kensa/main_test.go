package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hyperjump/kensa/internal/config"
	"github.com/hyperjump/kensa/internal/extract"
	"go.uber.org/zap"
)

func TestArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after files are moved first",
			args:     []string{"cv.pdf", "--job", "jd.txt"},
			expected: []string{"--job", "jd.txt", "cv.pdf"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"--job", "jd.txt", "cv.pdf"},
			expected: []string{"--job", "jd.txt", "cv.pdf"},
		},
		{
			name:     "stdin dash is positional",
			args:     []string{"-"},
			expected: []string{"-"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple files then flags",
			args:     []string{"a.pdf", "b.pdf", "-output", "json"},
			expected: []string{"-output", "json", "a.pdf", "b.pdf"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := argsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("argsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLoadConfig_explicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9123\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, resolved, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != path {
		t.Errorf("resolved = %q, want %q", resolved, path)
	}
	if cfg.Server.Port != 9123 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
}

func TestLoadConfig_missingExplicitPath(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestReadDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cv.txt")
	if err := os.WriteFile(path, []byte("Go engineer"), 0600); err != nil {
		t.Fatal(err)
	}
	doc, err := readDocument(extract.NewExtractor(), path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Name != "cv.txt" || doc.Text != "Go engineer" {
		t.Errorf("doc = %+v", doc)
	}
	if len(doc.ID) == 0 {
		t.Error("doc ID should be set")
	}
	if _, err := readDocument(extract.NewExtractor(), filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestInitializeComponents_hashing(t *testing.T) {
	cfg := &config.Config{}
	cfg.Embedding.Backend = config.BackendHashing
	config.ApplyDefaults(cfg)

	c, err := initializeComponents(t.Context(), cfg, zap.NewNop(), false)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if c.Generator != nil {
		t.Error("generator should be nil when the language model is not requested")
	}
	svc := c.services(cfg, zap.NewNop())
	if svc.Status.LLMConfigured {
		t.Error("status should report the language model as not configured")
	}
	if svc.Status.EmbeddingDimensions != cfg.Embedding.Dimensions {
		t.Errorf("dimensions = %d, want %d", svc.Status.EmbeddingDimensions, cfg.Embedding.Dimensions)
	}
	if svc.VectorDB != "" {
		t.Errorf("hashing backend should not report a vector db, got %q", svc.VectorDB)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
