package embedding

import (
	"errors"
	"fmt"
	"os"

	"github.com/hyperjump/kensa/internal/config"
	"github.com/hyperjump/kensa/internal/storage"
	"go.uber.org/zap"
)

// New builds the embedder selected by cfg.Backend. It never falls back to another
// backend: a missing vector file, empty vector database, or unavailable ONNX
// runtime is returned as an error.
func New(cfg *config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Backend {
	case config.BackendWordVectors, "":
		table, err := openVectorTable(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Dimensions > 0 && cfg.Dimensions != table.Dimensions() {
			logger.Warn("configured dimensions differ from word vectors; using word vectors",
				zap.Int("configured", cfg.Dimensions),
				zap.Int("vectors", table.Dimensions()))
		}
		logger.Debug("word vector embedder ready", zap.Int("dimensions", table.Dimensions()))
		return NewWordVectorEmbedder(table, cfg.CacheSize), nil
	case config.BackendONNX:
		e, err := NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens, cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		logger.Debug("onnx embedder ready", zap.String("model", cfg.ModelPath))
		return e, nil
	case config.BackendHashing:
		return NewHashingEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding backend: %s (supported: %s, %s, %s)",
			cfg.Backend, config.BackendWordVectors, config.BackendONNX, config.BackendHashing)
	}
}

// openVectorTable opens the SQLite vector database if configured, otherwise the text file.
func openVectorTable(cfg *config.EmbeddingConfig) (VectorTable, error) {
	switch {
	case cfg.VectorsDB != "":
		db, err := storage.OpenSQLiteVectors(cfg.VectorsDB)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("vector database %s not found; run 'kensa vectors import' first: %w", cfg.VectorsDB, err)
		}
		if err != nil {
			return nil, fmt.Errorf("open vector database: %w", err)
		}
		if db.Dimensions() == 0 {
			_ = db.Close()
			return nil, fmt.Errorf("vector database %s is empty; run 'kensa vectors import' first", cfg.VectorsDB)
		}
		return db, nil
	case cfg.VectorsPath != "":
		return LoadMemoryTable(cfg.VectorsPath)
	default:
		return nil, fmt.Errorf("embedding backend %s needs vectors_db or vectors_path", config.BackendWordVectors)
	}
}
