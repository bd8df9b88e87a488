package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/kensa/internal/analysis"
	"github.com/hyperjump/kensa/internal/config"
	"github.com/hyperjump/kensa/internal/embedding"
	"github.com/hyperjump/kensa/internal/extract"
	"github.com/hyperjump/kensa/internal/grading"
	"github.com/hyperjump/kensa/internal/keyword"
	"github.com/hyperjump/kensa/internal/llm"
	"github.com/hyperjump/kensa/internal/models"
	"github.com/hyperjump/kensa/internal/server"
	"github.com/hyperjump/kensa/internal/similarity"
	"go.uber.org/zap"
)

// Components holds everything built from config at startup.
type Components struct {
	Embedder  embedding.Embedder
	Keywords  *keyword.Extractor
	Scorer    *similarity.Scorer
	Grader    *grading.Grader
	Extractor *extract.Extractor
	Generator llm.Generator // nil when no API key is configured
	LLMModel  string
}

// Close releases the embedder's resources.
func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

// initializeComponents builds the core pipeline. withLLM controls whether the
// language model client is created; a missing API key is not an error.
func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger, withLLM bool) (*Components, error) {
	embedder, err := embedding.New(&cfg.Embedding, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	keywords, err := newKeywordExtractor(cfg, logger)
	if err != nil {
		_ = embedder.Close()
		return nil, err
	}

	scorer := similarity.New(embedder, similarity.WithLogger(logger))
	c := &Components{
		Embedder:  embedder,
		Keywords:  keywords,
		Scorer:    scorer,
		Grader:    grading.New(keywords, scorer, grading.WithWorkers(cfg.Rank.Workers), grading.WithLogger(logger)),
		Extractor: extract.NewExtractor(),
	}

	if withLLM {
		gen, err := llm.New(ctx, &cfg.LLM, logger)
		switch {
		case errors.Is(err, llm.ErrNotConfigured):
			logger.Info("language model not configured; /parse and /compare are disabled")
		case err != nil:
			c.Close()
			return nil, fmt.Errorf("failed to initialize language model: %w", err)
		default:
			c.Generator = gen
			c.LLMModel = gen.Model()
		}
	}
	return c, nil
}

func newKeywordExtractor(cfg *config.Config, logger *zap.Logger) (*keyword.Extractor, error) {
	keywords, err := keyword.New(
		keyword.WithMinPhraseWords(cfg.Keywords.MinPhraseWords),
		keyword.WithMaxPhraseWords(cfg.Keywords.MaxPhraseWords),
		keyword.WithMaxPhrases(cfg.Keywords.MaxPhrases),
		keyword.WithStopWords(cfg.Keywords.ExtraStopWords...),
		keyword.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keyword extractor: %w", err)
	}
	return keywords, nil
}

// services assembles the server's dependencies from the components.
func (c *Components) services(cfg *config.Config, logger *zap.Logger) *server.Services {
	svc := &server.Services{
		Keywords:  c.Keywords,
		Scorer:    c.Scorer,
		Grader:    c.Grader,
		Extractor: c.Extractor,
		Profiles:  analysis.NewProfileParser(c.Generator, logger),
		Comparer:  analysis.NewComparer(c.Generator, logger),
		Status: models.StatusResponse{
			EmbeddingBackend:    cfg.Embedding.Backend,
			EmbeddingDimensions: c.Embedder.Dimensions(),
			LLMConfigured:       c.Generator != nil,
			LLMModel:            c.LLMModel,
		},
	}
	if cfg.Embedding.Backend == config.BackendWordVectors {
		svc.VectorDB = cfg.Embedding.VectorsDB
	}
	return svc
}
