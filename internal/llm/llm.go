// Package llm sends prompts to a hosted language model.
package llm

import (
	"context"
	"errors"

	"github.com/hyperjump/kensa/internal/config"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no language-model API key is available.
var ErrNotConfigured = errors.New("language model is not configured")

// Generator produces a text completion for a prompt.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// New builds the Gemini generator from cfg. It returns ErrNotConfigured when no
// API key can be resolved, so callers can run without language-model features.
func New(ctx context.Context, cfg *config.LLMConfig, logger *zap.Logger) (*GeminiGenerator, error) {
	apiKey, err := cfg.ResolveAPIKey()
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	return NewGeminiGenerator(ctx, apiKey, cfg, WithLogger(logger))
}
