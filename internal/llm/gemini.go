package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperjump/kensa/internal/config"
	"github.com/hyperjump/kensa/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const (
	defaultModel     = "gemini-2.5-flash"
	jsonMIMEType     = "application/json"
	logPreviewLength = 200
)

// modelsAPI is the subset of genai.Models used by the generator.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator calls the Gemini API with fixed sampling settings and a
// requests-per-minute limit. Responses are requested as JSON.
type GeminiGenerator struct {
	models  modelsAPI
	model   string
	config  *genai.GenerateContentConfig
	limiter *rate.Limiter
	timeout time.Duration
	logger  *zap.Logger
}

// GeminiOption configures a GeminiGenerator.
type GeminiOption func(*GeminiGenerator)

// WithLogger sets a logger for debug output (prompt and response previews).
func WithLogger(l *zap.Logger) GeminiOption {
	return func(g *GeminiGenerator) {
		if l != nil {
			g.logger = l
		}
	}
}

// withModelsAPI replaces the Gemini client, for tests.
func withModelsAPI(m modelsAPI) GeminiOption {
	return func(g *GeminiGenerator) { g.models = m }
}

// NewGeminiGenerator creates a generator for the Gemini API backend.
func NewGeminiGenerator(ctx context.Context, apiKey string, cfg *config.LLMConfig, opts ...GeminiOption) (*GeminiGenerator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	g := &GeminiGenerator{
		model:   strings.TrimSpace(cfg.Model),
		config:  generateConfig(cfg),
		limiter: newLimiter(cfg.RequestsPerMinute),
		timeout: cfg.Timeout(),
		logger:  zap.NewNop(),
	}
	if g.model == "" {
		g.model = defaultModel
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.models == nil {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create genai client: %w", err)
		}
		g.models = client.Models
	}
	return g, nil
}

func generateConfig(cfg *config.LLMConfig) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(cfg.TemperatureOrDefault()),
		TopP:             genai.Ptr(cfg.TopPOrDefault()),
		PresencePenalty:  genai.Ptr(cfg.PresencePenaltyOrDefault()),
		FrequencyPenalty: genai.Ptr(cfg.FrequencyPenaltyOrDefault()),
		MaxOutputTokens:  cfg.MaxOutputTokens,
		StopSequences:    cfg.StopSequences,
		ResponseMIMEType: jsonMIMEType,
	}
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// Model returns the model name requests are sent to.
func (g *GeminiGenerator) Model() string {
	return g.model
}

// GenerateContent sends prompt to Gemini and returns the concatenated text of the response.
// It waits for the rate limiter and applies the configured timeout.
func (g *GeminiGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	g.logger.Debug("llm request",
		zap.String("model", g.model),
		zap.String("prompt", utils.TruncateForLog(prompt, logPreviewLength)))

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	output := responseText(resp)
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}
	g.logger.Debug("llm response",
		zap.Duration("elapsed", time.Since(start)),
		zap.String("response", utils.TruncateForLog(output, logPreviewLength)))
	return output, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}
	return strings.TrimSpace(builder.String())
}
