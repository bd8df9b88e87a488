// Package config provides configuration loading and structs for the Kensa server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted for the language-model API key, in order.
var apiKeyEnvVars = []string{"KENSA_LLM_API_KEY", "API_KEY"}

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Keywords  KeywordConfig   `yaml:"keywords"`
	Rank      RankConfig      `yaml:"rank"`
	LLM       LLMConfig       `yaml:"llm"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	MaxUploadMB           int    `yaml:"max_upload_mb"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

// MaxUploadBytes returns the multipart body limit in bytes.
func (s *ServerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// RequestTimeout returns the per-request timeout.
func (s *ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// Embedding backends.
const (
	BackendWordVectors = "wordvectors"
	BackendONNX        = "onnx"
	BackendHashing     = "hashing"
)

// EmbeddingConfig selects and configures the document embedder.
// For the wordvectors backend, VectorsDB (SQLite) takes precedence over VectorsPath (text file).
type EmbeddingConfig struct {
	Backend     string `yaml:"backend"`
	VectorsPath string `yaml:"vectors_path"`
	VectorsDB   string `yaml:"vectors_db"`
	ModelPath   string `yaml:"model_path"`
	Dimensions  int    `yaml:"dimensions"`
	MaxTokens   int    `yaml:"max_tokens"`
	CacheSize   int    `yaml:"cache_size"`
}

// KeywordConfig holds RAKE keyword extraction settings.
type KeywordConfig struct {
	MinPhraseWords int      `yaml:"min_phrase_words"`
	MaxPhraseWords int      `yaml:"max_phrase_words"`
	MaxPhrases     int      `yaml:"max_phrases"`
	ExtraStopWords []string `yaml:"extra_stop_words"`
}

// RankConfig holds batch grading settings.
type RankConfig struct {
	Workers int `yaml:"workers"`
}

// LLMConfig holds language-model settings used by /parse and /compare.
// The API key is optional; without one those endpoints are disabled.
type LLMConfig struct {
	Model             string   `yaml:"model"`
	APIKey            string   `yaml:"api_key"`
	APIKeyFile        string   `yaml:"api_key_file"`
	MaxOutputTokens   int32    `yaml:"max_output_tokens"`
	StopSequences     []string `yaml:"stop_sequences"`
	// Sampling settings are pointers so an explicit 0 in YAML is kept;
	// read them through the OrDefault accessors.
	Temperature      *float32 `yaml:"temperature"`
	TopP             *float32 `yaml:"top_p"`
	PresencePenalty  *float32 `yaml:"presence_penalty"`
	FrequencyPenalty *float32 `yaml:"frequency_penalty"`
	RequestsPerMinute int      `yaml:"requests_per_minute"`
	TimeoutSeconds    int      `yaml:"timeout_seconds"`
}

// Sampling defaults the prompts were tuned with.
const (
	DefaultTemperature      float32 = 0.9
	DefaultTopP             float32 = 1
	DefaultPresencePenalty  float32 = 0.6
	DefaultFrequencyPenalty float32 = 0
)

func float32OrDefault(v *float32, def float32) float32 {
	if v != nil {
		return *v
	}
	return def
}

// TemperatureOrDefault returns temperature, or DefaultTemperature when unset.
func (l *LLMConfig) TemperatureOrDefault() float32 {
	return float32OrDefault(l.Temperature, DefaultTemperature)
}

// TopPOrDefault returns top_p, or DefaultTopP when unset.
func (l *LLMConfig) TopPOrDefault() float32 {
	return float32OrDefault(l.TopP, DefaultTopP)
}

// PresencePenaltyOrDefault returns presence_penalty, or DefaultPresencePenalty when unset.
func (l *LLMConfig) PresencePenaltyOrDefault() float32 {
	return float32OrDefault(l.PresencePenalty, DefaultPresencePenalty)
}

// FrequencyPenaltyOrDefault returns frequency_penalty, or DefaultFrequencyPenalty when unset.
func (l *LLMConfig) FrequencyPenaltyOrDefault() float32 {
	return float32OrDefault(l.FrequencyPenalty, DefaultFrequencyPenalty)
}

// Timeout returns the per-call timeout for the language model.
func (l *LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// ResolveAPIKey returns the API key from api_key_file, api_key, or the environment,
// in that order. An empty result with a nil error means no key is configured.
func (l *LLMConfig) ResolveAPIKey() (string, error) {
	if file := strings.TrimSpace(l.APIKeyFile); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read llm api key file %q: %w", file, err)
		}
		key := strings.TrimSpace(string(data))
		if key == "" {
			return "", fmt.Errorf("llm api key file %q is empty", file)
		}
		return key, nil
	}
	if key := strings.TrimSpace(l.APIKey); key != "" {
		return key, nil
	}
	for _, name := range apiKeyEnvVars {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			return key, nil
		}
	}
	return "", nil
}

// WatchConfig holds inbox watch settings.
type WatchConfig struct {
	Extensions []string `yaml:"extensions"`
	Recursive  *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// A .env file next to the config (or in the working directory) is loaded into the
// environment first; existing variables are not overridden.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	configDir := filepath.Dir(path)
	LoadDotEnv(configDir)
	ApplyDefaults(&cfg)

	cfg.Embedding.VectorsPath = expandPath(cfg.Embedding.VectorsPath, configDir)
	cfg.Embedding.VectorsDB = expandPath(cfg.Embedding.VectorsDB, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.LLM.APIKeyFile = expandPath(cfg.LLM.APIKeyFile, configDir)

	return &cfg, nil
}

// LoadDotEnv loads .env files from dir and the working directory, ignoring missing files.
func LoadDotEnv(dir string) {
	candidates := []string{filepath.Join(dir, ".env"), ".env"}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
