package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 32
	}
	if cfg.Server.RequestTimeoutSeconds == 0 {
		cfg.Server.RequestTimeoutSeconds = 120
	}
	if cfg.Embedding.Backend == "" {
		cfg.Embedding.Backend = BackendWordVectors
	}
	if cfg.Embedding.Backend == BackendWordVectors && cfg.Embedding.VectorsPath == "" && cfg.Embedding.VectorsDB == "" {
		cfg.Embedding.VectorsDB = "/usr/local/var/kensa/data/vectors.db"
	}
	if cfg.Embedding.Backend == BackendONNX && cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/kensa/data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		if cfg.Embedding.Backend == BackendWordVectors {
			cfg.Embedding.Dimensions = 300
		} else {
			cfg.Embedding.Dimensions = 384
		}
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 50000
	}
	if cfg.Keywords.MinPhraseWords == 0 {
		cfg.Keywords.MinPhraseWords = 1
	}
	if cfg.Rank.Workers == 0 {
		cfg.Rank.Workers = 4
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gemini-2.5-flash"
	}
	if cfg.LLM.MaxOutputTokens == 0 {
		cfg.LLM.MaxOutputTokens = 1500
	}
	if cfg.LLM.StopSequences == nil {
		cfg.LLM.StopSequences = []string{" Human:", " AI:"}
	}
	if cfg.LLM.RequestsPerMinute == 0 {
		cfg.LLM.RequestsPerMinute = 30
	}
	if cfg.LLM.TimeoutSeconds == 0 {
		cfg.LLM.TimeoutSeconds = 90
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".pdf", ".docx", ".odt", ".rtf", ".txt", ".md"}
	}
}
