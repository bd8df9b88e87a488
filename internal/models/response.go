package models

// ExtractResponse is the response for a keyword extraction request.
type ExtractResponse struct {
	Keywords string `json:"keywords"`
}

// SimilarityResponse is the response for a similarity request.
type SimilarityResponse struct {
	Similarity string `json:"similarity"`
}

// GradeResponse is the response for a single grade request.
type GradeResponse struct {
	Grade string `json:"grade"`
}

// StatusResponse reports how the service is configured.
type StatusResponse struct {
	EmbeddingBackend    string `json:"embedding_backend"`
	EmbeddingDimensions int    `json:"embedding_dimensions"`
	LLMConfigured       bool   `json:"llm_configured"`
	LLMModel            string `json:"llm_model,omitempty"`
	// VectorDBBytes is the on-disk size of the word-vector database, 0 when not used.
	VectorDBBytes int64 `json:"vector_db_bytes"`
}
