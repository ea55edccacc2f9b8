package models

// OllamaEmbeddingRequest is the request body for the /embeddings endpoint.
type OllamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// OllamaEmbeddingResponse is the response body for the /embeddings endpoint.
type OllamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// OllamaError is the error envelope Ollama returns on non-200 responses.
type OllamaError struct {
	Error string `json:"error"`
}
