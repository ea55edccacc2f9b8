package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gitgeistai/gitgeist-ai/providers/contracts"
	ollama_models "github.com/gitgeistai/gitgeist-ai/providers/ollama/models"
)

// OllamaConfig implements the embedding provider interface against a local
// Ollama server.
type OllamaConfig struct {
	BaseURL string
	Model   string
	client  *http.Client
}

const (
	defaultBaseURL = "http://localhost:11434/api"
	defaultModel   = "nomic-embed-text"
)

// NewOllamaEmbeddingProvider initializes a new Ollama embedding provider.
func NewOllamaEmbeddingProvider(config *OllamaConfig) contracts.IEmbeddingProvider {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := config.Model
	if model == "" {
		model = defaultModel
	}
	return &OllamaConfig{
		BaseURL: baseURL,
		Model:   model,
		client:  &http.Client{},
	}
}

// EmbeddingRequest encodes text into a float vector via POST /embeddings.
func (ollamaProvider *OllamaConfig) EmbeddingRequest(ctx context.Context, text string) ([]float32, error) {
	reqBody := ollama_models.OllamaEmbeddingRequest{
		Model:  ollamaProvider.Model,
		Prompt: text,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshalling request body: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/embeddings", ollamaProvider.BaseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ollamaProvider.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, fmt.Errorf("request canceled: %v", err)
		}
		return nil, fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiError ollama_models.OllamaError
		if err := json.Unmarshal(body, &apiError); err != nil || apiError.Error == "" {
			return nil, fmt.Errorf("embedding request failed with status code '%d'", resp.StatusCode)
		}
		return nil, fmt.Errorf("embedding request failed with status code '%d' - %s", resp.StatusCode, apiError.Error)
	}

	var response ollama_models.OllamaEmbeddingResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("error unmarshalling response: %v", err)
	}

	embedding := make([]float32, len(response.Embedding))
	for i, v := range response.Embedding {
		embedding[i] = float32(v)
	}
	return embedding, nil
}
