package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	ollama_models "github.com/gitgeistai/gitgeist-ai/providers/ollama/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ollama_models.OllamaEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "hello world", req.Prompt)

		json.NewEncoder(w).Encode(ollama_models.OllamaEmbeddingResponse{
			Embedding: []float64{0.25, -0.5, 1.0},
		})
	}))
	defer server.Close()

	provider := NewOllamaEmbeddingProvider(&OllamaConfig{BaseURL: server.URL})

	embedding, err := provider.EmbeddingRequest(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, -0.5, 1.0}, embedding)
}

func TestEmbeddingRequest_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(ollama_models.OllamaError{Error: "model not found"})
	}))
	defer server.Close()

	provider := NewOllamaEmbeddingProvider(&OllamaConfig{BaseURL: server.URL})

	_, err := provider.EmbeddingRequest(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestEmbeddingRequest_Canceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	provider := NewOllamaEmbeddingProvider(&OllamaConfig{BaseURL: server.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := provider.EmbeddingRequest(ctx, "hello")
	assert.Error(t, err)
}
