package contracts

import "context"

// IEmbeddingProvider encodes text into a fixed-length float vector. The
// dimensionality is constant across calls for a given deployment.
type IEmbeddingProvider interface {
	EmbeddingRequest(ctx context.Context, text string) ([]float32, error)
}
