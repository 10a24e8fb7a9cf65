package llm

import (
	"context"
)

// EmbedderClient turns a text string into a fixed-length vector for semantic
// comparison. Implementations wrap external embedding APIs; the catalog never
// computes embeddings itself.
type EmbedderClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
