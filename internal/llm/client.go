package llm

import (
	"context"
)

// EmbedderClient converts text to a fixed-length vector. Implementations are
// deterministic for a fixed (model, text) pair and never return a partially
// filled vector.
type EmbedderClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
