package driver

import "context"

// NodeRecord is the stored form of a vocabulary node returned by exact lookups.
// Embedding is nil when the node has no vector or the vector is unreadable.
type NodeRecord struct {
	Code       string
	Term       string
	Definition string
	Type       string
	Embedding  []float32
}

// VectorHit is one row of a vector index query: the node's returned
// properties plus its cosine similarity score.
type VectorHit struct {
	Score float64
	Props map[string]any
}

// GraphAccessor is the read-only capability set the resolution core consumes.
// Any backend implementing it is substitutable, including in-memory fakes.
// Backend faults are returned as errors, never as silent empty results.
type GraphAccessor interface {
	// ExactByCode returns the node with the given label and code, or nil when absent.
	ExactByCode(ctx context.Context, label, code string) (*NodeRecord, error)
	// ExactByTerm matches on the stored term, optionally case-insensitively.
	// The returned record keeps the stored casing, not the caller's.
	ExactByTerm(ctx context.Context, label, term string, caseInsensitive bool) (*NodeRecord, error)
	// Traverse runs a read query and returns its rows as column->value maps.
	Traverse(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
	// VectorSearch returns at most topK hits ordered by descending cosine
	// score in [-1, 1]. Tie order is backend-defined.
	VectorSearch(ctx context.Context, indexName string, embedding []float32, topK int) ([]VectorHit, error)
	Close(ctx context.Context) error
}
