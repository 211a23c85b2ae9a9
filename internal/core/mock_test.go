package core

import (
	"context"
	"sync"

	"github.com/Tzeene1459/ncit-semantic-mapper/internal/driver"
)

type mockGraph struct {
	mu sync.Mutex

	exactByCodeFn func(label, code string) (*driver.NodeRecord, error)
	exactByTermFn func(label, term string, caseInsensitive bool) (*driver.NodeRecord, error)
	traverseFn    func(query string, params map[string]any) ([]map[string]any, error)
	vectorFn      func(index string, embedding []float32, topK int) ([]driver.VectorHit, error)

	lastCode        string
	lastTerm        string
	lastInsensitive bool
	lastQuery       string
	lastParams      map[string]any
	vectorIndexes   []string
}

func (m *mockGraph) ExactByCode(ctx context.Context, label, code string) (*driver.NodeRecord, error) {
	m.mu.Lock()
	m.lastCode = code
	m.mu.Unlock()
	if m.exactByCodeFn == nil {
		return nil, nil
	}
	return m.exactByCodeFn(label, code)
}

func (m *mockGraph) ExactByTerm(ctx context.Context, label, term string, caseInsensitive bool) (*driver.NodeRecord, error) {
	m.mu.Lock()
	m.lastTerm = term
	m.lastInsensitive = caseInsensitive
	m.mu.Unlock()
	if m.exactByTermFn == nil {
		return nil, nil
	}
	return m.exactByTermFn(label, term, caseInsensitive)
}

func (m *mockGraph) Traverse(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	m.mu.Lock()
	m.lastQuery = query
	m.lastParams = params
	m.mu.Unlock()
	if m.traverseFn == nil {
		return nil, nil
	}
	return m.traverseFn(query, params)
}

func (m *mockGraph) VectorSearch(ctx context.Context, index string, embedding []float32, topK int) ([]driver.VectorHit, error) {
	m.mu.Lock()
	m.vectorIndexes = append(m.vectorIndexes, index)
	m.mu.Unlock()
	if m.vectorFn == nil {
		return nil, nil
	}
	return m.vectorFn(index, embedding, topK)
}

func (m *mockGraph) Close(ctx context.Context) error {
	return nil
}

type mockEmbedder struct {
	mu     sync.Mutex
	vector []float32
	err    error
	fn     func(text string) ([]float32, error)
	calls  int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.fn != nil {
		return m.fn(text)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.vector, nil
}

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
