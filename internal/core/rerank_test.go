package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tzeene1459/ncit-semantic-mapper/internal/core/model"
	"github.com/Tzeene1459/ncit-semantic-mapper/internal/driver"
)

func ocGraph(terms map[string]string) *mockGraph {
	return &mockGraph{
		traverseFn: func(query string, params map[string]any) ([]map[string]any, error) {
			if query != driver.ObjectClassForCDEQuery {
				return nil, fmt.Errorf("unexpected query")
			}
			term, ok := terms[params["cde_code"].(string)]
			if !ok {
				return nil, nil
			}
			return []map[string]any{{"oc_term": term}}, nil
		},
	}
}

func TestRerankCombinesScores(t *testing.T) {
	graph := ocGraph(map[string]string{"CDE1": "Blood Pressure"})
	// Identical OC and query vectors give cosine similarity 1.
	query := []float32{0.6, 0.8}
	embedder := &mockEmbedder{vector: []float32{0.6, 0.8}}
	r := NewContextReranker(graph, embedder, RerankWeights{Baseline: 0.7, Context: 0.3})

	out := r.Rerank(context.Background(), []model.Candidate{{Score: 0.8, Code: "CDE1"}}, query)
	require.Len(t, out, 1)
	assert.Equal(t, "Blood Pressure", out[0].OCTerm)
	assert.InDelta(t, 0.7*0.8+0.3*1.0, out[0].Combined, 1e-9)
}

func TestRerankReorders(t *testing.T) {
	graph := ocGraph(map[string]string{"CDE-OC": "Blood Pressure"})
	query := []float32{1, 0}
	embedder := &mockEmbedder{vector: []float32{1, 0}}
	r := NewContextReranker(graph, embedder, RerankWeights{Baseline: 0.7, Context: 0.3})

	// 0.7*0.80 + 0.3*1 = 0.86 beats the OC-less 0.84 baseline.
	out := r.Rerank(context.Background(), []model.Candidate{
		{Score: 0.84, Code: "CDE-NONE"},
		{Score: 0.80, Code: "CDE-OC"},
	}, query)
	require.Len(t, out, 2)
	assert.Equal(t, "CDE-OC", out[0].Code)
	assert.InDelta(t, 0.86, out[0].Combined, 1e-9)
	assert.InDelta(t, 0.84, out[1].Combined, 1e-9)
}

func TestRerankMissingOCKeepsBaseline(t *testing.T) {
	r := NewContextReranker(ocGraph(nil), &mockEmbedder{vector: []float32{1}}, DefaultRerankWeights())

	out := r.Rerank(context.Background(), []model.Candidate{{Score: 0.9, Code: "CDE1"}}, []float32{1})
	require.Len(t, out, 1)
	assert.Equal(t, 0.9, out[0].Combined)
	assert.Empty(t, out[0].OCTerm)
}

func TestRerankFaultDegradesCandidate(t *testing.T) {
	graph := &mockGraph{
		traverseFn: func(query string, params map[string]any) ([]map[string]any, error) {
			return nil, fmt.Errorf("traversal failed")
		},
	}
	r := NewContextReranker(graph, &mockEmbedder{vector: []float32{1}}, DefaultRerankWeights())

	out := r.Rerank(context.Background(), []model.Candidate{{Score: 0.75, Code: "CDE1"}}, []float32{1})
	require.Len(t, out, 1)
	assert.Equal(t, 0.75, out[0].Combined)
}

func TestRerankEmbedFaultDegradesCandidate(t *testing.T) {
	graph := ocGraph(map[string]string{"CDE1": "Blood Pressure"})
	r := NewContextReranker(graph, &mockEmbedder{err: fmt.Errorf("rate limited")}, DefaultRerankWeights())

	out := r.Rerank(context.Background(), []model.Candidate{{Score: 0.75, Code: "CDE1"}}, []float32{1})
	require.Len(t, out, 1)
	assert.Equal(t, 0.75, out[0].Combined)
}

func TestRerankStableOnTies(t *testing.T) {
	r := NewContextReranker(ocGraph(nil), &mockEmbedder{vector: []float32{1}}, DefaultRerankWeights())

	out := r.Rerank(context.Background(), []model.Candidate{
		{Score: 0.5, Code: "CDE-A"},
		{Score: 0.5, Code: "CDE-B"},
	}, []float32{1})
	require.Len(t, out, 2)
	assert.Equal(t, "CDE-A", out[0].Code)
	assert.Equal(t, "CDE-B", out[1].Code)
}

func TestRerankIsDeterministic(t *testing.T) {
	graph := ocGraph(map[string]string{"CDE1": "Blood Pressure", "CDE2": "Heart Rate"})
	embedder := &mockEmbedder{vector: []float32{0.3, 0.4}}
	r := NewContextReranker(graph, embedder, DefaultRerankWeights())

	in := []model.Candidate{
		{Score: 0.9, Code: "CDE1"},
		{Score: 0.85, Code: "CDE2"},
		{Score: 0.8, Code: "CDE3"},
	}
	first := r.Rerank(context.Background(), in, []float32{0.3, 0.4})
	second := r.Rerank(context.Background(), in, []float32{0.3, 0.4})
	assert.Equal(t, first, second)
}

func TestCombinedScoreBounded(t *testing.T) {
	// With baseline and oc_score in [0,1] and weights summing to 1,
	// combined stays in [0,1].
	graph := ocGraph(map[string]string{"CDE1": "Blood Pressure"})
	embedder := &mockEmbedder{vector: []float32{1, 0}}
	r := NewContextReranker(graph, embedder, RerankWeights{Baseline: 0.7, Context: 0.3})

	for _, score := range []float64{0, 0.25, 0.5, 1} {
		out := r.Rerank(context.Background(), []model.Candidate{{Score: score, Code: "CDE1"}}, []float32{1, 0})
		require.Len(t, out, 1)
		assert.GreaterOrEqual(t, out[0].Combined, 0.0)
		assert.LessOrEqual(t, out[0].Combined, 1.0)
	}
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity(nil, []float32{1}))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1}, []float32{1, 2}))
}
