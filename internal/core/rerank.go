package core

import (
	"context"
	"math"
	"sort"

	"github.com/Tzeene1459/ncit-semantic-mapper/internal/core/model"
	"github.com/Tzeene1459/ncit-semantic-mapper/internal/driver"
	"github.com/Tzeene1459/ncit-semantic-mapper/internal/llm"
)

// RerankWeights fuses the vector baseline with the object-class context
// signal. Weights are expected to sum to 1 so combined scores stay in the
// baseline's range.
type RerankWeights struct {
	Baseline float64
	Context  float64
}

func DefaultRerankWeights() RerankWeights {
	return RerankWeights{Baseline: 0.7, Context: 0.3}
}

// ContextReranker re-scores PV-anchored candidates using the object class of
// each candidate's CDE. Embedding similarity alone conflates biomedical
// concepts that merely share vocabulary; the object class a CDE measures
// disambiguates them without embedding the candidate text itself.
type ContextReranker struct {
	graph    driver.GraphAccessor
	embedder llm.EmbedderClient
	weights  RerankWeights
}

func NewContextReranker(graph driver.GraphAccessor, embedder llm.EmbedderClient, weights RerankWeights) *ContextReranker {
	if weights.Baseline == 0 && weights.Context == 0 {
		weights = DefaultRerankWeights()
	}
	return &ContextReranker{
		graph:    graph,
		embedder: embedder,
		weights:  weights,
	}
}

// Rerank sets Combined on every candidate and returns them sorted by
// descending combined score. The sort is stable, so exact ties keep their
// original order. queryVec must be the embedding of the original input, not
// of the candidate text. A candidate without a CDE, without an object class,
// or whose lookup or embed fails keeps its baseline as the combined score;
// such faults are never surfaced.
func (r *ContextReranker) Rerank(ctx context.Context, candidates []model.Candidate, queryVec []float32) []model.Candidate {
	out := make([]model.Candidate, len(candidates))
	copy(out, candidates)

	for i := range out {
		out[i].Combined = out[i].Score
		if out[i].Code == "" {
			continue
		}
		ocTerm, err := r.objectClassTerm(ctx, out[i].Code)
		if err != nil || ocTerm == "" {
			continue
		}
		out[i].OCTerm = ocTerm

		ocVec, err := r.embedder.Embed(ctx, ocTerm)
		if err != nil || len(ocVec) == 0 {
			continue
		}
		ocScore := cosineSimilarity(queryVec, ocVec)
		out[i].Combined = r.weights.Baseline*out[i].Score + r.weights.Context*ocScore
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Combined > out[j].Combined
	})
	return out
}

// objectClassTerm fetches the first object class linked through CDE->DEC->OC.
// Absence is legal and returns an empty term.
func (r *ContextReranker) objectClassTerm(ctx context.Context, cdeCode string) (string, error) {
	rows, err := r.graph.Traverse(ctx, driver.ObjectClassForCDEQuery, map[string]any{"cde_code": cdeCode})
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	return stringValue(rows[0]["oc_term"]), nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
