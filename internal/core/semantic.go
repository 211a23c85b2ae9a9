package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/Tzeene1459/ncit-semantic-mapper/internal/config"
	"github.com/Tzeene1459/ncit-semantic-mapper/internal/core/model"
	"github.com/Tzeene1459/ncit-semantic-mapper/internal/driver"
	"github.com/Tzeene1459/ncit-semantic-mapper/internal/llm"
)

const defaultTopK = 5

// Pattern selects one of the canonical semantic search shapes. Each is one
// vector index query followed by a fixed graph join.
type Pattern int

const (
	// PatternPVToCDE searches the PV index and joins each hit to its owning
	// CDE. PVs without a reachable CDE are dropped by the join.
	PatternPVToCDE Pattern = iota
	// PatternConceptToCDE searches the concept index, joins to linked PVs and
	// collects the reachable CDE codes (possibly none).
	PatternConceptToCDE
	// PatternCDEDefinition searches CDE definitions directly, no join.
	PatternCDEDefinition
	// PatternConceptDefinition searches concept definitions directly, no join.
	PatternConceptDefinition
)

func (p Pattern) String() string {
	switch p {
	case PatternPVToCDE:
		return "pv_to_cde"
	case PatternConceptToCDE:
		return "concept_to_cde"
	case PatternCDEDefinition:
		return "cde_definition"
	case PatternConceptDefinition:
		return "concept_definition"
	}
	return "unknown"
}

// SemanticSearcher runs vector similarity searches over the indexed node
// types and shapes the joined rows into ranked candidates.
type SemanticSearcher struct {
	graph    driver.GraphAccessor
	embedder llm.EmbedderClient
	indexes  config.IndexConfig
}

func NewSemanticSearcher(graph driver.GraphAccessor, embedder llm.EmbedderClient, indexes config.IndexConfig) *SemanticSearcher {
	return &SemanticSearcher{
		graph:    graph,
		embedder: embedder,
		indexes:  indexes,
	}
}

// Search embeds the text and runs the pattern. An embedding failure degrades
// to an empty result; callers that need the outage surfaced should embed the
// query themselves and use SearchVector.
func (s *SemanticSearcher) Search(ctx context.Context, pattern Pattern, text string, topK int) ([]model.Candidate, error) {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil || len(vec) == 0 {
		return nil, nil
	}
	return s.SearchVector(ctx, pattern, vec, topK)
}

// SearchVector runs the pattern against a precomputed query embedding. The
// result is capped at topK and sorted by descending score.
func (s *SemanticSearcher) SearchVector(ctx context.Context, pattern Pattern, embedding []float32, topK int) ([]model.Candidate, error) {
	if topK <= 0 {
		topK = defaultTopK
	}
	switch pattern {
	case PatternPVToCDE:
		return s.joined(ctx, driver.PVToCDEQuery, s.indexes.PV, embedding, topK, pvToCDECandidate)
	case PatternConceptToCDE:
		return s.joined(ctx, driver.ConceptToCDEQuery, s.indexes.Concept, embedding, topK, conceptToCDECandidate)
	case PatternCDEDefinition:
		return s.definition(ctx, s.indexes.CDE, embedding, topK)
	case PatternConceptDefinition:
		return s.definition(ctx, s.indexes.Concept, embedding, topK)
	}
	return nil, fmt.Errorf("unknown search pattern %d", pattern)
}

func (s *SemanticSearcher) joined(ctx context.Context, query, index string, embedding []float32, topK int, build func(map[string]any) model.Candidate) ([]model.Candidate, error) {
	rows, err := s.graph.Traverse(ctx, query, map[string]any{
		"index":     index,
		"top_k":     topK,
		"embedding": embedding,
	})
	if err != nil {
		return nil, backendError(err)
	}
	out := make([]model.Candidate, 0, topK)
	for _, row := range rows {
		// The join can fan a single vector hit out to several rows.
		if len(out) == topK {
			break
		}
		out = append(out, build(row))
	}
	sortByScore(out)
	return out, nil
}

func (s *SemanticSearcher) definition(ctx context.Context, index string, embedding []float32, topK int) ([]model.Candidate, error) {
	hits, err := s.graph.VectorSearch(ctx, index, embedding, topK)
	if err != nil {
		return nil, backendError(err)
	}
	out := make([]model.Candidate, 0, len(hits))
	for _, hit := range hits {
		if len(out) == topK {
			break
		}
		out = append(out, model.Candidate{
			Score:      hit.Score,
			Code:       stringValue(hit.Props["code"]),
			Term:       stringValue(hit.Props["term"]),
			Definition: stringValue(hit.Props["definition"]),
		})
	}
	sortByScore(out)
	return out, nil
}

func pvToCDECandidate(row map[string]any) model.Candidate {
	return model.Candidate{
		Score:      numberValue(row["score"]),
		Code:       stringValue(row["cde_code"]),
		Term:       stringValue(row["cde_term"]),
		Definition: stringValue(row["cde_definition"]),
		PVCode:     stringValue(row["pv_code"]),
		PVTerm:     stringValue(row["pv_term"]),
	}
}

func conceptToCDECandidate(row map[string]any) model.Candidate {
	return model.Candidate{
		Score:      numberValue(row["score"]),
		Code:       stringValue(row["concept_code"]),
		Term:       stringValue(row["concept_term"]),
		Definition: stringValue(row["concept_definition"]),
		PVCode:     stringValue(row["pv_code"]),
		PVTerm:     stringValue(row["pv_term"]),
		CDECodes:   stringSlice(row["of_cdes"]),
	}
}

func sortByScore(candidates []model.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
}
