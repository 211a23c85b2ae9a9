package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Tzeene1459/ncit-semantic-mapper/internal/core/model"
	"github.com/Tzeene1459/ncit-semantic-mapper/internal/driver"
)

const conceptLabel = "NCIT"

// ExactMatcher resolves a code or a term to a concept via direct equality
// lookup. Absence is a normal outcome, reported as a nil record with no error.
type ExactMatcher struct {
	graph               driver.GraphAccessor
	termCaseInsensitive bool
	fulltextIndex       string
}

func NewExactMatcher(graph driver.GraphAccessor, termCaseInsensitive bool, fulltextIndex string) *ExactMatcher {
	return &ExactMatcher{
		graph:               graph,
		termCaseInsensitive: termCaseInsensitive,
		fulltextIndex:       fulltextIndex,
	}
}

func (m *ExactMatcher) MatchByCode(ctx context.Context, code string) (*model.ConceptRecord, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	node, err := m.graph.ExactByCode(ctx, conceptLabel, code)
	if err != nil {
		return nil, backendError(err)
	}
	if node == nil {
		return nil, nil
	}
	return conceptFromNode(node), nil
}

// MatchByTerm returns the record with its stored casing, not the input's.
func (m *ExactMatcher) MatchByTerm(ctx context.Context, term string) (*model.ConceptRecord, error) {
	term = strings.TrimSpace(term)
	node, err := m.graph.ExactByTerm(ctx, conceptLabel, term, m.termCaseInsensitive)
	if err != nil {
		return nil, backendError(err)
	}
	if node == nil {
		return nil, nil
	}
	return conceptFromNode(node), nil
}

// SuggestTerms runs a full-text search over concept terms, for callers that
// want near-miss hints after an exact miss.
func (m *ExactMatcher) SuggestTerms(ctx context.Context, term string, limit int) ([]model.ConceptRecord, error) {
	term = strings.TrimSpace(term)
	if term == "" || m.fulltextIndex == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}
	rows, err := m.graph.Traverse(ctx, driver.FulltextTermQuery, map[string]any{
		"index": m.fulltextIndex,
		"term":  term,
		"limit": limit,
	})
	if err != nil {
		return nil, backendError(err)
	}
	out := make([]model.ConceptRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.ConceptRecord{
			Code:       stringValue(row["code"]),
			Term:       stringValue(row["term"]),
			Definition: stringValue(row["definition"]),
			Type:       stringValue(row["type"]),
		})
	}
	return out, nil
}

func conceptFromNode(node *driver.NodeRecord) *model.ConceptRecord {
	return &model.ConceptRecord{
		Code:       node.Code,
		Term:       node.Term,
		Definition: node.Definition,
		Type:       node.Type,
	}
}

// backendError classifies a fault from the graph or embedding backend into
// the resolution error taxonomy.
func backendError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", model.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", model.ErrUnavailable, err)
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func numberValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
