package core

import (
	"context"
	"strings"

	"github.com/Tzeene1459/ncit-semantic-mapper/internal/driver"
)

// SynonymResolver resolves a permissible value or a concept code to the set
// of synonym terms linked through the graph. Results are unordered sets:
// traversal order carries no meaning and duplicates are dropped. An empty
// set means no synonyms, not an error.
type SynonymResolver struct {
	graph             driver.GraphAccessor
	pvCaseInsensitive bool
}

func NewSynonymResolver(graph driver.GraphAccessor, pvCaseInsensitive bool) *SynonymResolver {
	return &SynonymResolver{
		graph:             graph,
		pvCaseInsensitive: pvCaseInsensitive,
	}
}

// FromPermissibleValue walks PV -[:HAS_CONCEPT]-> NCIT -[:HAS_SYNONYM]-> SYN.
// PV term matching is case-sensitive unless configured otherwise.
func (r *SynonymResolver) FromPermissibleValue(ctx context.Context, pvTerm string) ([]string, error) {
	query := driver.SynonymsFromPVQuery
	if r.pvCaseInsensitive {
		query = driver.SynonymsFromPVFoldedQuery
	}
	rows, err := r.graph.Traverse(ctx, query, map[string]any{"term": strings.TrimSpace(pvTerm)})
	if err != nil {
		return nil, backendError(err)
	}
	return collectSynonyms(rows), nil
}

// FromConceptCode walks NCIT -[:HAS_SYNONYM]-> SYN for a concept code.
func (r *SynonymResolver) FromConceptCode(ctx context.Context, code string) ([]string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	rows, err := r.graph.Traverse(ctx, driver.SynonymsFromCodeQuery, map[string]any{"code": code})
	if err != nil {
		return nil, backendError(err)
	}
	return collectSynonyms(rows), nil
}

func collectSynonyms(rows []map[string]any) []string {
	seen := make(map[string]struct{}, len(rows))
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		term := stringValue(row["synonym"])
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	return out
}
