package driver

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

var labelPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Neo4jAccessor is the bolt-backed GraphAccessor. The handle is safe for
// concurrent use and is meant to be acquired once per process.
type Neo4jAccessor struct {
	driver neo4j.DriverWithContext
	log    *zap.Logger
}

type Neo4jOptions struct {
	URI            string
	User           string
	Password       string
	MaxPoolSize    int
	ConnectTimeout time.Duration
}

func NewNeo4jAccessor(ctx context.Context, opts Neo4jOptions, log *zap.Logger) (*Neo4jAccessor, error) {
	if log == nil {
		log = zap.NewNop()
	}

	driver, err := neo4j.NewDriverWithContext(opts.URI, neo4j.BasicAuth(opts.User, opts.Password, ""), func(cfg *neo4j.Config) {
		if opts.MaxPoolSize > 0 {
			cfg.MaxConnectionPoolSize = opts.MaxPoolSize
		}
		if opts.ConnectTimeout > 0 {
			cfg.SocketConnectTimeout = opts.ConnectTimeout
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify connectivity: %w", err)
	}

	log.Info("connected to graph", zap.String("uri", opts.URI))
	return &Neo4jAccessor{driver: driver, log: log}, nil
}

func (a *Neo4jAccessor) Close(ctx context.Context) error {
	a.log.Info("closing graph driver")
	return a.driver.Close(ctx)
}

func (a *Neo4jAccessor) run(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	result, err := neo4j.ExecuteQuery(ctx, a.driver, query, params,
		neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithReadersRouting())
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return result.Records, nil
}

func (a *Neo4jAccessor) ExactByCode(ctx context.Context, label, code string) (*NodeRecord, error) {
	if !labelPattern.MatchString(label) {
		return nil, fmt.Errorf("invalid node label %q", label)
	}
	records, err := a.run(ctx, fmt.Sprintf(ExactByCodeQuery, label), map[string]any{"code": code})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return nodeFromRecord(records[0]), nil
}

func (a *Neo4jAccessor) ExactByTerm(ctx context.Context, label, term string, caseInsensitive bool) (*NodeRecord, error) {
	if !labelPattern.MatchString(label) {
		return nil, fmt.Errorf("invalid node label %q", label)
	}
	query := ExactByTermQuery
	if caseInsensitive {
		query = ExactByTermFoldedQuery
	}
	records, err := a.run(ctx, fmt.Sprintf(query, label), map[string]any{"term": term})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return nodeFromRecord(records[0]), nil
}

func (a *Neo4jAccessor) Traverse(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	records, err := a.run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec.AsMap())
	}
	return rows, nil
}

func (a *Neo4jAccessor) VectorSearch(ctx context.Context, indexName string, embedding []float32, topK int) ([]VectorHit, error) {
	records, err := a.run(ctx, VectorSearchQuery, map[string]any{
		"index":     indexName,
		"top_k":     topK,
		"embedding": embedding,
	})
	if err != nil {
		return nil, err
	}
	hits := make([]VectorHit, 0, len(records))
	for _, rec := range records {
		props := rec.AsMap()
		score, _ := props["score"].(float64)
		delete(props, "score")
		hits = append(hits, VectorHit{Score: score, Props: props})
	}
	return hits, nil
}

func nodeFromRecord(rec *neo4j.Record) *NodeRecord {
	props := rec.AsMap()
	node := &NodeRecord{}
	node.Code, _ = props["code"].(string)
	node.Term, _ = props["term"].(string)
	node.Definition, _ = props["definition"].(string)
	node.Type, _ = props["type"].(string)
	node.Embedding = vectorFromValue(props["embedding"])
	return node
}

// vectorFromValue tolerates missing or malformed stored vectors by
// returning nil rather than failing the lookup.
func vectorFromValue(v any) []float32 {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return nil
	}
	vec := make([]float32, 0, len(items))
	for _, item := range items {
		f, ok := item.(float64)
		if !ok {
			return nil
		}
		vec = append(vec, float32(f))
	}
	return vec
}
