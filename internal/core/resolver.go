package core

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Tzeene1459/ncit-semantic-mapper/internal/config"
	"github.com/Tzeene1459/ncit-semantic-mapper/internal/core/model"
	"github.com/Tzeene1459/ncit-semantic-mapper/internal/driver"
	"github.com/Tzeene1459/ncit-semantic-mapper/internal/llm"
)

// codeShape matches NCIT-style codes such as C4878 after case folding.
var codeShape = regexp.MustCompile(`^[A-Z]\d+$`)

// Options are per-call overrides; zero values fall back to the resolver's
// configured defaults.
type Options struct {
	TopK                     int
	DefinitionThresholdWords int
	Weights                  *RerankWeights
	Deadline                 time.Duration
	MaxAlternatives          int
}

// Resolver runs the cascading resolution pipeline:
// EXACT -> SYNONYM -> SEMANTIC -> RERANK. The first tier to produce any
// result wins and later tiers are skipped; tiers are never blended.
type Resolver struct {
	graph    driver.GraphAccessor
	embedder llm.EmbedderClient
	exact    *ExactMatcher
	synonyms *SynonymResolver
	searcher *SemanticSearcher
	cfg      config.ResolverConfig
	log      *zap.Logger
}

func NewResolver(graph driver.GraphAccessor, embedder llm.EmbedderClient, cfg *config.Config, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		graph:    graph,
		embedder: embedder,
		exact:    NewExactMatcher(graph, cfg.Resolver.TermMatchCaseInsensitive, cfg.Indexes.Fulltext),
		synonyms: NewSynonymResolver(graph, cfg.Resolver.PVSynonymCaseInsensitive),
		searcher: NewSemanticSearcher(graph, embedder, cfg.Indexes),
		cfg:      cfg.Resolver,
		log:      log,
	}
}

// Resolve maps a raw code, term or permissible value to a canonical concept.
// Exhausting every tier without a candidate is a normal outcome reported as
// TierNone; only backend faults, deadline expiry and blank input are errors.
func (r *Resolver) Resolve(ctx context.Context, raw string, opts Options) (model.ResolutionResult, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return model.ResolutionResult{}, fmt.Errorf("%w: blank input", model.ErrInvalidInput)
	}

	deadline := opts.Deadline
	if deadline == 0 && r.cfg.DeadlineSeconds > 0 {
		deadline = time.Duration(r.cfg.DeadlineSeconds) * time.Second
	}
	if deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	codeShaped := codeShape.MatchString(strings.ToUpper(input))

	result, done, err := r.exactTier(ctx, input, codeShaped)
	if err != nil || done {
		return result, err
	}

	result, done, err = r.synonymTier(ctx, input, codeShaped)
	if err != nil || done {
		return result, err
	}

	return r.semanticTier(ctx, input, opts)
}

func (r *Resolver) exactTier(ctx context.Context, input string, codeShaped bool) (model.ResolutionResult, bool, error) {
	var rec *model.ConceptRecord
	var err error
	if codeShaped {
		rec, err = r.exact.MatchByCode(ctx, input)
	} else {
		rec, err = r.exact.MatchByTerm(ctx, input)
	}
	if err != nil {
		return model.ResolutionResult{}, false, err
	}
	if rec == nil {
		return model.ResolutionResult{}, false, nil
	}
	r.log.Debug("exact hit", zap.String("code", rec.Code))
	return model.ResolutionResult{
		Tier:        model.TierExact,
		MatchedCode: rec.Code,
		MatchedTerm: rec.Term,
		Confidence:  model.ConfidenceHigh,
	}, true, nil
}

func (r *Resolver) synonymTier(ctx context.Context, input string, codeShaped bool) (model.ResolutionResult, bool, error) {
	var synonyms []string
	var err error
	if codeShaped {
		synonyms, err = r.synonyms.FromConceptCode(ctx, input)
	} else {
		synonyms, err = r.synonyms.FromPermissibleValue(ctx, input)
	}
	if err != nil {
		return model.ResolutionResult{}, false, err
	}
	if len(synonyms) == 0 {
		return model.ResolutionResult{}, false, nil
	}
	alternatives := make([]model.Alternative, 0, len(synonyms))
	for _, term := range synonyms {
		alternatives = append(alternatives, model.Alternative{Term: term})
	}
	r.log.Debug("synonym hit", zap.Int("count", len(synonyms)))
	return model.ResolutionResult{
		Tier:         model.TierSynonym,
		Confidence:   model.ConfidenceMedium,
		Alternatives: alternatives,
	}, true, nil
}

func (r *Resolver) semanticTier(ctx context.Context, input string, opts Options) (model.ResolutionResult, error) {
	// The query is embedded once up front: every pattern and the reranker
	// share this vector, and an embedding outage here is fatal for the tier.
	queryVec, err := r.embedder.Embed(ctx, input)
	if err != nil {
		return model.ResolutionResult{}, backendError(err)
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = r.cfg.TopK
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	threshold := opts.DefinitionThresholdWords
	if threshold <= 0 {
		threshold = r.cfg.DefinitionThresholdWords
	}
	if threshold <= 0 {
		threshold = 4
	}

	patterns := []Pattern{PatternPVToCDE, PatternConceptToCDE}
	if len(strings.Fields(input)) > threshold {
		patterns = append(patterns, PatternCDEDefinition, PatternConceptDefinition)
	}

	// Patterns have no data dependency on each other; each list stays
	// internally sorted but no cross-pattern ordering is assumed.
	results := make([][]model.Candidate, len(patterns))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, pattern := range patterns {
		i, pattern := i, pattern
		group.Go(func() error {
			candidates, err := r.searcher.SearchVector(groupCtx, pattern, queryVec, topK)
			if err != nil {
				return err
			}
			results[i] = candidates
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return model.ResolutionResult{}, err
	}

	weights := RerankWeights{Baseline: r.cfg.BaselineWeight, Context: r.cfg.ContextWeight}
	if opts.Weights != nil {
		weights = *opts.Weights
	}

	// Only PV-anchored candidates carry an object-class context to rerank
	// against; the other patterns keep their vector score.
	reranker := NewContextReranker(r.graph, r.embedder, weights)
	merged := reranker.Rerank(ctx, results[0], queryVec)
	for _, candidates := range results[1:] {
		for _, c := range candidates {
			c.Combined = c.Score
			merged = append(merged, c)
		}
	}
	if len(merged) == 0 {
		r.log.Debug("no semantic candidates", zap.String("input", input))
		return model.ResolutionResult{Tier: model.TierNone}, nil
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Combined > merged[j].Combined
	})

	best := merged[0]
	maxAlternatives := opts.MaxAlternatives
	if maxAlternatives <= 0 {
		maxAlternatives = topK
	}
	alternatives := make([]model.Alternative, 0, maxAlternatives)
	for _, c := range merged[1:] {
		if len(alternatives) == maxAlternatives {
			break
		}
		alternatives = append(alternatives, model.Alternative{Code: c.Code, Term: c.Term, Score: c.Combined})
	}

	return model.ResolutionResult{
		Tier:         model.TierSemantic,
		MatchedCode:  best.Code,
		MatchedTerm:  best.Term,
		Confidence:   r.confidence(best.Combined),
		Alternatives: alternatives,
	}, nil
}

func (r *Resolver) confidence(score float64) model.Confidence {
	high := r.cfg.HighConfidenceScore
	if high == 0 {
		high = 0.95
	}
	medium := r.cfg.MediumConfidenceScore
	if medium == 0 {
		medium = 0.85
	}
	switch {
	case score >= high:
		return model.ConfidenceHigh
	case score >= medium:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

// Suggest exposes full-text near-miss lookups for callers that want hints
// after a TierNone resolution.
func (r *Resolver) Suggest(ctx context.Context, term string, limit int) ([]model.ConceptRecord, error) {
	return r.exact.SuggestTerms(ctx, term, limit)
}
