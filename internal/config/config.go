package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type GraphConfig struct {
	URI                   string `toml:"uri"`
	User                  string `toml:"user"`
	Password              string `toml:"password"`
	MaxPoolSize           int    `toml:"max_pool_size"`
	ConnectTimeoutSeconds int    `toml:"connect_timeout_seconds"`
}

type EmbeddingConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

// IndexConfig names the vector and full-text indexes the graph carries.
// Defaults match the indexes built by the ETL pipeline.
type IndexConfig struct {
	PV       string `toml:"pv"`
	Concept  string `toml:"concept"`
	CDE      string `toml:"cde"`
	Fulltext string `toml:"fulltext"`
}

type ResolverConfig struct {
	TopK                     int     `toml:"top_k"`
	DefinitionThresholdWords int     `toml:"definition_threshold_words"`
	BaselineWeight           float64 `toml:"baseline_weight"`
	ContextWeight            float64 `toml:"context_weight"`
	HighConfidenceScore      float64 `toml:"high_confidence_score"`
	MediumConfidenceScore    float64 `toml:"medium_confidence_score"`
	TermMatchCaseInsensitive bool    `toml:"term_match_case_insensitive"`
	PVSynonymCaseInsensitive bool    `toml:"pv_synonym_case_insensitive"`
	DeadlineSeconds          int     `toml:"deadline_seconds"`
}

type Config struct {
	Graph     GraphConfig     `toml:"graph"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Indexes   IndexConfig     `toml:"indexes"`
	Resolver  ResolverConfig  `toml:"resolver"`
}

func Default() *Config {
	return &Config{
		Graph: GraphConfig{
			URI:                   "bolt://localhost:7687",
			User:                  "neo4j",
			MaxPoolSize:           50,
			ConnectTimeoutSeconds: 10,
		},
		Embedding: EmbeddingConfig{
			Provider: "openai",
		},
		Indexes: IndexConfig{
			PV:       "pvIndex",
			Concept:  "ncitIndex",
			CDE:      "cdeIndex",
			Fulltext: "ftTermIndex",
		},
		Resolver: ResolverConfig{
			TopK:                     5,
			DefinitionThresholdWords: 4,
			BaselineWeight:           0.7,
			ContextWeight:            0.3,
			HighConfidenceScore:      0.95,
			MediumConfidenceScore:    0.85,
			TermMatchCaseInsensitive: true,
			PVSynonymCaseInsensitive: false,
			DeadlineSeconds:          30,
		},
	}
}

// Load reads a TOML file over the defaults, so absent keys keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}
