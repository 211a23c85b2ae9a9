package model

// Tier identifies which resolution strategy produced the final answer.
type Tier string

const (
	TierExact    Tier = "EXACT"
	TierSynonym  Tier = "SYNONYM"
	TierSemantic Tier = "SEMANTIC"
	TierNone     Tier = "NONE"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// ConceptRecord is a full vocabulary node as stored in the graph.
type ConceptRecord struct {
	Code       string `json:"code"`
	Term       string `json:"term"`
	Definition string `json:"definition,omitempty"`
	Type       string `json:"type,omitempty"`
}

// Candidate is one scored semantic search hit after its graph join. Code and
// Term identify the primary node for the pattern that produced it: the CDE
// for PV-anchored and CDE-definition searches, the concept otherwise.
type Candidate struct {
	Score      float64  `json:"score"`
	Combined   float64  `json:"combined_score"`
	Code       string   `json:"code"`
	Term       string   `json:"term"`
	Definition string   `json:"definition,omitempty"`
	PVCode     string   `json:"pv_code,omitempty"`
	PVTerm     string   `json:"pv_term,omitempty"`
	CDECodes   []string `json:"of_cdes,omitempty"`
	OCTerm     string   `json:"oc_term,omitempty"`
}

type Alternative struct {
	Code  string  `json:"code,omitempty"`
	Term  string  `json:"term"`
	Score float64 `json:"score,omitempty"`
}

type ResolutionResult struct {
	Tier         Tier          `json:"tier"`
	MatchedCode  string        `json:"matched_code,omitempty"`
	MatchedTerm  string        `json:"matched_term,omitempty"`
	Confidence   Confidence    `json:"confidence,omitempty"`
	Alternatives []Alternative `json:"alternatives,omitempty"`
}
