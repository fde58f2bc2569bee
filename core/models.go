package core

import (
	"encoding/binary"
	"slices"

	"github.com/go-crypt/x/blake2b"
)

// Key is a content-derived identifier used to address cached embeddings.
type Key uint64

// KeyFromText generates a deterministic Key from a model identifier and text using BLAKE2b.
// Identical (model, text) pairs always produce identical keys.
func KeyFromText(model, text string) Key {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return Key(binary.LittleEndian.Uint64(sum))
}

// Support is the Yes/No flag used by the catalog for adaptive and remote support.
type Support string

const (
	// SupportYes marks a supported capability.
	SupportYes Support = "Yes"
	// SupportNo marks an unsupported capability.
	SupportNo Support = "No"
)

// Assessment is a single catalog product. Records are validated once at load
// time and never mutated afterwards.
type Assessment struct {
	URL             string   `json:"url"`
	AdaptiveSupport Support  `json:"adaptive_support"`
	Description     string   `json:"description"`
	Duration        int      `json:"duration"` // Minutes
	RemoteSupport   Support  `json:"remote_support"`
	TestType        []string `json:"test_type"`
}

// FilterSpec holds optional per-request constraints. A nil field places no
// constraint on its dimension.
type FilterSpec struct {
	MaxDuration     *int
	AdaptiveSupport *Support
	RemoteSupport   *Support
	TestType        []string
}

// IsEmpty reports whether f constrains nothing.
func (f *FilterSpec) IsEmpty() bool {
	return f == nil ||
		(f.MaxDuration == nil && f.AdaptiveSupport == nil && f.RemoteSupport == nil && len(f.TestType) == 0)
}

// ScoredCandidate pairs a record with its similarity score for one request.
type ScoredCandidate struct {
	Record *Assessment
	Score  float32
}

// Recommendation is the response representation of a scored candidate.
type Recommendation struct {
	URL             string   `json:"url"`
	AdaptiveSupport Support  `json:"adaptive_support"`
	Description     string   `json:"description"`
	Duration        int      `json:"duration"`
	RemoteSupport   Support  `json:"remote_support"`
	TestType        []string `json:"test_type"`
	SimilarityScore float32  `json:"similarity_score"`
}

// NewRecommendation maps a scored candidate to its response shape.
func NewRecommendation(c *ScoredCandidate) Recommendation {
	testType := slices.Clone(c.Record.TestType)
	if testType == nil {
		testType = []string{}
	}
	return Recommendation{
		URL:             c.Record.URL,
		AdaptiveSupport: c.Record.AdaptiveSupport,
		Description:     c.Record.Description,
		Duration:        c.Record.Duration,
		RemoteSupport:   c.Record.RemoteSupport,
		TestType:        testType,
		SimilarityScore: c.Score,
	}
}

// NewRecommendations maps an ordered candidate list, preserving order.
func NewRecommendations(candidates []*ScoredCandidate) []Recommendation {
	out := make([]Recommendation, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, NewRecommendation(c))
	}
	return out
}
