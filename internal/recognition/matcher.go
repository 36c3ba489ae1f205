// Package recognition implements the face recognition core: probe
// aggregation, similarity matching against the customer corpus and the
// embedding update path.
package recognition

import (
	"github.com/trungnq/frontdesk/internal/customer"
	"github.com/trungnq/frontdesk/internal/vectors"
)

// SimilarityThreshold is the acceptance bound for a match. A candidate is
// admissible only when its mean similarity is strictly greater.
const SimilarityThreshold = 0.85

// MatchResult references the best matching customer and the confidence of
// the match. Produced per call, never persisted.
type MatchResult struct {
	Customer   customer.Record
	Confidence float64
}

// Matcher scores a probe vector against candidate customer records.
type Matcher struct {
	threshold float64
}

// NewMatcher creates a matcher with the default acceptance threshold.
func NewMatcher() *Matcher {
	return &Matcher{threshold: SimilarityThreshold}
}

// Score computes a candidate's score: the arithmetic mean of the cosine
// similarities between the probe and every stored embedding. Candidates
// without embeddings score 0.
func (m *Matcher) Score(probe []float32, c *customer.Record) float64 {
	if len(c.Embeddings) == 0 {
		return 0
	}
	var sum float64
	for _, e := range c.Embeddings {
		sum += vectors.CosineSimilarity(probe, e)
	}
	return sum / float64(len(c.Embeddings))
}

// FindMatch selects the admissible candidate with the highest score.
// Equal scores break to the lowest customer id, so the result does not
// depend on iteration order. Returns false when no candidate passes the
// threshold.
func (m *Matcher) FindMatch(probe []float32, candidates []customer.Record) (*MatchResult, bool) {
	var best *MatchResult
	for i := range candidates {
		c := &candidates[i]
		if len(c.Embeddings) == 0 {
			continue
		}
		score := m.Score(probe, c)
		if score <= m.threshold {
			continue
		}
		if best == nil || score > best.Confidence ||
			(score == best.Confidence && c.ID < best.Customer.ID) {
			best = &MatchResult{Customer: *c, Confidence: score}
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}
