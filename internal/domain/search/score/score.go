// Package score normalizes raw store relevance values into 0-100 percentages.
package score

import (
	"fmt"
	"math"
)

// MinScore is the relevance floor: candidates scoring below it are dropped.
const MinScore = 50

// Convention names how the vector store reports relevance.
// A deployment uses one convention for every kind.
type Convention string

const (
	// Distance means smaller is closer, e.g. cosine distance in [0,2].
	Distance Convention = "distance"
	// Similarity means bigger is closer, e.g. cosine similarity in [-1,1].
	Similarity Convention = "similarity"
)

// Parse validates a convention name. Empty selects Distance.
func Parse(s string) (Convention, error) {
	c := Convention(s)
	if c == "" {
		return Distance, nil
	}
	if !c.IsValid() {
		return "", fmt.Errorf("unknown relevance convention %q", s)
	}
	return c, nil
}

// IsValid checks if the convention is one of the supported values.
func (c Convention) IsValid() bool {
	return c == Distance || c == Similarity
}

// Similarity converts a raw relevance value into a non-negative similarity.
func (c Convention) Similarity(raw float64) float64 {
	if math.IsNaN(raw) {
		return 0
	}
	var sim float64
	if c == Similarity {
		sim = raw
	} else {
		sim = 1 - raw
	}
	return math.Max(0, sim)
}

// Score converts a raw relevance value into an integer percentage in [0,100].
func (c Convention) Score(raw float64) int {
	pct := math.Round(c.Similarity(raw) * 100)
	return int(math.Min(pct, 100))
}

// Passes reports whether a score meets the relevance floor.
func Passes(score int) bool {
	return score >= MinScore
}
