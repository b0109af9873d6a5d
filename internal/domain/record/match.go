package record

import "math"

// Match is a nearest-neighbor hit: a stored record and its similarity to the query.
type Match struct {
	record Record
	score  float64
}

// NewMatch creates a Match. score is clamped to [0,1]; 1 means identical.
func NewMatch(rec Record, score float64) Match {
	return Match{record: rec, score: math.Max(0, math.Min(1, score))}
}

// Record returns the matched record.
func (m Match) Record() Record { return m.record }

// Score returns the similarity in [0,1].
func (m Match) Score() float64 { return m.score }

// Distance returns 1 - Score, where 0 means identical.
func (m Match) Distance() float64 { return 1 - m.score }
