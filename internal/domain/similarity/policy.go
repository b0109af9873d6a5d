// Package similarity turns a nearest-neighbor score into a cache reuse decision.
package similarity

import (
	"math"
	"unicode/utf8"

	"github.com/kailas-cloud/qacache/internal/domain/record"
)

// Defaults follow the conversational deployment; the stateless one used 70.
const (
	DefaultThresholdPercent  = 75.0
	DefaultMinQuestionLength = 5
)

// Policy accepts a match when it is similar enough and the question long enough.
// Short questions ("hi", "ok") tend to match unrelated short stored questions.
type Policy struct {
	thresholdPercent  float64
	minQuestionLength int
}

// New creates a Policy.
func New(thresholdPercent float64, minQuestionLength int) Policy {
	return Policy{thresholdPercent: thresholdPercent, minQuestionLength: minQuestionLength}
}

// MatchPercent converts a distance (0 = identical) into a percentage rounded to two decimals.
func MatchPercent(distance float64) float64 {
	return math.Round((1-distance)*100*100) / 100
}

// Accept reports whether m may be served for question.
// Both bounds are strict: match_percent > threshold and len(question) > min length.
func (p Policy) Accept(question string, m record.Match) bool {
	if utf8.RuneCountInString(question) <= p.minQuestionLength {
		return false
	}
	return MatchPercent(m.Distance()) > p.thresholdPercent
}

// ThresholdPercent returns the configured threshold.
func (p Policy) ThresholdPercent() float64 { return p.thresholdPercent }

// MinQuestionLength returns the configured minimum question length.
func (p Policy) MinQuestionLength() int { return p.minQuestionLength }
