// Package answer holds the response produced for a question.
package answer

// Outcome records which path produced an answer.
type Outcome string

// Answer outcomes.
const (
	OutcomeHit             Outcome = "hit"
	OutcomeMiss            Outcome = "miss"
	OutcomeBypass          Outcome = "bypass"
	OutcomeEmpty           Outcome = "empty"
	OutcomeGenerationError Outcome = "generation_error"
)

// EmptyQuestionPrompt is returned for blank questions.
const EmptyQuestionPrompt = "Please enter a question."

// Answer is the result of handling a question. It always has a response shape,
// even when generation failed.
type Answer struct {
	Text            string
	MatchPercent    float64
	MatchedQuestion *string
	Timestamp       string
	FromMemory      bool
	Outcome         Outcome
}

// FromCache builds an answer served from a stored record.
func FromCache(text string, matchPercent float64, matchedQuestion, timestamp string) Answer {
	q := matchedQuestion
	return Answer{
		Text:            text,
		MatchPercent:    matchPercent,
		MatchedQuestion: &q,
		Timestamp:       timestamp,
		FromMemory:      true,
		Outcome:         OutcomeHit,
	}
}

// Fresh builds an answer that did not come from the cache.
func Fresh(text, timestamp string, outcome Outcome) Answer {
	return Answer{Text: text, Timestamp: timestamp, Outcome: outcome}
}
