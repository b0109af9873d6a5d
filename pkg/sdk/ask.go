package qacache

import (
	"context"
	"time"

	domans "github.com/kailas-cloud/qacache/internal/domain/answer"
	answeruc "github.com/kailas-cloud/qacache/internal/usecase/answer"
)

// Outcome records which path produced an Answer.
type Outcome string

// Answer outcomes.
const (
	OutcomeHit             Outcome = Outcome(domans.OutcomeHit)
	OutcomeMiss            Outcome = Outcome(domans.OutcomeMiss)
	OutcomeBypass          Outcome = Outcome(domans.OutcomeBypass)
	OutcomeEmpty           Outcome = Outcome(domans.OutcomeEmpty)
	OutcomeGenerationError Outcome = Outcome(domans.OutcomeGenerationError)
)

// Question is a single request to the cache.
type Question struct {
	Text string
	// ForceNew skips the cache lookup.
	ForceNew bool
	// SessionID selects the transcript in conversational mode.
	SessionID string
}

// Answer is the cache response. MatchedQuestion is nil unless FromMemory.
type Answer struct {
	Text            string
	MatchPercent    float64
	MatchedQuestion *string
	Timestamp       string
	FromMemory      bool
	Outcome         Outcome
}

// Ask answers q from the cache or the generator. It never fails: a generator
// failure yields an answer whose Outcome is OutcomeGenerationError.
func (c *Client) Ask(ctx context.Context, q Question) Answer {
	start := time.Now()
	a := c.answerSvc.Handle(ctx, answeruc.Query{Question: q.Text, ForceNew: q.ForceNew}, q.SessionID)

	out := Answer{
		Text:            a.Text,
		MatchPercent:    a.MatchPercent,
		MatchedQuestion: a.MatchedQuestion,
		Timestamp:       a.Timestamp,
		FromMemory:      a.FromMemory,
		Outcome:         Outcome(a.Outcome),
	}
	c.obs.observeAnswer(out, start)
	return out
}
