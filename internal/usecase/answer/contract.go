package answer

import (
	"context"

	"github.com/kailas-cloud/qacache/internal/domain"
	"github.com/kailas-cloud/qacache/internal/domain/message"
	"github.com/kailas-cloud/qacache/internal/domain/record"
)

// Index stores answered questions and finds the nearest ones.
type Index interface {
	Insert(ctx context.Context, rec record.Record) (string, error)
	Query(ctx context.Context, question string, k int) ([]record.Match, error)
}

// Generator produces a fresh answer from a conversation.
type Generator interface {
	Generate(ctx context.Context, conversation []message.Message) (domain.GenerationResult, error)
}

// Transcripts keeps per-session history for conversational mode.
type Transcripts interface {
	Load(ctx context.Context, sessionID string) ([]message.Message, error)
	Append(ctx context.Context, sessionID string, msgs ...message.Message) error
}

// Bypasser decides whether a question skips the cache lookup.
type Bypasser interface {
	ShouldBypass(question string, forceNew bool) bool
}

// Policy decides whether a stored match is close enough to reuse.
type Policy interface {
	Accept(question string, m record.Match) bool
}
