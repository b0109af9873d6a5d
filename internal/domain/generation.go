package domain

import (
	"context"

	"github.com/kailas-cloud/qacache/internal/domain/message"
)

// Generator produces an answer from a conversation. The last message is the user's question.
type Generator interface {
	Generate(ctx context.Context, conversation []message.Message) (GenerationResult, error)
}

// GenerationResult carries the model output and token usage through the decorator chain.
type GenerationResult struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
