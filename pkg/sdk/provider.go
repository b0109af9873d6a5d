package qacache

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/qacache/internal/domain"
	"github.com/kailas-cloud/qacache/internal/domain/message"
)

// Embedder converts text to vector embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Generator answers a conversation. The last message is the user's question.
type Generator interface {
	Generate(ctx context.Context, conversation []Message) (GenerationResult, error)
}

// HealthChecker is optionally implemented by an Embedder or Generator.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// GenerationResult carries the model output and token counts.
type GenerationResult struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Role is the author of a Message.
type Role string

// Roles passed to a Generator.
const (
	RoleSystem    Role = Role(message.RoleSystem)
	RoleUser      Role = Role(message.RoleUser)
	RoleAssistant Role = Role(message.RoleAssistant)
)

// Message is one conversation entry.
type Message struct {
	Role    Role
	Content string
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func (a *embedderAdapter) HealthCheck(ctx context.Context) error {
	return healthCheck(ctx, a.inner)
}

// generatorAdapter wraps public Generator to satisfy internal domain.Generator.
type generatorAdapter struct {
	inner Generator
}

func (a *generatorAdapter) Generate(
	ctx context.Context, conversation []message.Message,
) (domain.GenerationResult, error) {
	msgs := make([]Message, len(conversation))
	for i, m := range conversation {
		msgs[i] = Message{Role: Role(m.Role), Content: m.Content}
	}
	r, err := a.inner.Generate(ctx, msgs)
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("generate: %w", err)
	}
	return domain.GenerationResult{
		Content:          r.Content,
		PromptTokens:     r.PromptTokens,
		CompletionTokens: r.CompletionTokens,
		TotalTokens:      r.TotalTokens,
	}, nil
}

func (a *generatorAdapter) HealthCheck(ctx context.Context) error {
	return healthCheck(ctx, a.inner)
}

func healthCheck(ctx context.Context, v any) error {
	hc, ok := v.(HealthChecker)
	if !ok {
		return nil
	}
	if err := hc.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	return nil
}

var (
	errNoEmbedder  = errors.New("qacache: embedder required (use WithEmbedder)")
	errNoGenerator = errors.New("qacache: generator required (use WithGenerator)")
)
