package qacache

import (
	"context"
	"errors"
	"strings"
	"sync"
)

const letterDims = 26

// letterEmbedder embeds text as a histogram of its latin letters.
type letterEmbedder struct {
	healthErr error
}

func (e *letterEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	v := make([]float32, letterDims)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return EmbeddingResult{Embedding: v, PromptTokens: 1, TotalTokens: 1}, nil
}

func (e *letterEmbedder) HealthCheck(context.Context) error { return e.healthErr }

// scriptedGenerator answers every call with reply, or fails with err.
type scriptedGenerator struct {
	mu    sync.Mutex
	reply string
	err   error
	calls [][]Message
}

func (g *scriptedGenerator) Generate(_ context.Context, conversation []Message) (GenerationResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, append([]Message(nil), conversation...))
	if g.err != nil {
		return GenerationResult{}, g.err
	}
	return GenerationResult{Content: g.reply, TotalTokens: 3}, nil
}

func (g *scriptedGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func (g *scriptedGenerator) lastCall() []Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.calls) == 0 {
		return nil
	}
	return g.calls[len(g.calls)-1]
}

var errProviderDown = errors.New("provider down")
