package domain

import (
	"context"
	"testing"
	"time"
)

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 7, 8, 9, 123, time.UTC)
	if got := FormatTimestamp(ts); got != "2024-03-05 07:08:09" {
		t.Errorf("FormatTimestamp = %q", got)
	}
}

func TestTokenUsage_NilSafe(t *testing.T) {
	var u *TokenUsage
	u.AddEmbeddingTokens(3)
	u.AddGenerationTokens(4)

	if UsageFromContext(context.Background()) != nil {
		t.Error("expected nil usage for bare context")
	}
}

func TestTokenUsage_Accumulates(t *testing.T) {
	ctx, u := NewContextWithUsage(context.Background())
	UsageFromContext(ctx).AddEmbeddingTokens(3)
	UsageFromContext(ctx).AddEmbeddingTokens(2)
	UsageFromContext(ctx).AddGenerationTokens(7)

	if u.EmbeddingTokens != 5 || u.GenerationTokens != 7 {
		t.Errorf("unexpected usage: %+v", *u)
	}
}
