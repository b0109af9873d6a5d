// Package generation decorates the language model client with budget enforcement and timeouts.
package generation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/qacache/internal/domain"
	"github.com/kailas-cloud/qacache/internal/domain/message"
)

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
}

// InstrumentedGenerator wraps a Generator with an optional system prompt, a per-call timeout,
// budget enforcement and request usage accounting. Errors wrap domain.ErrGenerationFailed.
type InstrumentedGenerator struct {
	inner        domain.Generator
	provider     string
	model        string
	systemPrompt string
	timeout      time.Duration
	budget       BudgetChecker
	limiter      *rate.Limiter
	logger       *zap.Logger
}

// Options configures an InstrumentedGenerator.
type Options struct {
	Provider     string
	Model        string
	SystemPrompt string
	Timeout      time.Duration // zero disables the timeout
	Budget       BudgetChecker // nil disables budget checks

	// RequestsPerSecond throttles calls to the provider; zero disables throttling.
	RequestsPerSecond float64
	Burst             int
}

// NewInstrumentedGenerator wraps a generator.
func NewInstrumentedGenerator(inner domain.Generator, opts Options, logger *zap.Logger) *InstrumentedGenerator {
	return &InstrumentedGenerator{
		inner:        inner,
		provider:     opts.Provider,
		model:        opts.Model,
		systemPrompt: opts.SystemPrompt,
		timeout:      opts.Timeout,
		budget:       opts.Budget,
		limiter:      newLimiter(opts.RequestsPerSecond, opts.Burst),
		logger:       logger,
	}
}

func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Generate checks the budget, applies the timeout and delegates.
func (g *InstrumentedGenerator) Generate(
	ctx context.Context, conversation []message.Message,
) (domain.GenerationResult, error) {
	if g.budget != nil {
		if err := g.budget.Check(ctx); err != nil {
			return domain.GenerationResult{}, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
		}
	}

	if g.systemPrompt != "" {
		conversation = append([]message.Message{message.System(g.systemPrompt)}, conversation...)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	// Waiting counts against the timeout.
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			g.logger.Warn("Generation throttled",
				zap.String("provider", g.provider),
				zap.String("model", g.model),
				zap.Error(err),
			)
			return domain.GenerationResult{}, fmt.Errorf("%w: rate limit: %w", domain.ErrGenerationFailed, err)
		}
	}

	start := time.Now()
	result, err := g.inner.Generate(ctx, conversation)
	duration := time.Since(start)

	if err != nil {
		g.logger.Error("Generation failed",
			zap.String("provider", g.provider),
			zap.String("model", g.model),
			zap.Duration("duration", duration),
			zap.Int("messages", len(conversation)),
			zap.Error(err),
		)
		return domain.GenerationResult{}, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	if g.budget != nil {
		g.budget.Record(int64(result.TotalTokens))
	}
	domain.UsageFromContext(ctx).AddGenerationTokens(result.TotalTokens)

	g.logger.Debug("Generation completed",
		zap.String("provider", g.provider),
		zap.String("model", g.model),
		zap.Duration("duration", duration),
		zap.Int("messages", len(conversation)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// HealthCheck delegates to the inner generator when it supports health checks.
func (g *InstrumentedGenerator) HealthCheck(ctx context.Context) error {
	if hc, ok := g.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
