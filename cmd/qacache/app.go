package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qacache/internal/config"
	"github.com/kailas-cloud/qacache/internal/db"
	"github.com/kailas-cloud/qacache/internal/db/memory"
	dbRedis "github.com/kailas-cloud/qacache/internal/db/redis"
	"github.com/kailas-cloud/qacache/internal/domain"
	"github.com/kailas-cloud/qacache/internal/domain/bypass"
	"github.com/kailas-cloud/qacache/internal/domain/similarity"
	"github.com/kailas-cloud/qacache/internal/metrics"
	budgetrepo "github.com/kailas-cloud/qacache/internal/repository/budget"
	"github.com/kailas-cloud/qacache/internal/repository/embcache"
	"github.com/kailas-cloud/qacache/internal/repository/qarecord"
	"github.com/kailas-cloud/qacache/internal/repository/transcript"
	openaiTransport "github.com/kailas-cloud/qacache/internal/transport/openai"
	answeruc "github.com/kailas-cloud/qacache/internal/usecase/answer"
	budgetuc "github.com/kailas-cloud/qacache/internal/usecase/budget"
	embeddinguc "github.com/kailas-cloud/qacache/internal/usecase/embedding"
	generationuc "github.com/kailas-cloud/qacache/internal/usecase/generation"
	healthuc "github.com/kailas-cloud/qacache/internal/usecase/health"
	usageuc "github.com/kailas-cloud/qacache/internal/usecase/usage"
)

const (
	budgetDailyTTL   = 48 * time.Hour
	budgetMonthlyTTL = 62 * 24 * time.Hour
)

// app is the wired object graph shared by serve and ask.
type app struct {
	answers *answeruc.Service
	records *qarecord.Repo
	usage   *usageuc.Service
	health  *healthuc.Service
	closers []func()
}

// Close releases connections in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp is the composition root.
func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (a *app, err error) {
	a = &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	metrics.Register()

	store, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)

	embBudget := newTracker(ctx, budgetuc.NewEmbeddingTracker, cfg.Embedding.Provider, cfg.Embedding.Budget, store, logger)
	genBudget := newTracker(ctx, budgetuc.NewGenerationTracker, cfg.Generation.Provider, cfg.Generation.Budget, store, logger)

	// Pass nil interfaces (not typed nil pointers) when budgets are not configured.
	var (
		embChecker embeddinguc.BudgetChecker
		genChecker generationuc.BudgetChecker
		embReader  usageuc.BudgetReader
		genReader  usageuc.BudgetReader
	)
	if embBudget != nil {
		embChecker, embReader = embBudget, embBudget
	}
	if genBudget != nil {
		genChecker, genReader = genBudget, genBudget
	}

	docEmbedder := buildEmbedder(cfg.Embedding, cfg.Embedding.DocumentInstruction, store, embChecker, logger)
	queryEmbedder := buildEmbedder(cfg.Embedding, cfg.Embedding.QueryInstruction, store, embChecker, logger)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	records := qarecord.New(store, docEmbedder, queryEmbedder, qarecord.Config{
		Dimensions:  cfg.Embedding.Dimensions,
		HNSWM:       cfg.Cache.HNSWM,
		HNSWEF:      cfg.Cache.HNSWEFConstruct,
		EmbedSource: qarecord.EmbedSource(cfg.Cache.EmbedSource),
	})
	if err := records.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("ensure record index: %w", err)
	}

	generator := buildGenerator(cfg.Generation, genChecker, logger)

	transcripts, transcriptCheck, closeTranscripts, err := openTranscripts(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if closeTranscripts != nil {
		a.closers = append(a.closers, closeTranscripts)
	}

	a.answers = answeruc.New(
		records,
		generator,
		transcripts,
		bypass.New(cfg.Cache.BypassKeywords),
		similarity.New(cfg.Cache.ThresholdPercent, cfg.Cache.MinQuestionLength),
		answeruc.Config{
			Mode:     answeruc.Mode(cfg.Cache.Mode),
			MaxWords: cfg.Cache.MaxWords,
			TopK:     cfg.Cache.TopK,
		},
	)
	a.records = records
	a.usage = usageuc.New(embReader, genReader)
	a.health = healthuc.New(store).
		With("embedding", newEmbeddingHealthChecker(docEmbedder)).
		With("generation", generator)
	if transcriptCheck != nil {
		a.health.With("transcripts", transcriptCheck)
	}
	return a, nil
}

// openStore creates the database store for the configured driver and waits until it answers.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Driver {
	case config.DriverRedis:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
	case config.DriverMemory:
		store = memory.NewStore()
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.String("driver", cfg.Driver))
	return store, nil
}

// newTracker returns nil when the budget has no limits.
func newTracker(
	ctx context.Context,
	ctor func(provider string, limits budgetuc.Limits, logger *zap.Logger) *budgetuc.Tracker,
	provider string, cfg config.BudgetConfig, store db.Store, logger *zap.Logger,
) *budgetuc.Tracker {
	if !cfg.Enabled() {
		return nil
	}
	action := budgetuc.ActionWarn
	if cfg.Action == string(budgetuc.ActionReject) {
		action = budgetuc.ActionReject
	}
	t := ctor(provider, budgetuc.Limits{
		Daily:   cfg.DailyTokenLimit,
		Monthly: cfg.MonthlyTokenLimit,
		Action:  action,
	}, logger)
	// Connect persistence: loads current counters from the store.
	return t.WithStore(ctx, budgetrepo.New(store, budgetDailyTTL, budgetMonthlyTTL))
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction
func buildEmbedder(
	cfg config.EmbeddingConfig,
	instruction string,
	store db.Store,
	budget embeddinguc.BudgetChecker,
	logger *zap.Logger,
) domain.Embedder {
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if cfg.CacheTTLSec > 0 {
		embedder = embcache.New(base, store, cfg.Model, time.Duration(cfg.CacheTTLSec)*time.Second,
			metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, cfg.Model, budget, logger)

	// Instruction prefix is outermost so the cache key includes it.
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}

// buildGenerator assembles OpenAI chat -> Instrumented (budget, timeout, system prompt).
func buildGenerator(
	cfg config.GenerationConfig, budget generationuc.BudgetChecker, logger *zap.Logger,
) *generationuc.InstrumentedGenerator {
	base := openaiTransport.NewChatGenerator(&openaiTransport.Config{
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Model:    cfg.Model,
		Provider: cfg.Provider,
		Logger:   logger,
	}, openaiTransport.ChatOptions{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})

	return generationuc.NewInstrumentedGenerator(base, generationuc.Options{
		Provider:     cfg.Provider,
		Model:        cfg.Model,
		SystemPrompt: cfg.SystemPrompt,
		Timeout:      time.Duration(cfg.TimeoutSec) * time.Second,
		Budget:       budget,

		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}, logger)
}

// openTranscripts returns nil stores in stateless mode.
func openTranscripts(
	ctx context.Context, cfg config.Config,
) (answeruc.Transcripts, healthuc.Checker, func(), error) {
	if cfg.Cache.Mode != config.ModeConversational {
		return nil, nil, nil, nil
	}
	ttl := time.Duration(cfg.Session.TTLSec) * time.Second

	if cfg.Session.Store != config.SessionStoreRedis {
		return transcript.NewMemoryStore(cfg.Session.MaxMessages, ttl), nil, nil, nil
	}

	client, err := transcript.NewRedisClient(ctx, cfg.Session.Addr, cfg.Session.Password, cfg.Session.DB)
	if err != nil {
		return nil, nil, nil, err
	}
	check := healthuc.CheckerFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
	closeFn := func() { _ = client.Close() }
	return transcript.NewRedisStore(client, cfg.Session.MaxMessages, ttl), check, closeFn, nil
}

// embeddingHealthChecker adapts a domain.Embedder to health.Checker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
