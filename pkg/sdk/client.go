package qacache

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qacache/internal/db"
	"github.com/kailas-cloud/qacache/internal/db/memory"
	dbRedis "github.com/kailas-cloud/qacache/internal/db/redis"
	"github.com/kailas-cloud/qacache/internal/domain"
	domans "github.com/kailas-cloud/qacache/internal/domain/answer"
	"github.com/kailas-cloud/qacache/internal/domain/bypass"
	"github.com/kailas-cloud/qacache/internal/domain/record"
	"github.com/kailas-cloud/qacache/internal/domain/similarity"
	"github.com/kailas-cloud/qacache/internal/repository/qarecord"
	"github.com/kailas-cloud/qacache/internal/repository/transcript"
	answeruc "github.com/kailas-cloud/qacache/internal/usecase/answer"
	embeddinguc "github.com/kailas-cloud/qacache/internal/usecase/embedding"
	generationuc "github.com/kailas-cloud/qacache/internal/usecase/generation"
	healthuc "github.com/kailas-cloud/qacache/internal/usecase/health"
	usageuc "github.com/kailas-cloud/qacache/internal/usecase/usage"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	sdkProvider             = "sdk"
)

// Internal interfaces for substitution in tests.
type answerUseCase interface {
	Handle(ctx context.Context, q answeruc.Query, sessionID string) domans.Answer
}

type recordRepository interface {
	Get(ctx context.Context, id string) (record.Record, error)
	Count(ctx context.Context) (int, error)
}

// Client is the qacache SDK entry point. It is safe for concurrent use.
type Client struct {
	store     db.Store
	answerSvc answerUseCase
	records   recordRepository
	healthSvc healthUseCase
	usageSvc  usageUseCase
	obs       *observer
}

// New creates a Client, connects to the database and ensures the record index exists.
// The provided context is used for the readiness check and index creation.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	vec := domain.DefaultVectorConfig()
	cfg := &clientConfig{
		driver:            "memory",
		vectorDimensions:  vec.Dimensions,
		hnswM:             vec.HNSWM,
		hnswEFConstruct:   vec.EFConstruction,
		thresholdPercent:  similarity.DefaultThresholdPercent,
		minQuestionLength: similarity.DefaultMinQuestionLength,
		maxWords:          answeruc.DefaultMaxWords,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.embedder == nil {
		return nil, errNoEmbedder
	}
	if cfg.generator == nil {
		return nil, errNoGenerator
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("qacache: database not ready: %w", err)
	}

	c, err := wireClient(ctx, store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("qacache: create redis store: %w", err)
		}
		return s, nil
	case "memory":
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("qacache: unknown driver %q", cfg.driver)
	}
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	nop := zap.NewNop()

	emb := embeddinguc.NewInstrumentedEmbedder(
		&embedderAdapter{inner: cfg.embedder}, sdkProvider, sdkProvider, nil, nop)
	gen := generationuc.NewInstrumentedGenerator(&generatorAdapter{inner: cfg.generator}, generationuc.Options{
		Provider:     sdkProvider,
		Model:        sdkProvider,
		SystemPrompt: cfg.systemPrompt,
		Timeout:      cfg.generationTimeout,

		RequestsPerSecond: cfg.generationRPS,
		Burst:             cfg.generationBurst,
	}, nop)

	source := qarecord.EmbedAnswer
	if cfg.embedQuestion {
		source = qarecord.EmbedQuestion
	}
	records := qarecord.New(store, emb, emb, qarecord.Config{
		Dimensions:  cfg.vectorDimensions,
		HNSWM:       cfg.hnswM,
		HNSWEF:      cfg.hnswEFConstruct,
		EmbedSource: source,
	})
	if err := records.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("qacache: ensure record index: %w", err)
	}

	mode := answeruc.ModeStateless
	var transcripts answeruc.Transcripts
	if cfg.conversational {
		mode = answeruc.ModeConversational
		transcripts = transcript.NewMemoryStore(cfg.maxMessages, cfg.sessionTTL)
	}

	answerSvc := answeruc.New(
		records,
		gen,
		transcripts,
		bypass.New(cfg.bypassKeywords),
		similarity.New(cfg.thresholdPercent, cfg.minQuestionLength),
		answeruc.Config{Mode: mode, MaxWords: cfg.maxWords},
	)

	healthSvc := healthuc.New(store).
		With("embedding", emb).
		With("generation", gen)
	usageSvc := usageuc.New(nil, nil) // nil = unlimited mode (no budget tracking in SDK)

	return &Client{
		store:     store,
		answerSvc: answerSvc,
		records:   records,
		healthSvc: healthSvc,
		usageSvc:  usageSvc,
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
