package qacache

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "redis" or "memory"
	addrs    []string
	password string

	embedder  Embedder
	generator Generator

	vectorDimensions int
	hnswM            int
	hnswEFConstruct  int
	embedQuestion    bool

	thresholdPercent  float64
	minQuestionLength int
	maxWords          int
	bypassKeywords    []string

	conversational bool
	maxMessages    int
	sessionTTL     time.Duration

	systemPrompt      string
	generationTimeout time.Duration
	generationRPS     float64
	generationBurst   int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis stores records in a Redis instance with the search module loaded.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithMemory keeps records in process memory. Records are lost on Close.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "memory"
		c.addrs = nil
	})
}

// WithEmbedder sets the text embedding provider. Required.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithGenerator sets the language model that answers cache misses. Required.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithVectorDimensions sets the embedding dimension of the record index.
// Defaults to 768 (nomic-embed-text).
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDimensions = dim
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithQuestionEmbedding indexes records by their question instead of their answer text.
func WithQuestionEmbedding() Option {
	return optionFunc(func(c *clientConfig) {
		c.embedQuestion = true
	})
}

// WithThreshold sets the match percentage a stored question must exceed and
// the rune length a question must exceed to be served from the cache.
// Defaults: 75 and 5.
func WithThreshold(percent float64, minQuestionLength int) Option {
	return optionFunc(func(c *clientConfig) {
		c.thresholdPercent = percent
		c.minQuestionLength = minQuestionLength
	})
}

// WithMaxWords caps generated answers. Default 80; zero or negative disables truncation.
func WithMaxWords(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxWords = n
	})
}

// WithBypassKeywords replaces the keywords that force a fresh answer.
func WithBypassKeywords(keywords ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.bypassKeywords = keywords
	})
}

// WithConversation enables conversational mode. Each session keeps at most
// maxMessages transcript entries and expires after ttl without activity.
// Zero values mean unlimited.
func WithConversation(maxMessages int, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.conversational = true
		c.maxMessages = maxMessages
		c.sessionTTL = ttl
	})
}

// WithSystemPrompt prepends a system message to every generation.
func WithSystemPrompt(prompt string) Option {
	return optionFunc(func(c *clientConfig) {
		c.systemPrompt = prompt
	})
}

// WithGenerationTimeout bounds each generator call. Expiry yields an error answer.
func WithGenerationTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.generationTimeout = d
	})
}

// WithGenerationRateLimit throttles generator calls to rps with the given burst.
func WithGenerationRateLimit(rps float64, burst int) Option {
	return optionFunc(func(c *clientConfig) {
		c.generationRPS = rps
		c.generationBurst = burst
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
