// Package answer answers questions from the semantic cache, falling back to generation.
package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qacache/internal/domain"
	domans "github.com/kailas-cloud/qacache/internal/domain/answer"
	"github.com/kailas-cloud/qacache/internal/domain/message"
	"github.com/kailas-cloud/qacache/internal/domain/record"
	"github.com/kailas-cloud/qacache/internal/domain/similarity"
	"github.com/kailas-cloud/qacache/internal/logger"
	"github.com/kailas-cloud/qacache/internal/metrics"
)

// Mode selects whether generation sees the session transcript.
type Mode string

// Modes.
const (
	ModeStateless      Mode = "stateless"
	ModeConversational Mode = "conversational"
)

// DefaultMaxWords caps generated answers before they are stored.
const DefaultMaxWords = 80

// errorAnswerFormat is the user-visible text returned when generation fails.
const errorAnswerFormat = "Error: Could not generate a response. (%s)"

// Query is a single question from a caller.
type Query struct {
	Question string
	ForceNew bool
}

// Config tunes the orchestrator.
type Config struct {
	Mode     Mode
	MaxWords int
	TopK     int
}

// Service runs the bypass → lookup → accept → generate → truncate → persist pipeline.
// It holds no per-request state; concurrent calls for one session must be serialized by the caller.
type Service struct {
	index       Index
	gen         Generator
	transcripts Transcripts
	bypass      Bypasser
	policy      Policy
	cfg         Config
	now         func() time.Time
}

// New creates an answer service. transcripts may be nil in stateless mode.
func New(index Index, gen Generator, transcripts Transcripts, bypass Bypasser, policy Policy, cfg Config) *Service {
	if cfg.Mode == "" {
		cfg.Mode = ModeStateless
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 1
	}
	return &Service{
		index:       index,
		gen:         gen,
		transcripts: transcripts,
		bypass:      bypass,
		policy:      policy,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Handle answers q. It never fails: every failure is folded into the returned Answer.
func (s *Service) Handle(ctx context.Context, q Query, sessionID string) domans.Answer {
	start := time.Now()
	a := s.handle(ctx, q, sessionID)

	metrics.AnswersTotal.WithLabelValues(string(a.Outcome)).Inc()
	metrics.AnswerDuration.WithLabelValues(string(a.Outcome)).Observe(time.Since(start).Seconds())
	return a
}

func (s *Service) handle(ctx context.Context, q Query, sessionID string) domans.Answer {
	ctx, log := logger.WithSession(ctx, sessionID)

	question := strings.TrimSpace(q.Question)
	if question == "" {
		return domans.Fresh(domans.EmptyQuestionPrompt, s.timestamp(), domans.OutcomeEmpty)
	}

	bypassed := s.bypass.ShouldBypass(question, q.ForceNew)
	if !bypassed {
		if a, ok := s.lookup(ctx, question, log); ok {
			return a
		}
	}

	outcome := domans.OutcomeMiss
	if bypassed {
		outcome = domans.OutcomeBypass
	}
	return s.generate(ctx, question, sessionID, outcome, log)
}

// lookup returns a cached answer when the best stored match is accepted.
func (s *Service) lookup(ctx context.Context, question string, log *zap.Logger) (domans.Answer, bool) {
	matches, err := s.index.Query(ctx, question, s.cfg.TopK)
	if err != nil {
		metrics.LookupFailuresTotal.Inc()
		log.Warn("Cache lookup failed, treating as miss", zap.Error(err))
		return domans.Answer{}, false
	}
	if len(matches) == 0 {
		return domans.Answer{}, false
	}

	best := matches[0]
	pct := similarity.MatchPercent(best.Distance())
	metrics.MatchPercent.Observe(pct)

	if !s.policy.Accept(question, best) {
		log.Debug("Cache match rejected",
			zap.Float64("match_percent", pct),
			zap.String("matched_question", best.Record().Question()),
		)
		return domans.Answer{}, false
	}

	rec := best.Record()
	log.Debug("Cache hit",
		zap.String("record_id", rec.ID()),
		zap.Float64("match_percent", pct),
	)
	return domans.FromCache(rec.Text(), pct, rec.Question(), rec.Timestamp()), true
}

func (s *Service) generate(
	ctx context.Context, question, sessionID string, outcome domans.Outcome, log *zap.Logger,
) domans.Answer {
	conversation := s.conversation(ctx, question, sessionID, log)

	res, err := s.gen.Generate(ctx, conversation)
	if err != nil {
		log.Error("Generation failed", zap.Error(err))
		return domans.Fresh(fmt.Sprintf(errorAnswerFormat, err), s.timestamp(), domans.OutcomeGenerationError)
	}

	text := domans.Truncate(strings.TrimSpace(res.Content), s.cfg.MaxWords)
	ts := s.timestamp()

	s.persist(ctx, text, question, ts, log)
	// Only misses extend the transcript; bypassed answers are read-only turns.
	if outcome == domans.OutcomeMiss {
		s.remember(ctx, sessionID, question, text, log)
	}

	return domans.Fresh(text, ts, outcome)
}

// conversation builds the generation input for the configured mode.
func (s *Service) conversation(ctx context.Context, question, sessionID string, log *zap.Logger) []message.Message {
	if !s.conversational() {
		return []message.Message{message.User(question)}
	}

	history, err := s.transcripts.Load(ctx, sessionID)
	if err != nil {
		log.Warn("Transcript load failed, continuing without history", zap.Error(err))
		history = nil
	}
	conv := make([]message.Message, 0, len(history)+1)
	conv = append(conv, history...)
	return append(conv, message.User(question))
}

func (s *Service) persist(ctx context.Context, text, question, ts string, log *zap.Logger) {
	rec, err := record.New(text, question, ts)
	if err != nil {
		log.Warn("Generated answer not stored", zap.Error(err))
		return
	}
	id, err := s.index.Insert(ctx, rec)
	if err != nil {
		metrics.PersistFailuresTotal.Inc()
		log.Error("Failed to store answer", zap.Error(err))
		return
	}
	log.Debug("Answer stored", zap.String("record_id", id))
}

func (s *Service) remember(ctx context.Context, sessionID, question, text string, log *zap.Logger) {
	if !s.conversational() {
		return
	}
	if err := s.transcripts.Append(ctx, sessionID, message.User(question), message.Assistant(text)); err != nil {
		log.Warn("Transcript append failed", zap.Error(err))
	}
}

func (s *Service) conversational() bool {
	return s.cfg.Mode == ModeConversational && s.transcripts != nil
}

func (s *Service) timestamp() string {
	return domain.FormatTimestamp(s.now())
}
