// Package budget enforces daily and monthly token caps on paid provider calls.
package budget

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qacache/internal/domain"
	"github.com/kailas-cloud/qacache/internal/metrics"
)

// Action defines behavior when a budget is exceeded.
type Action string

const (
	// ActionWarn logs a warning but allows the request.
	ActionWarn Action = "warn"
	// ActionReject blocks the request.
	ActionReject Action = "reject"
)

// Store persists period counters. IncrBy may be called repeatedly for one key.
type Store interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// Limits configures one tracker. Zero limits mean unlimited.
type Limits struct {
	Daily   int64
	Monthly int64
	Action  Action
}

// Tracker counts tokens in memory and writes behind to an optional Store.
// Check never leaves the process.
type Tracker struct {
	mu         sync.Mutex
	scope      string // "embedding:<provider>" or "generation:<provider>"
	limits     Limits
	exceeded   error
	dailyUsed  int64
	monthUsed  int64
	dayStart   time.Time
	monthStart time.Time
	store      Store
	now        func() time.Time
	logger     *zap.Logger
}

// NewTracker creates a tracker. exceeded is returned by Check when a reject budget is spent.
func NewTracker(scope string, limits Limits, exceeded error, logger *zap.Logger) *Tracker {
	t := &Tracker{
		scope:    scope,
		limits:   limits,
		exceeded: exceeded,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
	t.dayStart, t.monthStart = startOfDay(t.now()), startOfMonth(t.now())
	return t
}

// NewEmbeddingTracker creates a tracker that rejects with domain.ErrEmbeddingQuotaExceeded.
func NewEmbeddingTracker(provider string, limits Limits, logger *zap.Logger) *Tracker {
	return NewTracker("embedding:"+provider, limits, domain.ErrEmbeddingQuotaExceeded, logger)
}

// NewGenerationTracker creates a tracker that rejects with domain.ErrGenerationQuotaExceeded.
func NewGenerationTracker(provider string, limits Limits, logger *zap.Logger) *Tracker {
	return NewTracker("generation:"+provider, limits, domain.ErrGenerationQuotaExceeded, logger)
}

// WithStore attaches persistence and loads the current period counters.
func (t *Tracker) WithStore(ctx context.Context, s Store) *Tracker {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.store = s
	now := t.now()
	if v, err := s.Get(ctx, t.dailyKey(now)); err == nil {
		t.dailyUsed = v
	} else {
		t.logger.Warn("Failed to load daily budget", zap.String("scope", t.scope), zap.Error(err))
	}
	if v, err := s.Get(ctx, t.monthlyKey(now)); err == nil {
		t.monthUsed = v
	} else {
		t.logger.Warn("Failed to load monthly budget", zap.String("scope", t.scope), zap.Error(err))
	}

	t.logger.Info("Budget loaded",
		zap.String("scope", t.scope),
		zap.Int64("daily_used", t.dailyUsed),
		zap.Int64("monthly_used", t.monthUsed),
	)
	return t
}

func (t *Tracker) dailyKey(at time.Time) string {
	return fmt.Sprintf("%sbudget:%s:daily:%s", domain.KeyPrefix, t.scope, at.Format("2006-01-02"))
}

func (t *Tracker) monthlyKey(at time.Time) string {
	return fmt.Sprintf("%sbudget:%s:monthly:%s", domain.KeyPrefix, t.scope, at.Format("2006-01"))
}

// Check reports whether a new request may proceed.
func (t *Tracker) Check(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rollover()
	daily := t.limits.Daily > 0 && t.dailyUsed >= t.limits.Daily
	monthly := t.limits.Monthly > 0 && t.monthUsed >= t.limits.Monthly
	if !daily && !monthly {
		return nil
	}
	if t.limits.Action == ActionReject {
		return t.exceeded
	}

	t.logger.Warn("Token budget exceeded",
		zap.String("scope", t.scope),
		zap.Int64("daily_used", t.dailyUsed),
		zap.Int64("daily_limit", t.limits.Daily),
		zap.Int64("monthly_used", t.monthUsed),
		zap.Int64("monthly_limit", t.limits.Monthly),
	)
	return nil
}

// Record adds consumed tokens and updates the remaining-budget gauges.
func (t *Tracker) Record(tokens int64) {
	if tokens <= 0 {
		return
	}

	t.mu.Lock()
	t.rollover()
	t.dailyUsed += tokens
	t.monthUsed += tokens
	now := t.now()
	store := t.store
	t.mu.Unlock()

	metrics.BudgetTokensRemaining.WithLabelValues(t.scope, "daily").Set(float64(t.RemainingDaily()))
	metrics.BudgetTokensRemaining.WithLabelValues(t.scope, "monthly").Set(float64(t.RemainingMonthly()))

	if store == nil {
		return
	}

	// Detached from the request so persistence cannot fail or slow the caller.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for _, key := range []string{t.dailyKey(now), t.monthlyKey(now)} {
		if err := store.IncrBy(ctx, key, tokens); err != nil {
			t.logger.Warn("Failed to persist budget", zap.String("key", key), zap.Error(err))
		}
	}
}

// RemainingDaily returns tokens left today, or -1 when unlimited.
func (t *Tracker) RemainingDaily() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return remaining(t.limits.Daily, t.dailyUsed)
}

// RemainingMonthly returns tokens left this month, or -1 when unlimited.
func (t *Tracker) RemainingMonthly() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return remaining(t.limits.Monthly, t.monthUsed)
}

// DailyLimit returns the daily cap.
func (t *Tracker) DailyLimit() int64 { return t.limits.Daily }

// MonthlyLimit returns the monthly cap.
func (t *Tracker) MonthlyLimit() int64 { return t.limits.Monthly }

// DailyUsed returns tokens consumed today.
func (t *Tracker) DailyUsed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return t.dailyUsed
}

// MonthlyUsed returns tokens consumed this month.
func (t *Tracker) MonthlyUsed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return t.monthUsed
}

// rollover zeroes counters at day and month boundaries. Callers hold mu.
func (t *Tracker) rollover() {
	now := t.now()
	if day := startOfDay(now); day.After(t.dayStart) {
		t.dailyUsed = 0
		t.dayStart = day
	}
	if month := startOfMonth(now); month.After(t.monthStart) {
		t.monthUsed = 0
		t.monthStart = month
	}
}

func remaining(limit, used int64) int64 {
	if limit == 0 {
		return -1
	}
	return max(0, limit-used)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
