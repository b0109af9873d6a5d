package budget

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qacache/internal/domain"
)

type mockStore struct {
	mu     sync.Mutex
	data   map[string]int64
	getErr error
	incErr error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]int64)}
}

func (m *mockStore) IncrBy(_ context.Context, key string, val int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incErr != nil {
		return m.incErr
	}
	m.data[key] += val
	return nil
}

func (m *mockStore) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.data[key], nil
}

func TestCheck_RejectWhenDailyExceeded(t *testing.T) {
	tr := NewEmbeddingTracker("ollama", Limits{Daily: 100, Action: ActionReject}, zap.NewNop())
	tr.Record(100)

	if err := tr.Check(context.Background()); !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		t.Fatalf("expected ErrEmbeddingQuotaExceeded, got %v", err)
	}
}

func TestCheck_GenerationTrackerError(t *testing.T) {
	tr := NewGenerationTracker("ollama", Limits{Monthly: 10, Action: ActionReject}, zap.NewNop())
	tr.Record(11)

	if err := tr.Check(context.Background()); !errors.Is(err, domain.ErrGenerationQuotaExceeded) {
		t.Fatalf("expected ErrGenerationQuotaExceeded, got %v", err)
	}
}

func TestCheck_WarnAllows(t *testing.T) {
	tr := NewEmbeddingTracker("p", Limits{Daily: 100, Action: ActionWarn}, zap.NewNop())
	tr.Record(200)

	if err := tr.Check(context.Background()); err != nil {
		t.Fatalf("expected nil for warn action, got %v", err)
	}
}

func TestCheck_UnlimitedWhenZero(t *testing.T) {
	tr := NewEmbeddingTracker("p", Limits{Action: ActionReject}, zap.NewNop())
	tr.Record(999999999)

	if err := tr.Check(context.Background()); err != nil {
		t.Fatalf("expected nil for unlimited budget, got %v", err)
	}
	if tr.RemainingDaily() != -1 || tr.RemainingMonthly() != -1 {
		t.Errorf("expected -1 remaining, got %d/%d", tr.RemainingDaily(), tr.RemainingMonthly())
	}
}

func TestRemaining(t *testing.T) {
	tr := NewEmbeddingTracker("p", Limits{Daily: 1000, Monthly: 10000}, zap.NewNop())
	tr.Record(300)

	if got := tr.RemainingDaily(); got != 700 {
		t.Errorf("expected daily remaining 700, got %d", got)
	}
	if got := tr.RemainingMonthly(); got != 9700 {
		t.Errorf("expected monthly remaining 9700, got %d", got)
	}

	tr.Record(5000)
	if got := tr.RemainingDaily(); got != 0 {
		t.Errorf("remaining must not go negative, got %d", got)
	}
}

func TestRecord_IgnoresNonPositive(t *testing.T) {
	tr := NewEmbeddingTracker("p", Limits{Daily: 10}, zap.NewNop())
	tr.Record(0)
	tr.Record(-5)

	if tr.DailyUsed() != 0 {
		t.Errorf("expected 0 used, got %d", tr.DailyUsed())
	}
}

func TestRollover_ResetsDailyKeepsMonthly(t *testing.T) {
	now := time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)
	tr := NewEmbeddingTracker("p", Limits{Daily: 100, Monthly: 1000, Action: ActionReject}, zap.NewNop())
	tr.now = func() time.Time { return now }
	tr.dayStart, tr.monthStart = startOfDay(now), startOfMonth(now)

	tr.Record(100)
	if err := tr.Check(context.Background()); err == nil {
		t.Fatal("expected rejection before midnight")
	}

	now = now.Add(2 * time.Hour)
	if err := tr.Check(context.Background()); err != nil {
		t.Fatalf("expected daily reset after midnight, got %v", err)
	}
	if tr.MonthlyUsed() != 100 {
		t.Errorf("monthly usage must survive the day boundary, got %d", tr.MonthlyUsed())
	}

	now = time.Date(2024, 4, 1, 0, 0, 1, 0, time.UTC)
	if tr.MonthlyUsed() != 0 {
		t.Errorf("expected monthly reset, got %d", tr.MonthlyUsed())
	}
}

func TestWithStore_LoadsCounters(t *testing.T) {
	store := newMockStore()
	tr := NewEmbeddingTracker("p", Limits{Daily: 1000, Monthly: 10000}, zap.NewNop())
	store.data[tr.dailyKey(tr.now())] = 300
	store.data[tr.monthlyKey(tr.now())] = 5000

	tr.WithStore(context.Background(), store)

	if tr.DailyUsed() != 300 || tr.MonthlyUsed() != 5000 {
		t.Errorf("unexpected usage: %d/%d", tr.DailyUsed(), tr.MonthlyUsed())
	}
}

func TestWithStore_LoadErrorStartsAtZero(t *testing.T) {
	store := newMockStore()
	store.getErr = errors.New("connection refused")

	tr := NewEmbeddingTracker("p", Limits{Daily: 1000}, zap.NewNop()).WithStore(context.Background(), store)

	if tr.DailyUsed() != 0 || tr.MonthlyUsed() != 0 {
		t.Errorf("expected zero usage, got %d/%d", tr.DailyUsed(), tr.MonthlyUsed())
	}
}

func TestRecord_WritesBehind(t *testing.T) {
	store := newMockStore()
	tr := NewGenerationTracker("p", Limits{}, zap.NewNop()).WithStore(context.Background(), store)

	tr.Record(100)
	tr.Record(200)

	store.mu.Lock()
	defer store.mu.Unlock()
	if got := store.data[tr.dailyKey(tr.now())]; got != 300 {
		t.Errorf("expected stored daily 300, got %d", got)
	}
	if got := store.data[tr.monthlyKey(tr.now())]; got != 300 {
		t.Errorf("expected stored monthly 300, got %d", got)
	}
}

func TestRecord_StoreErrorKeepsMemory(t *testing.T) {
	store := newMockStore()
	tr := NewEmbeddingTracker("p", Limits{}, zap.NewNop()).WithStore(context.Background(), store)
	store.incErr = errors.New("write timeout")

	tr.Record(50)
	if tr.DailyUsed() != 50 {
		t.Errorf("expected 50 used despite store error, got %d", tr.DailyUsed())
	}
}

func TestKeys(t *testing.T) {
	tr := NewGenerationTracker("ollama", Limits{}, zap.NewNop())
	at := time.Date(2024, 5, 7, 12, 0, 0, 0, time.UTC)

	if got := tr.dailyKey(at); got != domain.KeyPrefix+"budget:generation:ollama:daily:2024-05-07" {
		t.Errorf("unexpected daily key %q", got)
	}
	if got := tr.monthlyKey(at); !strings.HasSuffix(got, ":monthly:2024-05") {
		t.Errorf("unexpected monthly key %q", got)
	}
}
