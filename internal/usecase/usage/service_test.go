package usage

import (
	"context"
	"testing"
	"time"

	domusage "github.com/kailas-cloud/qacache/internal/domain/usage"
)

// --- Mock ---

type mockBudgetReader struct {
	dailyLimit       int64
	monthlyLimit     int64
	dailyUsed        int64
	monthlyUsed      int64
	remainingDaily   int64
	remainingMonthly int64
}

func (m *mockBudgetReader) DailyLimit() int64       { return m.dailyLimit }
func (m *mockBudgetReader) MonthlyLimit() int64     { return m.monthlyLimit }
func (m *mockBudgetReader) DailyUsed() int64        { return m.dailyUsed }
func (m *mockBudgetReader) MonthlyUsed() int64      { return m.monthlyUsed }
func (m *mockBudgetReader) RemainingDaily() int64   { return m.remainingDaily }
func (m *mockBudgetReader) RemainingMonthly() int64 { return m.remainingMonthly }

var fixedNow = time.Date(2024, 2, 10, 15, 4, 5, 0, time.UTC)

func newService(emb, gen BudgetReader) *Service {
	s := New(emb, gen)
	s.now = func() time.Time { return fixedNow }
	return s
}

// --- Tests ---

func TestGetReport_DailyPeriod(t *testing.T) {
	emb := &mockBudgetReader{
		dailyLimit:       10000,
		dailyUsed:        3000,
		remainingDaily:   7000,
		monthlyLimit:     100000,
		monthlyUsed:      50000,
		remainingMonthly: 50000,
	}
	r := newService(emb, nil).GetReport(context.Background(), domusage.PeriodDay)

	if r.Period() != domusage.PeriodDay {
		t.Errorf("expected period %q, got %q", domusage.PeriodDay, r.Period())
	}
	dayStart := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	if r.PeriodStart() != dayStart.UnixMilli() {
		t.Errorf("expected period start %d, got %d", dayStart.UnixMilli(), r.PeriodStart())
	}
	if r.PeriodEnd() != dayStart.Add(24*time.Hour).UnixMilli() {
		t.Errorf("unexpected period end %d", r.PeriodEnd())
	}

	e := r.Embedding()
	if e.TokensLimit() != 10000 || e.TokensUsed() != 3000 || e.TokensRemaining() != 7000 {
		t.Errorf("unexpected embedding resource: %+v", e)
	}
	if e.IsExhausted() {
		t.Error("budget should not be exhausted")
	}
	if e.ResetsAt() != r.PeriodEnd() {
		t.Errorf("expected reset at period end, got %d", e.ResetsAt())
	}
}

func TestGetReport_MonthlyPeriod(t *testing.T) {
	gen := &mockBudgetReader{monthlyLimit: 1000, monthlyUsed: 1000, remainingMonthly: 0}
	r := newService(nil, gen).GetReport(context.Background(), domusage.PeriodMonth)

	monthStart := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	if r.PeriodStart() != monthStart.UnixMilli() {
		t.Errorf("unexpected period start %d", r.PeriodStart())
	}
	if r.PeriodEnd() != time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).UnixMilli() {
		t.Errorf("unexpected period end %d", r.PeriodEnd())
	}
	if !r.Generation().IsExhausted() {
		t.Error("generation budget should be exhausted")
	}
}

func TestGetReport_TotalPeriod(t *testing.T) {
	emb := &mockBudgetReader{monthlyLimit: 500, monthlyUsed: 100, remainingMonthly: 400}
	r := newService(emb, nil).GetReport(context.Background(), domusage.PeriodTotal)

	if r.PeriodStart() != 0 || r.PeriodEnd() != 0 {
		t.Errorf("total has no boundaries, got [%d, %d)", r.PeriodStart(), r.PeriodEnd())
	}
	if r.Embedding().TokensUsed() != 100 {
		t.Errorf("expected monthly counters, got %d", r.Embedding().TokensUsed())
	}
}

func TestGetReport_NilReadersAreUnlimited(t *testing.T) {
	r := newService(nil, nil).GetReport(context.Background(), domusage.PeriodDay)

	for name, res := range map[string]domusage.Resource{"embedding": r.Embedding(), "generation": r.Generation()} {
		if res.TokensLimit() != 0 || res.TokensRemaining() != -1 || res.IsExhausted() {
			t.Errorf("%s: expected unlimited, got %+v", name, res)
		}
	}
}
