package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/qacache/internal/domain/usage"
)

// Service handles usage reporting.
type Service struct {
	embedding  BudgetReader
	generation BudgetReader
	now        func() time.Time
}

// New creates a Service. Either reader can be nil (unlimited mode).
func New(embedding, generation BudgetReader) *Service {
	return &Service{embedding: embedding, generation: generation, now: time.Now}
}

// GetReport builds a usage report for the given period.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	now := s.now().UTC()
	var start, end int64

	switch period {
	case domusage.PeriodDay:
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		start = dayStart.UnixMilli()
		end = dayStart.Add(24 * time.Hour).UnixMilli()
	case domusage.PeriodMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		start = monthStart.UnixMilli()
		end = monthStart.AddDate(0, 1, 0).UnixMilli()
	default:
		// total: no period boundaries, counters are the monthly ones
	}

	return domusage.NewReport(period, start, end,
		resource(s.embedding, period, end),
		resource(s.generation, period, end),
	)
}

func resource(br BudgetReader, period domusage.Period, resetsAt int64) domusage.Resource {
	if br == nil {
		return domusage.NewResource(0, 0, -1, resetsAt)
	}
	if period == domusage.PeriodDay {
		return domusage.NewResource(br.DailyLimit(), br.DailyUsed(), br.RemainingDaily(), resetsAt)
	}
	return domusage.NewResource(br.MonthlyLimit(), br.MonthlyUsed(), br.RemainingMonthly(), resetsAt)
}
