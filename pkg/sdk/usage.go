package qacache

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/qacache/internal/domain/usage"
)

// UsagePeriod is the aggregation granularity for usage reports.
type UsagePeriod string

// UsagePeriod constants.
const (
	PeriodDay   UsagePeriod = UsagePeriod(domusage.PeriodDay)
	PeriodMonth UsagePeriod = UsagePeriod(domusage.PeriodMonth)
	PeriodTotal UsagePeriod = UsagePeriod(domusage.PeriodTotal)
)

// UsageReport contains token budget state for a time period.
type UsageReport struct {
	Period      UsagePeriod
	PeriodStart time.Time
	PeriodEnd   time.Time
	Embedding   BudgetStatus
	Generation  BudgetStatus
}

// BudgetStatus tracks token quota state. A negative TokensRemaining means unlimited.
type BudgetStatus struct {
	TokensLimit     int64
	TokensUsed      int64
	TokensRemaining int64
	IsExhausted     bool
	ResetsAt        time.Time
}

// Usage returns a token usage report for the given period.
// Observer always records success: the underlying use-case is in-memory
// and does not produce errors.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) UsageReport {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, nil) }()

	report := c.usageSvc.GetReport(ctx, domusage.Period(period))

	return UsageReport{
		Period:      UsagePeriod(report.Period()),
		PeriodStart: time.UnixMilli(report.PeriodStart()).UTC(),
		PeriodEnd:   time.UnixMilli(report.PeriodEnd()).UTC(),
		Embedding:   budgetStatus(report.Embedding()),
		Generation:  budgetStatus(report.Generation()),
	}
}

func budgetStatus(r domusage.Resource) BudgetStatus {
	return BudgetStatus{
		TokensLimit:     r.TokensLimit(),
		TokensUsed:      r.TokensUsed(),
		TokensRemaining: r.TokensRemaining(),
		IsExhausted:     r.IsExhausted(),
		ResetsAt:        time.UnixMilli(r.ResetsAt()).UTC(),
	}
}

// usageUseCase is the internal interface for usage reports.
type usageUseCase interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}
