// Package usage describes token consumption of the embedding and generation providers.
package usage

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
	PeriodTotal Period = "total"
)

// ParsePeriod validates a period name. Empty means day.
func ParsePeriod(s string) (Period, bool) {
	switch Period(s) {
	case "", PeriodDay:
		return PeriodDay, true
	case PeriodMonth, PeriodTotal:
		return Period(s), true
	default:
		return "", false
	}
}

// Resource is the token budget state of one provider for a period.
// A zero limit means unlimited; Remaining is then -1.
type Resource struct {
	tokensLimit     int64
	tokensUsed      int64
	tokensRemaining int64
	resetsAt        int64
}

// NewResource creates a resource report.
func NewResource(limit, used, remaining, resetsAt int64) Resource {
	return Resource{tokensLimit: limit, tokensUsed: used, tokensRemaining: remaining, resetsAt: resetsAt}
}

// TokensLimit returns the token limit (0 = unlimited).
func (r Resource) TokensLimit() int64 { return r.tokensLimit }

// TokensUsed returns tokens consumed in the period.
func (r Resource) TokensUsed() int64 { return r.tokensUsed }

// TokensRemaining returns tokens left (-1 = unlimited).
func (r Resource) TokensRemaining() int64 { return r.tokensRemaining }

// ResetsAt returns when the counter resets (unix millis, 0 for total).
func (r Resource) ResetsAt() int64 { return r.resetsAt }

// IsExhausted reports whether a limited budget is used up.
func (r Resource) IsExhausted() bool { return r.tokensLimit > 0 && r.tokensRemaining <= 0 }

// Report is a usage report for a time period.
type Report struct {
	period      Period
	periodStart int64
	periodEnd   int64
	embedding   Resource
	generation  Resource
}

// NewReport creates a usage report.
func NewReport(period Period, start, end int64, embedding, generation Resource) Report {
	return Report{
		period:      period,
		periodStart: start,
		periodEnd:   end,
		embedding:   embedding,
		generation:  generation,
	}
}

// Period returns the aggregation granularity.
func (r Report) Period() Period { return r.period }

// PeriodStart returns the period start timestamp (unix millis).
func (r Report) PeriodStart() int64 { return r.periodStart }

// PeriodEnd returns the period end timestamp (unix millis).
func (r Report) PeriodEnd() int64 { return r.periodEnd }

// Embedding returns the embedding provider budget.
func (r Report) Embedding() Resource { return r.embedding }

// Generation returns the generation provider budget.
func (r Report) Generation() Resource { return r.generation }
