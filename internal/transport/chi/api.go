package chi

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized     ErrorResponseCode = "unauthorized"
	ErrorResponseCodeValidationFailed ErrorResponseCode = "validation_failed"
	ErrorResponseCodeRecordNotFound   ErrorResponseCode = "record_not_found"
	ErrorResponseCodeStoreUnavailable ErrorResponseCode = "store_unavailable"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question"`
	ForceNew *bool  `json:"force_new,omitempty"`
}

// AskResponse is the body of a POST /ask reply.
type AskResponse struct {
	Answer          string  `json:"answer"`
	MatchPercent    float64 `json:"match_percent"`
	MatchedQuestion *string `json:"matched_question"`
	Timestamp       string  `json:"timestamp"`
	FromMemory      bool    `json:"from_memory"`
}

// RecordResponse is a stored question/answer pair.
type RecordResponse struct {
	ID        string `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

// CountResponse is the body of GET /records/count.
type CountResponse struct {
	Count int `json:"count"`
}

// GetUsageParamsPeriod is the period query parameter of GET /usage.
type GetUsageParamsPeriod string

// GetUsageParams holds GET /usage query parameters.
type GetUsageParams struct {
	Period *GetUsageParamsPeriod `form:"period,omitempty" json:"period,omitempty"`
}

// BudgetStatus is one provider's token budget.
type BudgetStatus struct {
	TokensLimit     int64 `json:"tokens_limit"`
	TokensUsed      int64 `json:"tokens_used"`
	TokensRemaining int64 `json:"tokens_remaining"`
	IsExhausted     bool  `json:"is_exhausted"`
	ResetsAt        int64 `json:"resets_at,omitempty"`
}

// UsageResponse is the body of GET /usage.
type UsageResponse struct {
	Period      string       `json:"period"`
	PeriodStart int64        `json:"period_start,omitempty"`
	PeriodEnd   int64        `json:"period_end,omitempty"`
	Embedding   BudgetStatus `json:"embedding"`
	Generation  BudgetStatus `json:"generation"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
