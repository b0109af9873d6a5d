package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/qacache/internal/domain"
	domans "github.com/kailas-cloud/qacache/internal/domain/answer"
	"github.com/kailas-cloud/qacache/internal/domain/record"
	domusage "github.com/kailas-cloud/qacache/internal/domain/usage"
	answeruc "github.com/kailas-cloud/qacache/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/qacache/internal/usecase/health"
	usageuc "github.com/kailas-cloud/qacache/internal/usecase/usage"
)

const maxAskBodyBytes = 64 << 10

// Asker answers a question for a session.
type Asker interface {
	Handle(ctx context.Context, q answeruc.Query, sessionID string) domans.Answer
}

// RecordReader reads stored records.
type RecordReader interface {
	Get(ctx context.Context, id string) (record.Record, error)
	Count(ctx context.Context) (int, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements ServerInterface.
type Server struct {
	asker         Asker
	records       RecordReader
	usage         *usageuc.Service
	health        *healthuc.Service
	sessions      *sessionLocks
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(
	asker Asker,
	records RecordReader,
	usage *usageuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		asker:    asker,
		records:  records,
		usage:    usage,
		health:   health,
		sessions: newSessionLocks(),
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeRecordNotFound),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, ErrorResponseCodeStoreUnavailable),
	}
	return s
}

// Ask handles POST /ask. Any well-formed request gets 200; failures are folded into the answer text.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAskBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	sid := sessionID(r)
	w.Header().Set(SessionHeader, sid)

	unlock := s.sessions.lock(sid)
	defer unlock()

	ctx, usage := domain.NewContextWithUsage(r.Context())
	a := s.asker.Handle(ctx, answeruc.Query{
		Question: req.Question,
		ForceNew: req.ForceNew != nil && *req.ForceNew,
	}, sid)

	setUsageHeaders(w, usage, a.Outcome)
	writeJSON(w, http.StatusOK, answerToResponse(a))
}

// CountRecords handles GET /records/count.
func (s *Server) CountRecords(w http.ResponseWriter, r *http.Request) {
	n, err := s.records.Count(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: n})
}

// GetRecord handles GET /records/{id}.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := s.records.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RecordResponse{
		ID:        rec.ID(),
		Question:  rec.Question(),
		Answer:    rec.Text(),
		Timestamp: rec.Timestamp(),
	})
}

// GetUsage handles GET /usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request, params GetUsageParams) {
	var raw string
	if params.Period != nil {
		raw = string(*params.Period)
	}
	period, ok := domusage.ParsePeriod(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed,
			"period must be one of day, month, total")
		return
	}

	report := s.usage.GetReport(r.Context(), period)
	writeJSON(w, http.StatusOK, UsageResponse{
		Period:      string(report.Period()),
		PeriodStart: report.PeriodStart(),
		PeriodEnd:   report.PeriodEnd(),
		Embedding:   budgetToResponse(report.Embedding()),
		Generation:  budgetToResponse(report.Generation()),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func answerToResponse(a domans.Answer) AskResponse {
	return AskResponse{
		Answer:          a.Text,
		MatchPercent:    a.MatchPercent,
		MatchedQuestion: a.MatchedQuestion,
		Timestamp:       a.Timestamp,
		FromMemory:      a.FromMemory,
	}
}

func budgetToResponse(r domusage.Resource) BudgetStatus {
	return BudgetStatus{
		TokensLimit:     r.TokensLimit(),
		TokensUsed:      r.TokensUsed(),
		TokensRemaining: r.TokensRemaining(),
		IsExhausted:     r.IsExhausted(),
		ResetsAt:        r.ResetsAt(),
	}
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.TokenUsage, outcome domans.Outcome) {
	w.Header().Set("X-Cache", string(outcome))
	if usage == nil {
		return
	}
	if usage.EmbeddingTokens > 0 {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.EmbeddingTokens))
	}
	if usage.GenerationTokens > 0 {
		w.Header().Set("X-Generation-Tokens", strconv.Itoa(usage.GenerationTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrStoreUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
