package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/kailas-cloud/qacache/internal/metrics"
)

// ServerInterface is implemented by the HTTP handlers.
type ServerInterface interface {
	// (POST /ask)
	Ask(w http.ResponseWriter, r *http.Request)
	// (GET /records/count)
	CountRecords(w http.ResponseWriter, r *http.Request)
	// (GET /records/{id})
	GetRecord(w http.ResponseWriter, r *http.Request, id string)
	// (GET /usage)
	GetUsage(w http.ResponseWriter, r *http.Request, params GetUsageParams)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// ChiServerOptions configures route registration.
type ChiServerOptions struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// wrapper binds path and query parameters before calling the handler.
type wrapper struct {
	handler          ServerInterface
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (sw *wrapper) GetRecord(w http.ResponseWriter, r *http.Request) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		sw.errorHandlerFunc(w, r, fmt.Errorf("invalid format for parameter id: %w", err))
		return
	}
	sw.handler.GetRecord(w, r, id)
}

func (sw *wrapper) GetUsage(w http.ResponseWriter, r *http.Request) {
	var params GetUsageParams
	err := runtime.BindQueryParameter("form", true, false, "period", r.URL.Query(), &params.Period)
	if err != nil {
		sw.errorHandlerFunc(w, r, fmt.Errorf("invalid format for parameter period: %w", err))
		return
	}
	sw.handler.GetUsage(w, r, params)
}

// HandlerWithOptions registers all routes on the base router.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	sw := &wrapper{handler: si, errorHandlerFunc: options.ErrorHandlerFunc}

	r.Post("/ask", si.Ask)
	r.Get("/records/count", si.CountRecords)
	r.Get("/records/{id}", sw.GetRecord)
	r.Get("/usage", sw.GetUsage)
	r.Get("/health", si.HealthCheck)
	r.Get("/metrics", si.Metrics)
	return r
}

// NewRouter mounts the server behind recovery, request id, logging, auth and metrics middleware.
func NewRouter(si ServerInterface, apiKeys []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())
	return HandlerWithOptions(si, ChiServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		},
	})
}
