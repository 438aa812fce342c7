package routes

import (
	"net/http"

	"github.com/zura-health/orflow/backend/internal/api/handlers"
	"github.com/zura-health/orflow/backend/internal/api/middleware"
	"github.com/zura-health/orflow/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	flagHandler *handlers.FlagHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(flagHandler *handlers.FlagHandler, metrics *observability.Metrics) *Router {
	return &Router{
		mux:         http.NewServeMux(),
		flagHandler: flagHandler,
		metrics:     metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Flag endpoints
	r.mux.HandleFunc("POST /api/flags/evaluate", r.flagHandler.EvaluateFlags)
	r.mux.HandleFunc("GET /api/flags", r.flagHandler.ListFlags)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
