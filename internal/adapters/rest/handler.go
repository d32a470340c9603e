package rest

import (
	"encoding/json"
	"net/http"

	"github.com/moodfuse-labs/moodfuse/internal/core/services"
	"github.com/moodfuse-labs/moodfuse/internal/worker"
)

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc    *services.Orchestrator // Dependency on the Core Service
	pool   *worker.Pool           // Async frame-analysis queue
	router *http.ServeMux         // Standard library router
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(svc *services.Orchestrator, pool *worker.Pool) *Handler {
	h := &Handler{
		svc:    svc,
		pool:   pool,
		router: http.NewServeMux(),
	}

	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
// It acts as a proxy, passing the request to our internal router.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	// Health Check
	h.router.HandleFunc("GET /health", h.HealthCheck)
	// Session lifecycle and fusion
	h.router.HandleFunc("POST /emotion/sessions", h.StartSession)
	h.router.HandleFunc("GET /emotion/sessions/{id}", h.SessionInfo)
	h.router.HandleFunc("DELETE /emotion/sessions/{id}", h.DiscardSession)
	h.router.HandleFunc("POST /emotion/frames", h.PushFrame)
	h.router.HandleFunc("POST /emotion/fuse", h.Fuse)
	// Expression analysis
	h.router.HandleFunc("POST /emotion/analyze", h.Analyze)
	h.router.HandleFunc("POST /emotion/analyze-frame", h.AnalyzeFrame)
	// Survey documents
	h.router.HandleFunc("POST /surveys", h.CreateSurvey)
	h.router.HandleFunc("GET /surveys", h.ListSurveys)
	h.router.HandleFunc("GET /surveys/{id}", h.GetSurvey)
	h.router.HandleFunc("PATCH /surveys/{id}/viewed", h.SetSurveyViewed)
	h.router.HandleFunc("DELETE /surveys/{id}", h.DeleteSurvey)
}

// HealthCheck reports API liveness and expression-engine reachability.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "engine": "down"}
	if h.svc.EngineHealthy(r.Context()) {
		status["engine"] = "ready"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}
