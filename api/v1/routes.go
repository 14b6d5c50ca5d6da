package v1

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"ctxpipe/internal/pipeline"
	"ctxpipe/internal/storage"
)

// PipelineProvider yields the current pipeline. The server swaps the
// pipeline on config reload, so handlers fetch it per request.
type PipelineProvider interface {
	Pipeline() *pipeline.Pipeline
}

// Handler bundles the API dependencies.
type Handler struct {
	provider PipelineProvider
	reports  *storage.ReportStore // nil when the report log is disabled
	logger   zerolog.Logger
}

// NewHandler creates the v1 API handler.
func NewHandler(provider PipelineProvider, reports *storage.ReportStore, logger zerolog.Logger) *Handler {
	return &Handler{provider: provider, reports: reports, logger: logger}
}

// RegisterRoutes mounts the v1 API on r.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/transform", h.handleTransform).Methods(http.MethodPost)
	api.HandleFunc("/reports", h.handleReports).Methods(http.MethodGet)
	api.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
