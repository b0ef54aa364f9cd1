package api

import (
	"net/http"

	"github.com/najihhome/rfidrag/internal/log"
)

// HealthHandler handles the probe endpoints.
type HealthHandler struct {
	knowledge KnowledgeStore
	logger    log.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(kb KnowledgeStore, logger log.Logger) *HealthHandler {
	return &HealthHandler{knowledge: kb, logger: logger}
}

// RegisterRoutes registers probe routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.liveness)
	mux.HandleFunc("GET /ready", h.readiness)
}

// liveness returns 200 while the process is alive.
func (h *HealthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readiness returns 200 once the retrieval index is loaded.
func (h *HealthHandler) readiness(w http.ResponseWriter, _ *http.Request) {
	if h.knowledge == nil || h.knowledge.Current() == nil {
		http.Error(w, "retrieval index not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
