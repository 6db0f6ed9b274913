package handler

import (
	"net/http"
	"time"

	"github.com/Vinuthna-Athimamula/QuMail/internal/infra/buildinfo"
)

// handleHealth handles GET /health. Liveness: the process is up.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:    "ok",
		Version:   buildinfo.Get().Version,
		Timestamp: time.Now().UnixMilli(),
	})
}

// handleReady handles GET /ready. Readiness: all stores are in-memory
// so readiness follows liveness.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:    "ready",
		Version:   buildinfo.Get().Version,
		Timestamp: time.Now().UnixMilli(),
	})
}
