package handler

import (
	"net/http"
	"time"

	"github.com/Vinuthna-Athimamula/QuMail/internal/infra/buildinfo"
)

// presenceRetain is how long an inactive presence record is kept
// before a triggered sweep drops it.
const presenceRetain = 10 * time.Minute

var startTime = time.Now()

// handleAdminStatus handles GET /admin/v1/status/summary.
func (h *Handler) handleAdminStatus(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Get()
	total, unused := h.pool.Stats()

	h.writeJSON(w, r, http.StatusOK, AdminStatusResponse{
		ActiveSessions: h.sessions.Count(r.Context()),
		ActiveUsers:    h.presence.CountActive(r.Context()),
		PoolTotalKeys:  total,
		PoolUnusedKeys: unused,
		Version:        info.Version,
		GoVersion:      info.GoVersion,
		UptimeSeconds:  int64(time.Since(startTime).Seconds()),
	})
}

// handleGCTrigger handles POST /admin/v1/gc/trigger.
func (h *Handler) handleGCTrigger(w http.ResponseWriter, r *http.Request) {
	expired := h.sessions.GC(r.Context())
	stale := h.presence.Sweep(r.Context(), presenceRetain)

	h.logger.Info("manual gc completed",
		"expired_sessions", expired,
		"stale_presence", stale,
	)

	h.writeJSON(w, r, http.StatusOK, GCTriggerResponse{
		ExpiredSessions: expired,
		StalePresence:   stale,
	})
}
