package handler

import (
	"net/http"
	"strconv"

	"github.com/Vinuthna-Athimamula/QuMail/internal/core/service"
)

// handleHeartbeat handles POST /presence/heartbeat.
func (h *Handler) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	var req HeartbeatRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	resp, err := h.presence.Heartbeat(r.Context(), &service.HeartbeatRequest{
		UserID: req.UserID,
		Label:  req.Label,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, HeartbeatResponse{
		UserID:   resp.UserID,
		Label:    resp.Label,
		LastSeen: resp.LastSeen,
	})
}

// handleSearchPeers handles GET /presence/peers.
//
// Query parameters: user_id (requester, required), q (substring filter),
// limit, active_only.
func (h *Handler) handleSearchPeers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, r, http.StatusBadRequest, "QM-ARG-1001", "invalid limit", raw)
			return
		}
		limit = n
	}

	activeOnly := false
	if raw := q.Get("active_only"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			h.writeError(w, r, http.StatusBadRequest, "QM-ARG-1001", "invalid active_only", raw)
			return
		}
		activeOnly = b
	}

	peers, err := h.presence.Search(r.Context(), &service.SearchRequest{
		Requester:  q.Get("user_id"),
		Query:      q.Get("q"),
		Limit:      limit,
		ActiveOnly: activeOnly,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if peers == nil {
		peers = []*service.PeerInfo{}
	}

	h.writeJSON(w, r, http.StatusOK, SearchPeersResponse{
		Peers: peers,
		Total: len(peers),
	})
}

// handleIsActive handles GET /presence/{user_id}/active.
func (h *Handler) handleIsActive(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	h.writeJSON(w, r, http.StatusOK, IsActiveResponse{
		UserID: userID,
		Active: h.presence.IsActive(r.Context(), userID),
	})
}
