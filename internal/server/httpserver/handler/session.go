package handler

import (
	"encoding/base64"
	"net/http"

	"github.com/Vinuthna-Athimamula/QuMail/internal/core/service"
)

// handleInitiateSession handles POST /sessions.
//
// Returns 201 when a new session is created and 200 when a live
// session for the same pair already existed.
func (h *Handler) handleInitiateSession(w http.ResponseWriter, r *http.Request) {
	var req InitiateSessionRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	resp, err := h.sessions.Initiate(r.Context(), &service.InitiateRequest{
		UserA:        req.UserA,
		UserB:        req.UserB,
		InitialBytes: req.InitialBytes,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	h.writeJSON(w, r, status, resp.Status)
}

// handleGetSession handles GET /sessions/{id}.
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	status, err := h.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, status)
}

// handleGetPair handles GET /sessions/pair.
//
// Query parameters: user_a, user_b. A pair with no live session is not
// an error; the envelope carries null data.
func (h *Handler) handleGetPair(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status, err := h.sessions.GetPair(r.Context(), q.Get("user_a"), q.Get("user_b"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, status)
}

// handleRefillSession handles POST /sessions/refill.
//
// Addressed by pair, not by session ID, so a refill against a pair with
// no live session simply creates one.
func (h *Handler) handleRefillSession(w http.ResponseWriter, r *http.Request) {
	var req RefillSessionRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	resp, err := h.sessions.Refill(r.Context(), &service.RefillRequest{
		UserA:       req.UserA,
		UserB:       req.UserB,
		TargetBytes: req.TargetBytes,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, RefillSessionResponse{
		AddedBytes:      resp.AddedBytes,
		EstimatedTarget: resp.EstimatedTarget,
		Session:         resp.Status,
	})
}

// handleReserveChunk handles POST /sessions/{id}/reserve.
func (h *Handler) handleReserveChunk(w http.ResponseWriter, r *http.Request) {
	var req ReserveChunkRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	ticket, err := h.sessions.ReserveChunk(r.Context(), &service.ReserveChunkRequest{
		SessionID: r.PathValue("id"),
		UserID:    req.UserID,
		Length:    req.Length,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, ticket)
}

// handleReadChunk handles POST /sessions/{id}/chunk.
//
// POST rather than GET because the response carries key material that
// must never land in access logs or caches via query strings.
func (h *Handler) handleReadChunk(w http.ResponseWriter, r *http.Request) {
	var req ReadChunkRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	sessionID := r.PathValue("id")
	material, err := h.sessions.ReadChunk(r.Context(), &service.ReadChunkRequest{
		SessionID: sessionID,
		UserID:    req.UserID,
		Offset:    req.Offset,
		Length:    req.Length,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, ReadChunkResponse{
		SessionID: sessionID,
		Offset:    req.Offset,
		Length:    len(material),
		Material:  base64.StdEncoding.EncodeToString(material),
	})
}
