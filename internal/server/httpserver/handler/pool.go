package handler

import (
	"encoding/base64"
	"net/http"
)

// handleIssueKey handles POST /pool/keys.
func (h *Handler) handleIssueKey(w http.ResponseWriter, r *http.Request) {
	var req IssueKeyRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	material, keyID, err := h.pool.GetKey(r.Context(), req.Length)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, IssueKeyResponse{
		KeyID:    keyID,
		Length:   len(material),
		Material: base64.StdEncoding.EncodeToString(material),
	})
}

// handleLookupKey handles GET /pool/keys/{key_id}.
//
// Three outcomes: a malformed ID is a 400, a well-formed unknown ID is
// a 200 with null data, and a known ID returns the stored material.
func (h *Handler) handleLookupKey(w http.ResponseWriter, r *http.Request) {
	keyID := r.PathValue("key_id")

	material, found, err := h.pool.GetKeyByID(keyID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if !found {
		h.writeJSON(w, r, http.StatusOK, nil)
		return
	}

	h.writeJSON(w, r, http.StatusOK, LookupKeyResponse{
		KeyID:    keyID,
		Length:   len(material),
		Material: base64.StdEncoding.EncodeToString(material),
	})
}
