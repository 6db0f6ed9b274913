package handler

import (
	"time"

	"github.com/Vinuthna-Athimamula/QuMail/internal/core/service"
)

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses the
// Prometheus exposition format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"` // Additional error details
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// HeartbeatRequest is the request body for POST /presence/heartbeat.
type HeartbeatRequest struct {
	UserID string `json:"user_id"`
	Label  string `json:"label,omitempty"`
}

// HeartbeatResponse is the response body for POST /presence/heartbeat.
type HeartbeatResponse struct {
	UserID   string `json:"user_id"`
	Label    string `json:"label"`
	LastSeen int64  `json:"last_seen"`
}

// SearchPeersResponse is the response body for GET /presence/peers.
type SearchPeersResponse struct {
	Peers []*service.PeerInfo `json:"peers"`
	Total int                 `json:"total"`
}

// IsActiveResponse is the response body for GET /presence/{user_id}/active.
type IsActiveResponse struct {
	UserID string `json:"user_id"`
	Active bool   `json:"active"`
}

// InitiateSessionRequest is the request body for POST /sessions.
type InitiateSessionRequest struct {
	UserA        string `json:"user_a"`
	UserB        string `json:"user_b"`
	InitialBytes int    `json:"initial_bytes,omitempty"`
}

// RefillSessionRequest is the request body for POST /sessions/refill.
type RefillSessionRequest struct {
	UserA       string `json:"user_a"`
	UserB       string `json:"user_b"`
	TargetBytes int    `json:"target_bytes,omitempty"`
}

// RefillSessionResponse is the response body for POST /sessions/refill.
type RefillSessionResponse struct {
	AddedBytes      int                    `json:"added_bytes"`
	EstimatedTarget int                    `json:"estimated_target"`
	Session         *service.SessionStatus `json:"session"`
}

// ReserveChunkRequest is the request body for POST /sessions/{id}/reserve.
type ReserveChunkRequest struct {
	UserID string `json:"user_id"`
	Length int    `json:"length"`
}

// ReadChunkRequest is the request body for POST /sessions/{id}/chunk.
type ReadChunkRequest struct {
	UserID string `json:"user_id"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

// ReadChunkResponse is the response body for POST /sessions/{id}/chunk.
// Material is base64 encoded.
type ReadChunkResponse struct {
	SessionID string `json:"session_id"`
	Offset    int    `json:"offset"`
	Length    int    `json:"length"`
	Material  string `json:"material"`
}

// IssueKeyRequest is the request body for POST /pool/keys.
type IssueKeyRequest struct {
	Length int `json:"length"`
}

// IssueKeyResponse is the response body for POST /pool/keys.
// Material is base64 encoded.
type IssueKeyResponse struct {
	KeyID    string `json:"key_id"`
	Length   int    `json:"length"`
	Material string `json:"material"`
}

// LookupKeyResponse is the response body for GET /pool/keys/{key_id}
// when the key is known. Material is base64 encoded.
type LookupKeyResponse struct {
	KeyID    string `json:"key_id"`
	Length   int    `json:"length"`
	Material string `json:"material"`
}

// AdminStatusResponse is the response body for GET /admin/v1/status/summary.
type AdminStatusResponse struct {
	ActiveSessions int    `json:"active_sessions"`
	ActiveUsers    int    `json:"active_users"`
	PoolTotalKeys  int    `json:"pool_total_keys"`
	PoolUnusedKeys int    `json:"pool_unused_keys"`
	Version        string `json:"version"`
	GoVersion      string `json:"go_version"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
}

// GCTriggerResponse is the response body for POST /admin/v1/gc/trigger.
type GCTriggerResponse struct {
	ExpiredSessions int `json:"expired_sessions"`
	StalePresence   int `json:"stale_presence"`
}

// HealthResponse is the response body for GET /health and GET /ready.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp int64  `json:"timestamp"`
}
