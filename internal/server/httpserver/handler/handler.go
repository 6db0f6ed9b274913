package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Vinuthna-Athimamula/QuMail/internal/core/domain"
	"github.com/Vinuthna-Athimamula/QuMail/internal/core/service"
	"github.com/Vinuthna-Athimamula/QuMail/internal/localpool"
	"github.com/Vinuthna-Athimamula/QuMail/internal/telemetry/logger"
)

// Config carries the services the handler tree dispatches to.
type Config struct {
	Presence *service.PresenceService
	Sessions *service.SessionService
	Pool     *localpool.Pool
	Logger   logger.Logger
}

// Handler routes API requests to the appropriate service.
type Handler struct {
	presence *service.PresenceService
	sessions *service.SessionService
	pool     *localpool.Pool
	logger   logger.Logger
	mux      *http.ServeMux
}

// New creates a Handler with the given services.
func New(cfg Config) *Handler {
	h := &Handler{
		presence: cfg.Presence,
		sessions: cfg.Sessions,
		pool:     cfg.Pool,
		logger:   cfg.Logger,
		mux:      http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// registerRoutes registers all HTTP routes.
func (h *Handler) registerRoutes() {
	// Health endpoints
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	// Presence endpoints
	h.mux.HandleFunc("POST /presence/heartbeat", h.handleHeartbeat)
	h.mux.HandleFunc("GET /presence/peers", h.handleSearchPeers)
	h.mux.HandleFunc("GET /presence/{user_id}/active", h.handleIsActive)

	// Session endpoints
	h.mux.HandleFunc("POST /sessions", h.handleInitiateSession)
	h.mux.HandleFunc("GET /sessions/pair", h.handleGetPair)
	h.mux.HandleFunc("POST /sessions/refill", h.handleRefillSession)
	h.mux.HandleFunc("GET /sessions/{id}", h.handleGetSession)
	h.mux.HandleFunc("POST /sessions/{id}/reserve", h.handleReserveChunk)
	h.mux.HandleFunc("POST /sessions/{id}/chunk", h.handleReadChunk)

	// Local key pool endpoints
	h.mux.HandleFunc("POST /pool/keys", h.handleIssueKey)
	h.mux.HandleFunc("GET /pool/keys/{key_id}", h.handleLookupKey)

	// Admin endpoints
	h.mux.HandleFunc("GET /admin/v1/status/summary", h.handleAdminStatus)
	h.mux.HandleFunc("POST /admin/v1/gc/trigger", h.handleGCTrigger)
}

// writeJSON writes a JSON response with the standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with the standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := getRequestID(r)
	response := NewErrorResponse(requestID, code, message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// getRequestID extracts the request ID set by the middleware.
func getRequestID(r *http.Request) string {
	if id := logger.RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}

// decodeBody unmarshals a JSON request body into dst. A malformed body
// is reported to the client; the caller should return on false.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "QM-ARG-1001", "invalid request body", err.Error())
		return false
	}
	return true
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if domain.IsDomainError(err, "") {
		code := domain.ErrorCode(err)
		status := errorCodeToHTTPStatus(code)
		h.writeError(w, r, status, code, err.Error(), nil)
		return
	}

	h.logger.Error("internal error",
		"request_id", getRequestID(r),
		"error", err,
	)
	h.writeError(w, r, http.StatusInternalServerError, "QM-SYS-5000", "internal server error", nil)
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"), strings.HasSuffix(code, "-4041"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4030"):
		return http.StatusForbidden
	case strings.HasSuffix(code, "-4090"), strings.HasSuffix(code, "-4091"),
		strings.HasSuffix(code, "-4092"), strings.HasSuffix(code, "-4093"):
		return http.StatusConflict
	case strings.HasSuffix(code, "-4120"):
		return http.StatusPreconditionFailed
	case strings.HasSuffix(code, "-4160"):
		return http.StatusRequestedRangeNotSatisfiable
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4000"), strings.HasSuffix(code, "-4001"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "QM-ARG-"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "QM-ENTR-"):
		return http.StatusBadGateway
	case strings.HasPrefix(code, "QM-SYS-5"):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
