package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Vinuthna-Athimamula/QuMail/internal/core/domain"
	"github.com/Vinuthna-Athimamula/QuMail/internal/core/service"
	"github.com/Vinuthna-Athimamula/QuMail/internal/server/httpserver/handler"
)

// APIError is an error response from the key service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("qumail api: [%s] %s (http %d)", e.Code, e.Message, e.StatusCode)
}

// envelope mirrors the server response envelope with the data left raw
// for typed decoding.
type envelope struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Client talks to the QuMail key service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// do performs one request and decodes the response envelope. The
// returned status lets callers distinguish created from existing.
func (c *Client) do(ctx context.Context, method, path string, body, result any) (int, error) {
	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return resp.StatusCode, &APIError{
			StatusCode: resp.StatusCode,
			Code:       env.Code,
			Message:    env.Message,
			RequestID:  env.RequestID,
		}
	}

	if result != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// Heartbeat announces the user as present.
func (c *Client) Heartbeat(ctx context.Context, userID, label string) (*handler.HeartbeatResponse, error) {
	var out handler.HeartbeatResponse
	_, err := c.do(ctx, http.MethodPost, "/presence/heartbeat", handler.HeartbeatRequest{
		UserID: userID,
		Label:  label,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchPeers lists peers visible to the requester. With activeOnly
// set, peers whose presence has lapsed are dropped from the results.
func (c *Client) SearchPeers(ctx context.Context, requester, query string, limit int, activeOnly bool) ([]*service.PeerInfo, error) {
	q := url.Values{}
	q.Set("user_id", requester)
	if query != "" {
		q.Set("q", query)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if activeOnly {
		q.Set("active_only", "true")
	}

	var out handler.SearchPeersResponse
	_, err := c.do(ctx, http.MethodGet, "/presence/peers?"+q.Encode(), nil, &out)
	if err != nil {
		return nil, err
	}
	return out.Peers, nil
}

// IsActive reports whether a user has a live presence record.
func (c *Client) IsActive(ctx context.Context, userID string) (bool, error) {
	var out handler.IsActiveResponse
	_, err := c.do(ctx, http.MethodGet, "/presence/"+url.PathEscape(userID)+"/active", nil, &out)
	if err != nil {
		return false, err
	}
	return out.Active, nil
}

// InitiateSession creates or joins the pairwise session for two users.
// Created reports whether this call created it.
func (c *Client) InitiateSession(ctx context.Context, userA, userB string, initialBytes int) (*service.SessionStatus, bool, error) {
	var out service.SessionStatus
	status, err := c.do(ctx, http.MethodPost, "/sessions", handler.InitiateSessionRequest{
		UserA:        userA,
		UserB:        userB,
		InitialBytes: initialBytes,
	}, &out)
	if err != nil {
		return nil, false, err
	}
	return &out, status == http.StatusCreated, nil
}

// GetSession fetches a session by ID.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*service.SessionStatus, error) {
	var out service.SessionStatus
	_, err := c.do(ctx, http.MethodGet, "/sessions/"+url.PathEscape(sessionID), nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPairSession fetches the live session for a pair, in either order.
// A pair with no live session returns nil without error.
func (c *Client) GetPairSession(ctx context.Context, userA, userB string) (*service.SessionStatus, error) {
	q := url.Values{}
	q.Set("user_a", userA)
	q.Set("user_b", userB)

	out := &service.SessionStatus{}
	_, err := c.do(ctx, http.MethodGet, "/sessions/pair?"+q.Encode(), nil, out)
	if err != nil {
		return nil, err
	}
	if out.SessionID == "" {
		return nil, nil
	}
	return out, nil
}

// RefillSession tops the pair's buffer up toward targetBytes, creating
// the session first if the pair has none.
func (c *Client) RefillSession(ctx context.Context, userA, userB string, targetBytes int) (*handler.RefillSessionResponse, error) {
	var out handler.RefillSessionResponse
	_, err := c.do(ctx, http.MethodPost, "/sessions/refill", handler.RefillSessionRequest{
		UserA:       userA,
		UserB:       userB,
		TargetBytes: targetBytes,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ReserveChunk claims length bytes of key material for an outgoing
// message and returns the ticket to embed in it.
func (c *Client) ReserveChunk(ctx context.Context, sessionID, userID string, length int) (*domain.ReservationTicket, error) {
	var out domain.ReservationTicket
	_, err := c.do(ctx, http.MethodPost, "/sessions/"+url.PathEscape(sessionID)+"/reserve", handler.ReserveChunkRequest{
		UserID: userID,
		Length: length,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ReadChunk reads the material at the given ticket coordinates.
func (c *Client) ReadChunk(ctx context.Context, sessionID, userID string, offset, length int) ([]byte, error) {
	var out handler.ReadChunkResponse
	_, err := c.do(ctx, http.MethodPost, "/sessions/"+url.PathEscape(sessionID)+"/chunk", handler.ReadChunkRequest{
		UserID: userID,
		Offset: offset,
		Length: length,
	}, &out)
	if err != nil {
		return nil, err
	}

	material, err := base64.StdEncoding.DecodeString(out.Material)
	if err != nil {
		return nil, fmt.Errorf("failed to decode chunk material: %w", err)
	}
	return material, nil
}

// IssueKey draws an unused key of the given length from the server's
// local pool.
func (c *Client) IssueKey(ctx context.Context, length int) (keyID string, material []byte, err error) {
	var out handler.IssueKeyResponse
	_, err = c.do(ctx, http.MethodPost, "/pool/keys", handler.IssueKeyRequest{Length: length}, &out)
	if err != nil {
		return "", nil, err
	}

	material, err = base64.StdEncoding.DecodeString(out.Material)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode key material: %w", err)
	}
	return out.KeyID, material, nil
}

// LookupKey fetches a pool key by ID. A well-formed unknown ID returns
// nil material without error.
func (c *Client) LookupKey(ctx context.Context, keyID string) ([]byte, error) {
	out := &handler.LookupKeyResponse{}
	_, err := c.do(ctx, http.MethodGet, "/pool/keys/"+url.PathEscape(keyID), nil, out)
	if err != nil {
		return nil, err
	}
	if out.KeyID == "" {
		return nil, nil
	}

	material, err := base64.StdEncoding.DecodeString(out.Material)
	if err != nil {
		return nil, fmt.Errorf("failed to decode key material: %w", err)
	}
	return material, nil
}

// AdminStatus fetches the service status summary.
func (c *Client) AdminStatus(ctx context.Context) (*handler.AdminStatusResponse, error) {
	var out handler.AdminStatusResponse
	_, err := c.do(ctx, http.MethodGet, "/admin/v1/status/summary", nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// TriggerGC runs an immediate expiry sweep on the server.
func (c *Client) TriggerGC(ctx context.Context) (*handler.GCTriggerResponse, error) {
	var out handler.GCTriggerResponse
	_, err := c.do(ctx, http.MethodPost, "/admin/v1/gc/trigger", map[string]any{}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks service liveness.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil, nil)
	return err
}
