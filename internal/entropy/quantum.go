package entropy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Vinuthna-Athimamula/QuMail/internal/core/domain"
)

// Quantum defaults.
const (
	// DefaultQuantumURL is the public ANU QRNG endpoint.
	DefaultQuantumURL = "https://qrng.anu.edu.au/API/jsonI.php"

	// DefaultMaxRequestBytes is the per-request byte limit the upstream
	// service imposes. Larger fetches are split into sub-requests.
	DefaultMaxRequestBytes = 1024

	// DefaultQuantumTimeout bounds each HTTP sub-request.
	DefaultQuantumTimeout = 5 * time.Second
)

// Quantum fetches random bytes from an external quantum random number
// service over HTTP.
//
// The upstream caps the bytes per request, so large fetches issue
// sequential sub-requests and concatenate the results. There are no
// retries: any sub-request failure fails the whole Fetch, and the caller
// (normally the Adapter) decides whether to fall back. Retrying here
// would stack latency on a path a user is waiting on.
type Quantum struct {
	baseURL    string
	maxRequest int
	httpClient *http.Client
}

// QuantumOption configures the Quantum source.
type QuantumOption func(*Quantum)

// WithBaseURL sets the service endpoint.
func WithBaseURL(u string) QuantumOption {
	return func(q *Quantum) {
		q.baseURL = u
	}
}

// WithMaxRequestBytes sets the per-request byte limit.
func WithMaxRequestBytes(n int) QuantumOption {
	return func(q *Quantum) {
		if n > 0 {
			q.maxRequest = n
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) QuantumOption {
	return func(q *Quantum) {
		if d > 0 {
			q.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client. Used by tests.
func WithHTTPClient(c *http.Client) QuantumOption {
	return func(q *Quantum) {
		q.httpClient = c
	}
}

// NewQuantum creates a quantum source.
func NewQuantum(opts ...QuantumOption) *Quantum {
	q := &Quantum{
		baseURL:    DefaultQuantumURL,
		maxRequest: DefaultMaxRequestBytes,
		httpClient: &http.Client{Timeout: DefaultQuantumTimeout},
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// quantumResponse is the upstream wire format: one unsigned byte per
// array element.
type quantumResponse struct {
	Data    []int  `json:"data"`
	Length  int    `json:"length"`
	Success bool   `json:"success"`
	Type    string `json:"type"`
}

// Fetch returns exactly n bytes from the quantum service, issuing as
// many sub-requests as the per-request limit demands.
func (q *Quantum) Fetch(ctx context.Context, n int) ([]byte, error) {
	if n <= 0 {
		return nil, domain.ErrInvalidArgument.WithDetails("byte count must be positive")
	}

	out := make([]byte, 0, n)
	for remaining := n; remaining > 0; {
		want := remaining
		if want > q.maxRequest {
			want = q.maxRequest
		}
		chunk, err := q.fetchOnce(ctx, want)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
		remaining -= len(chunk)
	}
	return out, nil
}

func (q *Quantum) fetchOnce(ctx context.Context, n int) ([]byte, error) {
	reqURL := fmt.Sprintf("%s?%s", q.baseURL, url.Values{
		"length": {fmt.Sprint(n)},
		"type":   {"uint8"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, domain.ErrEntropyUnavailable.WithCause(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := q.httpClient.Do(req)
	if err != nil {
		return nil, domain.ErrEntropyUnavailable.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, domain.ErrEntropyUnavailable.WithDetails(
			fmt.Sprintf("upstream returned %d: %s", resp.StatusCode, body))
	}

	var parsed quantumResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, domain.ErrEntropyUnavailable.WithCause(err)
	}
	if !parsed.Success {
		return nil, domain.ErrEntropyUnavailable.WithDetails("upstream reported success=false")
	}
	if len(parsed.Data) != n {
		return nil, domain.ErrEntropyUnavailable.WithDetails(
			fmt.Sprintf("upstream returned %d values, requested %d", len(parsed.Data), n))
	}

	chunk := make([]byte, n)
	for i, v := range parsed.Data {
		if v < 0 || v > 255 {
			return nil, domain.ErrEntropyUnavailable.WithDetails(
				fmt.Sprintf("value %d out of byte range at index %d", v, i))
		}
		chunk[i] = byte(v)
	}
	return chunk, nil
}

// Name implements Source.
func (q *Quantum) Name() string {
	return "quantum-http"
}
