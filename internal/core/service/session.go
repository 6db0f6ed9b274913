package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Vinuthna-Athimamula/QuMail/internal/core/domain"
)

// SessionRepository defines the storage interface for session
// operations.
type SessionRepository interface {
	// Get retrieves a live session by ID.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// GetPair retrieves the live session for an unordered pair, or
	// (nil, nil) when none exists.
	GetPair(ctx context.Context, userA, userB string) (*domain.Session, error)

	// CreatePair stores session unless a live session for the same pair
	// exists; the returned session is the winner either way.
	CreatePair(ctx context.Context, session *domain.Session) (*domain.Session, bool, error)

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes expired sessions and returns the count.
	DeleteExpired(ctx context.Context, now time.Time) int

	// Count returns the number of stored sessions.
	Count(ctx context.Context) int
}

// EntropySource supplies random key material.
type EntropySource interface {
	Fetch(ctx context.Context, n int) ([]byte, error)
}

// Recorder receives service events for metrics. The zero-value nop
// recorder is used when no metrics backend is wired.
type Recorder interface {
	SessionInitiated(created bool)
	BufferRefilled(added int)
	ChunkReserved(length int)
	ChunkConsumed(length int)
	SessionsExpired(n int)
}

// NopRecorder discards all events.
type NopRecorder struct{}

func (NopRecorder) SessionInitiated(bool) {}
func (NopRecorder) BufferRefilled(int)    {}
func (NopRecorder) ChunkReserved(int)     {}
func (NopRecorder) ChunkConsumed(int)     {}
func (NopRecorder) SessionsExpired(int)   {}

// SessionConfig carries the tunables of the session lifecycle.
type SessionConfig struct {
	// SessionTTL is how long a session lives without refills.
	SessionTTL time.Duration

	// MaxBufferBytes caps each session's key buffer.
	MaxBufferBytes int

	// DefaultTargetBytes is the buffer size initiate and refill aim for
	// when the request does not say.
	DefaultTargetBytes int
}

// withDefaults fills zero fields.
func (c SessionConfig) withDefaults() SessionConfig {
	if c.SessionTTL <= 0 {
		c.SessionTTL = domain.DefaultSessionTTL
	}
	if c.MaxBufferBytes <= 0 {
		c.MaxBufferBytes = domain.DefaultMaxBufferBytes
	}
	if c.DefaultTargetBytes <= 0 || c.DefaultTargetBytes > c.MaxBufferBytes {
		c.DefaultTargetBytes = c.MaxBufferBytes
	}
	return c
}

// SessionService owns the pairwise session lifecycle and the key buffer
// operations on top of it.
type SessionService struct {
	repo     SessionRepository
	presence *PresenceService
	entropy  EntropySource
	cfg      SessionConfig
	recorder Recorder
}

// NewSessionService creates a SessionService.
func NewSessionService(repo SessionRepository, presence *PresenceService, entropy EntropySource, cfg SessionConfig, recorder Recorder) *SessionService {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &SessionService{
		repo:     repo,
		presence: presence,
		entropy:  entropy,
		cfg:      cfg.withDefaults(),
		recorder: recorder,
	}
}

// ============================================================================
// Session Status
// ============================================================================

// SessionStatus is the read-model of a session, safe to hand to
// transport layers. It never includes key material.
type SessionStatus struct {
	SessionID      string `json:"session_id"`
	UserA          string `json:"user_a"`
	UserB          string `json:"user_b"`
	CreatedAt      int64  `json:"created_at"`
	ExpiresAt      int64  `json:"expires_at"`
	TotalBytes     int    `json:"total_bytes"`
	ReservedBytes  int    `json:"reserved_bytes"`
	AvailableBytes int    `json:"available_bytes"`
	ConsumedBytes  uint64 `json:"consumed_bytes"`
	MaxBytes       int    `json:"max_bytes"`
}

func statusOf(s *domain.Session) *SessionStatus {
	return &SessionStatus{
		SessionID:      s.ID,
		UserA:          s.UserA,
		UserB:          s.UserB,
		CreatedAt:      s.CreatedAt,
		ExpiresAt:      s.ExpiresAt(),
		TotalBytes:     s.Buffer.Len(),
		ReservedBytes:  s.Buffer.Reserved(),
		AvailableBytes: s.Buffer.Available(),
		ConsumedBytes:  s.Buffer.Consumed(),
		MaxBytes:       s.MaxBytes,
	}
}

// ============================================================================
// Initiate Operation
// ============================================================================

// InitiateRequest contains parameters for session initiation.
type InitiateRequest struct {
	UserA        string // Required; the initiating party
	UserB        string // Required
	InitialBytes int    // Optional, defaults to the configured target
}

// InitiateResponse reports the session that now serves the pair.
type InitiateResponse struct {
	Status *SessionStatus

	// Created is false when a live session for the pair already
	// existed and was returned instead.
	Created bool
}

// Initiate creates a pairwise session, or returns the existing live one
// for the same pair. Both users must be present at the moment of the
// check; presence may lapse afterwards without affecting the session.
func (s *SessionService) Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResponse, error) {
	// 1. Validate
	if req.UserA == "" || req.UserB == "" {
		return nil, domain.ErrMissingArgument.WithDetails("both user ids are required")
	}
	if req.UserA == req.UserB {
		return nil, domain.ErrInvalidArgument.WithDetails("a session needs two distinct users")
	}

	// 2. Gate on presence
	for _, u := range []string{req.UserA, req.UserB} {
		if !s.presence.IsActive(ctx, u) {
			return nil, domain.ErrPeerNotPresent.WithDetails(u)
		}
	}

	// 3. Fast path: a live session already serves the pair
	if existing, err := s.repo.GetPair(ctx, req.UserA, req.UserB); err != nil {
		return nil, err
	} else if existing != nil {
		s.recorder.SessionInitiated(false)
		return &InitiateResponse{Status: statusOf(existing), Created: false}, nil
	}

	// 4. Draw initial material outside any lock
	initial := req.InitialBytes
	if initial <= 0 {
		initial = s.cfg.DefaultTargetBytes
	}
	if initial > s.cfg.MaxBufferBytes {
		initial = s.cfg.MaxBufferBytes
	}
	material, err := s.entropy.Fetch(ctx, initial)
	if err != nil {
		return nil, err
	}

	// 5. Create and publish; a racing initiation may win, in which case
	// our material is discarded and the winner is returned
	session, err := domain.NewSession(req.UserA, req.UserB, material, s.cfg.SessionTTL, s.cfg.MaxBufferBytes)
	if err != nil {
		return nil, err
	}
	winner, created, err := s.repo.CreatePair(ctx, session)
	if err != nil {
		return nil, err
	}

	s.recorder.SessionInitiated(created)
	return &InitiateResponse{Status: statusOf(winner), Created: created}, nil
}

// ============================================================================
// Lookup Operations
// ============================================================================

// Get returns the status of a session by ID.
func (s *SessionService) Get(ctx context.Context, sessionID string) (*SessionStatus, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return statusOf(session), nil
}

// GetPair returns the status of the live session for a pair, or
// (nil, nil) when none exists.
func (s *SessionService) GetPair(ctx context.Context, userA, userB string) (*SessionStatus, error) {
	if userA == "" || userB == "" {
		return nil, domain.ErrMissingArgument.WithDetails("both user ids are required")
	}
	session, err := s.repo.GetPair(ctx, userA, userB)
	if err != nil || session == nil {
		return nil, err
	}
	return statusOf(session), nil
}

// ============================================================================
// Refill Operation
// ============================================================================

// RefillRequest tops a pair's buffer up toward a target size. The
// target is a sizing hint computed by the caller, typically from
// pending outbound content.
type RefillRequest struct {
	UserA       string // Required
	UserB       string // Required
	TargetBytes int    // Optional, defaults to the configured target
}

// RefillResponse reports the outcome of a refill.
type RefillResponse struct {
	AddedBytes int

	// EstimatedTarget is the cap-clamped size the refill aimed for.
	EstimatedTarget int

	Status *SessionStatus
}

// Refill grows the pair's buffer toward the target, clamped to the
// session cap. Gated on presence exactly like Initiate, and when no
// live session exists it behaves like Initiate. A target at or below
// the current size is a no-op unless the buffer is already at its cap
// and more was asked for, which is the one case reported as an error.
// Growth extends the session's expiry.
func (s *SessionService) Refill(ctx context.Context, req *RefillRequest) (*RefillResponse, error) {
	// 1. Validate and gate on presence
	if req.UserA == "" || req.UserB == "" {
		return nil, domain.ErrMissingArgument.WithDetails("both user ids are required")
	}
	for _, u := range []string{req.UserA, req.UserB} {
		if !s.presence.IsActive(ctx, u) {
			return nil, domain.ErrPeerNotPresent.WithDetails(u)
		}
	}

	// 2. Load; a pair without a live session is initiated instead
	session, err := s.repo.GetPair(ctx, req.UserA, req.UserB)
	if err != nil {
		return nil, err
	}
	if session == nil {
		resp, err := s.Initiate(ctx, &InitiateRequest{
			UserA:        req.UserA,
			UserB:        req.UserB,
			InitialBytes: req.TargetBytes,
		})
		if err != nil {
			return nil, err
		}
		return &RefillResponse{
			AddedBytes:      resp.Status.TotalBytes,
			EstimatedTarget: resp.Status.TotalBytes,
			Status:          resp.Status,
		}, nil
	}

	// 3. Work out how much to add
	target := req.TargetBytes
	if target <= 0 {
		target = s.cfg.DefaultTargetBytes
	}
	desired := target
	if desired > session.MaxBytes {
		desired = session.MaxBytes
	}
	current := session.Buffer.Len()
	add := desired - current
	if add <= 0 {
		if target > current && current >= session.MaxBytes {
			return nil, domain.ErrBufferCapExceeded.WithDetails(
				fmt.Sprintf("buffer at %d of %d bytes", current, session.MaxBytes))
		}
		return &RefillResponse{AddedBytes: 0, EstimatedTarget: desired, Status: statusOf(session)}, nil
	}

	// 4. Draw material outside the buffer lock
	material, err := s.entropy.Fetch(ctx, add)
	if err != nil {
		return nil, err
	}

	// 5. Append; the cap is re-checked under the buffer lock so racing
	// refills cannot overshoot
	added := session.Buffer.GrowCapped(material, session.MaxBytes)
	if added > 0 {
		session.ExtendExpiry(s.cfg.SessionTTL)
		s.recorder.BufferRefilled(added)
	}

	return &RefillResponse{AddedBytes: added, EstimatedTarget: desired, Status: statusOf(session)}, nil
}

// ============================================================================
// Chunk Operations
// ============================================================================

// ReserveChunkRequest claims a range of key material for one message.
type ReserveChunkRequest struct {
	SessionID string // Required
	UserID    string // Required; must be a session party
	Length    int    // Required
}

// ReserveChunk atomically claims Length bytes and returns the ticket the
// sender embeds in the outgoing message. Concurrent reservations never
// overlap.
func (s *SessionService) ReserveChunk(ctx context.Context, req *ReserveChunkRequest) (*domain.ReservationTicket, error) {
	session, err := s.repo.Get(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasParty(req.UserID) {
		return nil, domain.ErrNotSessionParty.WithDetails(req.UserID)
	}

	offset, err := session.Buffer.Reserve(req.Length)
	if err != nil {
		return nil, err
	}

	s.recorder.ChunkReserved(req.Length)
	return &domain.ReservationTicket{
		SessionID: session.ID,
		Offset:    offset,
		Length:    req.Length,
	}, nil
}

// ReadChunkRequest reads back an already-reserved range.
type ReadChunkRequest struct {
	SessionID string // Required
	UserID    string // Required; must be a session party
	Offset    int
	Length    int // Required
}

// ReadChunk returns a copy of the material at the ticket coordinates.
// Either party may read any reserved range, in any order.
func (s *SessionService) ReadChunk(ctx context.Context, req *ReadChunkRequest) ([]byte, error) {
	session, err := s.repo.Get(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasParty(req.UserID) {
		return nil, domain.ErrNotSessionParty.WithDetails(req.UserID)
	}

	chunk, err := session.Buffer.Consume(req.Offset, req.Length)
	if err != nil {
		return nil, err
	}

	s.recorder.ChunkConsumed(req.Length)
	return chunk, nil
}

// ============================================================================
// Maintenance
// ============================================================================

// GC removes expired sessions. Returns the number removed.
func (s *SessionService) GC(ctx context.Context) int {
	n := s.repo.DeleteExpired(ctx, time.Now())
	if n > 0 {
		s.recorder.SessionsExpired(n)
	}
	return n
}

// Count returns the number of stored sessions.
func (s *SessionService) Count(ctx context.Context) int {
	return s.repo.Count(ctx)
}
