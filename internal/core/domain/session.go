package domain

import (
	"strings"
	"sync"
	"time"
)

// Session defaults.
const (
	// DefaultSessionTTL is the default session lifetime.
	DefaultSessionTTL = time.Hour

	// DefaultMaxBufferBytes is the default per-session buffer cap.
	DefaultMaxBufferBytes = 128 << 20 // 128 MiB
)

// pairKeySep separates the two user IDs inside a PairKey. User IDs are
// opaque identifiers; the unit separator keeps the key unambiguous.
const pairKeySep = "\x1f"

// PairKey is the canonical identifier of an unordered user pair. Both
// orderings of the same two users produce the same key, so either party
// can be the one who initiates.
type PairKey string

// NewPairKey canonicalizes an unordered pair by sorting the two IDs.
func NewPairKey(userA, userB string) PairKey {
	a, b := CanonicalPair(userA, userB)
	return PairKey(a + pairKeySep + b)
}

// CanonicalPair returns the two IDs in canonical (sorted) order.
func CanonicalPair(userA, userB string) (string, string) {
	if userB < userA {
		return userB, userA
	}
	return userA, userB
}

// Users splits the key back into its two user IDs.
func (k PairKey) Users() (string, string) {
	a, b, _ := strings.Cut(string(k), pairKeySep)
	return a, b
}

// Session is a pairwise, TTL-bound shared key buffer between two users
// that were present at creation time. There is at most one live Session
// per unordered pair; the Session exclusively owns its KeyBuffer.
type Session struct {
	// ID is the unique session identifier, qmss-{ulid}.
	ID string

	// UserA and UserB are the two parties in canonical order.
	UserA string
	UserB string

	// Buffer is the session's key material arena.
	Buffer *KeyBuffer

	// MaxBytes caps the buffer size; enforced by refill, not by the
	// buffer itself.
	MaxBytes int

	// CreatedAt is the creation timestamp (Unix ms).
	CreatedAt int64

	// expiresAt is guarded by mu: refill extends it while status reads
	// race against it.
	mu        sync.RWMutex
	expiresAt int64
}

// NewSession creates a session for the given pair, seeded with the given
// key material and expiring after ttl.
func NewSession(userA, userB string, material []byte, ttl time.Duration, maxBytes int) (*Session, error) {
	userA = strings.TrimSpace(userA)
	userB = strings.TrimSpace(userB)
	if userA == "" || userB == "" {
		return nil, ErrMissingArgument.WithDetails("both user ids are required")
	}
	if userA == userB {
		return nil, ErrInvalidArgument.WithDetails("a session needs two distinct users")
	}
	if len(userA) > MaxUserIDLength || len(userB) > MaxUserIDLength {
		return nil, ErrInvalidArgument.WithDetails("user_id exceeds 128 characters")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBufferBytes
	}
	if len(material) > maxBytes {
		return nil, ErrInvalidArgument.WithDetails("initial material exceeds max_bytes")
	}

	id, err := GenerateSessionID()
	if err != nil {
		return nil, err
	}

	a, b := CanonicalPair(userA, userB)
	now := time.Now()
	return &Session{
		ID:        id,
		UserA:     a,
		UserB:     b,
		Buffer:    NewKeyBuffer(material),
		MaxBytes:  maxBytes,
		CreatedAt: now.UnixMilli(),
		expiresAt: now.Add(ttl).UnixMilli(),
	}, nil
}

// PairKey returns the canonical pair key of the session's parties.
func (s *Session) PairKey() PairKey {
	return NewPairKey(s.UserA, s.UserB)
}

// HasParty reports whether userID is one of the session's two parties.
func (s *Session) HasParty(userID string) bool {
	return userID == s.UserA || userID == s.UserB
}

// ExpiresAt returns the expiry timestamp (Unix ms).
func (s *Session) ExpiresAt() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// ExpiresAtTime returns the expiry as time.Time.
func (s *Session) ExpiresAtTime() time.Time {
	return time.UnixMilli(s.ExpiresAt())
}

// CreatedAtTime returns the creation timestamp as time.Time.
func (s *Session) CreatedAtTime() time.Time {
	return time.UnixMilli(s.CreatedAt)
}

// IsExpired reports whether the session is past its expiry at the given
// instant.
func (s *Session) IsExpired(now time.Time) bool {
	return now.UnixMilli() > s.ExpiresAt()
}

// ExtendExpiry pushes the expiry to now+ttl. Used by refill so an
// actively topped-up session stays alive.
func (s *Session) ExtendExpiry(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt = time.Now().Add(ttl).UnixMilli()
}

// ReservationTicket holds the coordinates of a claimed chunk. It is
// ephemeral: the sender embeds the coordinates in the outgoing message
// and the receiver reads the same range back by them.
type ReservationTicket struct {
	SessionID string `json:"session_id"`
	Offset    int    `json:"offset"`
	Length    int    `json:"length"`
}
