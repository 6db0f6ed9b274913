package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Vinuthna-Athimamula/QuMail/internal/core/domain"
	"github.com/Vinuthna-Athimamula/QuMail/pkg/cmap"
)

// SessionStore holds live sessions with a secondary pair index.
//
// Unlike a record store, sessions are shared mutable objects: the
// KeyBuffer inside each Session must be the single arena both parties
// reserve from, so Get returns the live pointer, not a clone. The
// Session and KeyBuffer types carry their own locks.
type SessionStore struct {
	// Primary index: SessionID -> Session
	sessions *cmap.Map[*domain.Session]

	// Secondary index: PairKey -> SessionID. At most one live session
	// per unordered pair.
	pairs *cmap.Map[string]

	// Global lock for operations spanning both indexes.
	mu sync.RWMutex
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: cmap.New[*domain.Session](),
		pairs:    cmap.New[string](),
	}
}

// Get retrieves a live session by ID. Expired sessions are reported as
// such but left in place for the sweeper.
func (s *SessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound.WithDetails(id)
	}
	if session.IsExpired(time.Now()) {
		return nil, domain.ErrSessionExpired.WithDetails(id)
	}
	return session, nil
}

// GetPair retrieves the live session for an unordered user pair. Returns
// (nil, nil) when no live session exists: an expired session counts as
// absent here, because the caller's next move is to initiate a fresh one.
func (s *SessionStore) GetPair(_ context.Context, userA, userB string) (*domain.Session, error) {
	key := domain.NewPairKey(userA, userB)

	sessionID, ok := s.pairs.Get(string(key))
	if !ok {
		return nil, nil
	}
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		// Index inconsistency, drop the orphaned pair entry.
		s.pairs.Delete(string(key))
		return nil, nil
	}
	if session.IsExpired(time.Now()) {
		return nil, nil
	}
	return session, nil
}

// CreatePair stores session unless a live session for the same pair
// already exists, in which case the existing one wins and the new
// session is discarded. The returned bool reports whether session was
// the one stored. This is the idempotency point for concurrent
// initiations: exactly one caller creates, the rest observe.
func (s *SessionStore) CreatePair(_ context.Context, session *domain.Session) (*domain.Session, bool, error) {
	key := string(session.PairKey())
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if existingID, ok := s.pairs.Get(key); ok {
		if existing, ok := s.sessions.Get(existingID); ok && !existing.IsExpired(now) {
			return existing, false, nil
		}
		// Stale winner: the indexed session expired or vanished.
		s.sessions.Delete(existingID)
	}

	if s.sessions.Has(session.ID) {
		return nil, false, domain.ErrSessionConflict.WithDetails(session.ID)
	}

	s.sessions.Set(session.ID, session)
	s.pairs.Set(key, session.ID)
	return session, true, nil
}

// Delete removes a session and its pair index entry.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions.Pop(id)
	if !ok {
		return domain.ErrSessionNotFound.WithDetails(id)
	}

	key := string(session.PairKey())
	// Only drop the pair entry if it still points at this session.
	if current, ok := s.pairs.Get(key); ok && current == id {
		s.pairs.Delete(key)
	}
	return nil
}

// DeleteExpired removes all sessions past their expiry and returns how
// many were deleted. Called by the background sweeper.
func (s *SessionStore) DeleteExpired(_ context.Context, now time.Time) int {
	var expired []string
	s.sessions.Range(func(id string, session *domain.Session) bool {
		if session.IsExpired(now) {
			expired = append(expired, id)
		}
		return true
	})
	if len(expired) == 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, id := range expired {
		session, ok := s.sessions.Get(id)
		if !ok || !session.IsExpired(now) {
			continue // refilled back to life after the scan
		}
		s.sessions.Delete(id)
		key := string(session.PairKey())
		if current, ok := s.pairs.Get(key); ok && current == id {
			s.pairs.Delete(key)
		}
		deleted++
	}
	return deleted
}

// Count returns the number of stored sessions, expired ones included.
func (s *SessionStore) Count(_ context.Context) int {
	return s.sessions.Count()
}
