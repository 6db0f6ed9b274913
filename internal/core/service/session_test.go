package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Vinuthna-Athimamula/QuMail/internal/core/domain"
)

// mockSessionRepo is an in-memory SessionRepository for testing.
type mockSessionRepo struct {
	sessions map[string]*domain.Session
	pairs    map[domain.PairKey]string
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{
		sessions: make(map[string]*domain.Session),
		pairs:    make(map[domain.PairKey]string),
	}
}

func (m *mockSessionRepo) Get(_ context.Context, id string) (*domain.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if s.IsExpired(time.Now()) {
		return nil, domain.ErrSessionExpired
	}
	return s, nil
}

func (m *mockSessionRepo) GetPair(_ context.Context, userA, userB string) (*domain.Session, error) {
	id, ok := m.pairs[domain.NewPairKey(userA, userB)]
	if !ok {
		return nil, nil
	}
	s := m.sessions[id]
	if s == nil || s.IsExpired(time.Now()) {
		return nil, nil
	}
	return s, nil
}

func (m *mockSessionRepo) CreatePair(_ context.Context, session *domain.Session) (*domain.Session, bool, error) {
	key := session.PairKey()
	if id, ok := m.pairs[key]; ok {
		if existing := m.sessions[id]; existing != nil && !existing.IsExpired(time.Now()) {
			return existing, false, nil
		}
	}
	m.sessions[session.ID] = session
	m.pairs[key] = session.ID
	return session, true, nil
}

func (m *mockSessionRepo) Delete(_ context.Context, id string) error {
	s, ok := m.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	delete(m.sessions, id)
	delete(m.pairs, s.PairKey())
	return nil
}

func (m *mockSessionRepo) DeleteExpired(_ context.Context, now time.Time) int {
	n := 0
	for id, s := range m.sessions {
		if s.IsExpired(now) {
			delete(m.sessions, id)
			delete(m.pairs, s.PairKey())
			n++
		}
	}
	return n
}

func (m *mockSessionRepo) Count(_ context.Context) int {
	return len(m.sessions)
}

// mockEntropy serves deterministic bytes and counts fetches.
type mockEntropy struct {
	fetches int
	served  int
	err     error
}

func (m *mockEntropy) Fetch(_ context.Context, n int) ([]byte, error) {
	m.fetches++
	if m.err != nil {
		return nil, m.err
	}
	m.served += n
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i % 251)
	}
	return buf, nil
}

// countingRecorder tallies recorder events.
type countingRecorder struct {
	initiated, refills, reserved, consumed, expired int
}

func (r *countingRecorder) SessionInitiated(bool) { r.initiated++ }
func (r *countingRecorder) BufferRefilled(n int)  { r.refills += n }
func (r *countingRecorder) ChunkReserved(n int)   { r.reserved += n }
func (r *countingRecorder) ChunkConsumed(n int)   { r.consumed += n }
func (r *countingRecorder) SessionsExpired(n int) { r.expired += n }

// newTestService wires a SessionService over mocks with both test users
// already present.
func newTestService(t *testing.T, cfg SessionConfig) (*SessionService, *mockSessionRepo, *mockEntropy, *countingRecorder) {
	t.Helper()
	ctx := context.Background()

	presenceRepo := newMockPresenceRepo()
	presence := NewPresenceService(presenceRepo)
	for _, u := range []string{"alice@example.com", "bob@example.com"} {
		if _, err := presence.Heartbeat(ctx, &HeartbeatRequest{UserID: u}); err != nil {
			t.Fatalf("Heartbeat(%q): %v", u, err)
		}
	}

	repo := newMockSessionRepo()
	ent := &mockEntropy{}
	rec := &countingRecorder{}
	return NewSessionService(repo, presence, ent, cfg, rec), repo, ent, rec
}

func TestInitiate(t *testing.T) {
	svc, _, ent, rec := newTestService(t, SessionConfig{DefaultTargetBytes: 256, MaxBufferBytes: 1024})
	ctx := context.Background()

	resp, err := svc.Initiate(ctx, &InitiateRequest{UserA: "alice@example.com", UserB: "bob@example.com"})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if !resp.Created {
		t.Error("first Initiate did not create")
	}
	if resp.Status.TotalBytes != 256 {
		t.Errorf("TotalBytes = %d, want the configured target 256", resp.Status.TotalBytes)
	}
	if ent.served != 256 {
		t.Errorf("entropy served %d bytes, want 256", ent.served)
	}
	if rec.initiated != 1 {
		t.Errorf("recorder saw %d initiations, want 1", rec.initiated)
	}
}

func TestInitiateIdempotent(t *testing.T) {
	svc, _, ent, _ := newTestService(t, SessionConfig{DefaultTargetBytes: 64})
	ctx := context.Background()

	first, err := svc.Initiate(ctx, &InitiateRequest{UserA: "alice@example.com", UserB: "bob@example.com"})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	// Reversed order targets the same pair.
	second, err := svc.Initiate(ctx, &InitiateRequest{UserA: "bob@example.com", UserB: "alice@example.com"})
	if err != nil {
		t.Fatalf("second Initiate: %v", err)
	}
	if second.Created {
		t.Error("second Initiate created a duplicate session")
	}
	if second.Status.SessionID != first.Status.SessionID {
		t.Errorf("second Initiate returned %q, want %q", second.Status.SessionID, first.Status.SessionID)
	}
	if ent.fetches != 1 {
		t.Errorf("entropy fetched %d times, want 1: the fast path must not draw material", ent.fetches)
	}
}

func TestInitiateRequiresPresence(t *testing.T) {
	svc, _, _, _ := newTestService(t, SessionConfig{})
	ctx := context.Background()

	_, err := svc.Initiate(ctx, &InitiateRequest{UserA: "alice@example.com", UserB: "ghost@example.com"})
	if !errors.Is(err, domain.ErrPeerNotPresent) {
		t.Errorf("err = %v, want ErrPeerNotPresent", err)
	}
}

func TestInitiateValidation(t *testing.T) {
	svc, _, _, _ := newTestService(t, SessionConfig{})
	ctx := context.Background()

	if _, err := svc.Initiate(ctx, &InitiateRequest{UserA: "alice@example.com"}); !errors.Is(err, domain.ErrMissingArgument) {
		t.Errorf("missing user: err = %v, want ErrMissingArgument", err)
	}
	if _, err := svc.Initiate(ctx, &InitiateRequest{UserA: "a@x", UserB: "a@x"}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("same user: err = %v, want ErrInvalidArgument", err)
	}
}

func TestInitiateEntropyFailure(t *testing.T) {
	svc, repo, ent, _ := newTestService(t, SessionConfig{})
	ent.err = domain.ErrEntropyUnavailable
	ctx := context.Background()

	_, err := svc.Initiate(ctx, &InitiateRequest{UserA: "alice@example.com", UserB: "bob@example.com"})
	if !errors.Is(err, domain.ErrEntropyUnavailable) {
		t.Errorf("err = %v, want ErrEntropyUnavailable", err)
	}
	if repo.Count(ctx) != 0 {
		t.Error("failed initiation left a session behind")
	}
}

func TestGetPairAbsent(t *testing.T) {
	svc, _, _, _ := newTestService(t, SessionConfig{})

	status, err := svc.GetPair(context.Background(), "alice@example.com", "bob@example.com")
	if err != nil {
		t.Fatalf("GetPair: %v", err)
	}
	if status != nil {
		t.Errorf("GetPair = %+v, want nil for an absent pair", status)
	}
}

func TestRefill(t *testing.T) {
	svc, _, ent, rec := newTestService(t, SessionConfig{DefaultTargetBytes: 100, MaxBufferBytes: 1000})
	ctx := context.Background()

	resp, err := svc.Initiate(ctx, &InitiateRequest{UserA: "alice@example.com", UserB: "bob@example.com", InitialBytes: 40})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	expiryBefore := resp.Status.ExpiresAt

	time.Sleep(2 * time.Millisecond)
	refill, err := svc.Refill(ctx, &RefillRequest{UserA: "alice@example.com", UserB: "bob@example.com", TargetBytes: 100})
	if err != nil {
		t.Fatalf("Refill: %v", err)
	}
	if refill.AddedBytes != 60 {
		t.Errorf("AddedBytes = %d, want 60", refill.AddedBytes)
	}
	if refill.EstimatedTarget != 100 {
		t.Errorf("EstimatedTarget = %d, want 100", refill.EstimatedTarget)
	}
	if refill.Status.TotalBytes != 100 {
		t.Errorf("TotalBytes = %d, want 100", refill.Status.TotalBytes)
	}
	if refill.Status.ExpiresAt <= expiryBefore {
		t.Error("growth did not extend the session expiry")
	}
	if ent.served != 40+60 {
		t.Errorf("entropy served %d bytes, want 100", ent.served)
	}
	if rec.refills != 60 {
		t.Errorf("recorder saw %d refilled bytes, want 60", rec.refills)
	}
}

func TestRefillNoOpAndCap(t *testing.T) {
	svc, _, _, _ := newTestService(t, SessionConfig{DefaultTargetBytes: 100, MaxBufferBytes: 100})
	ctx := context.Background()

	if _, err := svc.Initiate(ctx, &InitiateRequest{UserA: "alice@example.com", UserB: "bob@example.com", InitialBytes: 100}); err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	// Target below current size is a silent no-op.
	refill, err := svc.Refill(ctx, &RefillRequest{UserA: "alice@example.com", UserB: "bob@example.com", TargetBytes: 50})
	if err != nil {
		t.Fatalf("no-op Refill: %v", err)
	}
	if refill.AddedBytes != 0 {
		t.Errorf("AddedBytes = %d, want 0", refill.AddedBytes)
	}

	// Asking past the cap while at the cap is the one error case.
	_, err = svc.Refill(ctx, &RefillRequest{UserA: "alice@example.com", UserB: "bob@example.com", TargetBytes: 200})
	if !errors.Is(err, domain.ErrBufferCapExceeded) {
		t.Errorf("over-cap Refill: err = %v, want ErrBufferCapExceeded", err)
	}
}

func TestRefillTargetClampedToCap(t *testing.T) {
	svc, _, _, _ := newTestService(t, SessionConfig{DefaultTargetBytes: 50, MaxBufferBytes: 80})
	ctx := context.Background()

	if _, err := svc.Initiate(ctx, &InitiateRequest{UserA: "alice@example.com", UserB: "bob@example.com", InitialBytes: 50}); err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	refill, err := svc.Refill(ctx, &RefillRequest{UserA: "alice@example.com", UserB: "bob@example.com", TargetBytes: 500})
	if err != nil {
		t.Fatalf("Refill: %v", err)
	}
	if refill.AddedBytes != 30 {
		t.Errorf("AddedBytes = %d, want 30 (clamped to the 80-byte cap)", refill.AddedBytes)
	}
	if refill.Status.TotalBytes != 80 {
		t.Errorf("TotalBytes = %d, want 80", refill.Status.TotalBytes)
	}
}

func TestRefillCreatesMissingSession(t *testing.T) {
	svc, repo, ent, _ := newTestService(t, SessionConfig{DefaultTargetBytes: 64, MaxBufferBytes: 1024})
	ctx := context.Background()

	refill, err := svc.Refill(ctx, &RefillRequest{UserA: "alice@example.com", UserB: "bob@example.com", TargetBytes: 128})
	if err != nil {
		t.Fatalf("Refill: %v", err)
	}
	if refill.Status == nil || refill.Status.TotalBytes != 128 {
		t.Fatalf("status = %+v, want a fresh 128-byte session", refill.Status)
	}
	if refill.AddedBytes != 128 {
		t.Errorf("AddedBytes = %d, want 128 for a fresh session", refill.AddedBytes)
	}
	if repo.Count(ctx) != 1 {
		t.Errorf("sessions = %d, want 1", repo.Count(ctx))
	}
	if ent.served != 128 {
		t.Errorf("entropy served %d bytes, want 128", ent.served)
	}
}

func TestRefillRequiresPresence(t *testing.T) {
	svc, _, _, _ := newTestService(t, SessionConfig{DefaultTargetBytes: 64})
	ctx := context.Background()

	_, err := svc.Refill(ctx, &RefillRequest{UserA: "alice@example.com", UserB: "ghost@example.com", TargetBytes: 64})
	if !errors.Is(err, domain.ErrPeerNotPresent) {
		t.Errorf("err = %v, want ErrPeerNotPresent", err)
	}
}

func TestReserveAndReadChunk(t *testing.T) {
	svc, _, _, rec := newTestService(t, SessionConfig{DefaultTargetBytes: 64})
	ctx := context.Background()

	resp, err := svc.Initiate(ctx, &InitiateRequest{UserA: "alice@example.com", UserB: "bob@example.com", InitialBytes: 64})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	id := resp.Status.SessionID

	ticket, err := svc.ReserveChunk(ctx, &ReserveChunkRequest{SessionID: id, UserID: "alice@example.com", Length: 32})
	if err != nil {
		t.Fatalf("ReserveChunk: %v", err)
	}
	if ticket.Offset != 0 || ticket.Length != 32 {
		t.Errorf("ticket = %+v, want offset 0 length 32", ticket)
	}

	// The other party reads the same range back.
	chunk, err := svc.ReadChunk(ctx, &ReadChunkRequest{SessionID: id, UserID: "bob@example.com", Offset: ticket.Offset, Length: ticket.Length})
	if err != nil {
		t.Fatalf("ReadChunk: %v", err)
	}
	if len(chunk) != 32 {
		t.Errorf("chunk len = %d, want 32", len(chunk))
	}
	if rec.reserved != 32 || rec.consumed != 32 {
		t.Errorf("recorder = %d reserved / %d consumed, want 32/32", rec.reserved, rec.consumed)
	}
}

func TestChunkOperationsRejectNonParty(t *testing.T) {
	svc, _, _, _ := newTestService(t, SessionConfig{DefaultTargetBytes: 64})
	ctx := context.Background()

	resp, err := svc.Initiate(ctx, &InitiateRequest{UserA: "alice@example.com", UserB: "bob@example.com"})
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	id := resp.Status.SessionID

	_, err = svc.ReserveChunk(ctx, &ReserveChunkRequest{SessionID: id, UserID: "mallory@example.com", Length: 8})
	if !errors.Is(err, domain.ErrNotSessionParty) {
		t.Errorf("ReserveChunk by stranger: err = %v, want ErrNotSessionParty", err)
	}
	_, err = svc.ReadChunk(ctx, &ReadChunkRequest{SessionID: id, UserID: "mallory@example.com", Length: 8})
	if !errors.Is(err, domain.ErrNotSessionParty) {
		t.Errorf("ReadChunk by stranger: err = %v, want ErrNotSessionParty", err)
	}
}

func TestChunkOperationsOnMissingSession(t *testing.T) {
	svc, _, _, _ := newTestService(t, SessionConfig{})
	ctx := context.Background()

	_, err := svc.ReserveChunk(ctx, &ReserveChunkRequest{SessionID: "qmss-missing", UserID: "alice@example.com", Length: 8})
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestGC(t *testing.T) {
	svc, repo, _, rec := newTestService(t, SessionConfig{SessionTTL: time.Millisecond, DefaultTargetBytes: 16})
	ctx := context.Background()

	if _, err := svc.Initiate(ctx, &InitiateRequest{UserA: "alice@example.com", UserB: "bob@example.com"}); err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if n := svc.GC(ctx); n != 1 {
		t.Errorf("GC = %d, want 1", n)
	}
	if repo.Count(ctx) != 0 {
		t.Errorf("Count = %d after GC, want 0", repo.Count(ctx))
	}
	if rec.expired != 1 {
		t.Errorf("recorder saw %d expirations, want 1", rec.expired)
	}
}
