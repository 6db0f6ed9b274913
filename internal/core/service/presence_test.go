package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Vinuthna-Athimamula/QuMail/internal/core/domain"
)

// mockPresenceRepo is an in-memory PresenceRepository for testing.
type mockPresenceRepo struct {
	records map[string]*domain.PresenceRecord
	ttl     time.Duration
}

func newMockPresenceRepo() *mockPresenceRepo {
	return &mockPresenceRepo{
		records: make(map[string]*domain.PresenceRecord),
		ttl:     time.Minute,
	}
}

func (m *mockPresenceRepo) Heartbeat(_ context.Context, userID, label string) (*domain.PresenceRecord, error) {
	if r, ok := m.records[userID]; ok {
		r.Seen(label)
		return r.Clone(), nil
	}
	r, err := domain.NewPresenceRecord(userID, label, m.ttl)
	if err != nil {
		return nil, err
	}
	m.records[r.UserID] = r
	return r.Clone(), nil
}

func (m *mockPresenceRepo) Get(_ context.Context, userID string) (*domain.PresenceRecord, bool) {
	r, ok := m.records[userID]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

func (m *mockPresenceRepo) IsActive(_ context.Context, userID string, now time.Time) bool {
	r, ok := m.records[userID]
	return ok && r.ActiveAt(now)
}

func (m *mockPresenceRepo) Snapshot(_ context.Context) []*domain.PresenceRecord {
	var out []*domain.PresenceRecord
	for _, r := range m.records {
		out = append(out, r.Clone())
	}
	return out
}

func (m *mockPresenceRepo) CleanupStale(_ context.Context, now time.Time, retain time.Duration) int {
	cutoff := now.Add(-retain).UnixMilli()
	n := 0
	for id, r := range m.records {
		if r.LastSeen < cutoff {
			delete(m.records, id)
			n++
		}
	}
	return n
}

func TestPresenceHeartbeat(t *testing.T) {
	svc := NewPresenceService(newMockPresenceRepo())
	ctx := context.Background()

	resp, err := svc.Heartbeat(ctx, &HeartbeatRequest{UserID: "alice@example.com", Label: "Alice"})
	if err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	if resp.UserID != "alice@example.com" || resp.Label != "Alice" {
		t.Errorf("resp = %+v", resp)
	}
	if !svc.IsActive(ctx, "alice@example.com") {
		t.Error("user inactive right after heartbeat")
	}
	if svc.IsActive(ctx, "nobody@example.com") {
		t.Error("unknown user reported active")
	}

	if _, err := svc.Heartbeat(ctx, &HeartbeatRequest{}); !errors.Is(err, domain.ErrMissingArgument) {
		t.Errorf("empty heartbeat: err = %v, want ErrMissingArgument", err)
	}
}

func TestPresenceSearch(t *testing.T) {
	repo := newMockPresenceRepo()
	svc := NewPresenceService(repo)
	ctx := context.Background()

	// Distinct heartbeats, oldest first.
	for _, u := range []struct{ id, label string }{
		{"alice@example.com", "Alice"},
		{"bob@example.com", "Bob"},
		{"carol@example.com", "Carol"},
	} {
		if _, err := svc.Heartbeat(ctx, &HeartbeatRequest{UserID: u.id, Label: u.label}); err != nil {
			t.Fatalf("Heartbeat(%q): %v", u.id, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	// Empty query returns everyone but the requester, most recent first.
	peers, err := svc.Search(ctx, &SearchRequest{Requester: "alice@example.com"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(peers) != 2 {
		t.Fatalf("len(peers) = %d, want 2", len(peers))
	}
	if peers[0].UserID != "carol@example.com" || peers[1].UserID != "bob@example.com" {
		t.Errorf("order = [%s %s], want most recent first", peers[0].UserID, peers[1].UserID)
	}

	// Substring query.
	peers, err = svc.Search(ctx, &SearchRequest{Requester: "alice@example.com", Query: "bo"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(peers) != 1 || peers[0].UserID != "bob@example.com" {
		t.Errorf("query match = %+v, want bob only", peers)
	}

	// Limit.
	peers, err = svc.Search(ctx, &SearchRequest{Requester: "", Limit: 1})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(peers) != 1 {
		t.Errorf("limited search len = %d, want 1", len(peers))
	}
}

func TestPresenceSearchActiveOnly(t *testing.T) {
	repo := newMockPresenceRepo()
	svc := NewPresenceService(repo)
	ctx := context.Background()

	for _, id := range []string{"bob@example.com", "carol@example.com"} {
		if _, err := svc.Heartbeat(ctx, &HeartbeatRequest{UserID: id}); err != nil {
			t.Fatalf("Heartbeat(%q): %v", id, err)
		}
	}
	// Age carol past the activity window.
	repo.records["carol@example.com"].LastSeen = time.Now().Add(-2 * time.Minute).UnixMilli()

	peers, err := svc.Search(ctx, &SearchRequest{Requester: "alice@example.com"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(peers) != 2 {
		t.Fatalf("len(peers) = %d, want 2", len(peers))
	}
	for _, p := range peers {
		wantOnline := p.UserID == "bob@example.com"
		if p.Online != wantOnline {
			t.Errorf("%s: online = %v, want %v", p.UserID, p.Online, wantOnline)
		}
	}

	peers, err = svc.Search(ctx, &SearchRequest{Requester: "alice@example.com", ActiveOnly: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(peers) != 1 || peers[0].UserID != "bob@example.com" {
		t.Errorf("active-only peers = %+v, want bob only", peers)
	}
}

func TestPresenceCountAndSweep(t *testing.T) {
	repo := newMockPresenceRepo()
	svc := NewPresenceService(repo)
	ctx := context.Background()

	if _, err := svc.Heartbeat(ctx, &HeartbeatRequest{UserID: "alice@example.com"}); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	if got := svc.CountActive(ctx); got != 1 {
		t.Errorf("CountActive = %d, want 1", got)
	}

	// A generous retention keeps everything.
	if got := svc.Sweep(ctx, time.Hour); got != 0 {
		t.Errorf("Sweep = %d, want 0", got)
	}
}
