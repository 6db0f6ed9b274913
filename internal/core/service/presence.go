package service

import (
	"context"
	"sort"
	"time"

	"github.com/Vinuthna-Athimamula/QuMail/internal/core/domain"
)

// PresenceRepository defines the storage interface for presence records.
type PresenceRepository interface {
	// Heartbeat upserts the record for userID and returns a copy.
	Heartbeat(ctx context.Context, userID, label string) (*domain.PresenceRecord, error)

	// Get returns a copy of the record for userID, active or not.
	Get(ctx context.Context, userID string) (*domain.PresenceRecord, bool)

	// IsActive reports whether userID has a heartbeat within the TTL.
	IsActive(ctx context.Context, userID string, now time.Time) bool

	// Snapshot returns copies of all stored records, stale ones
	// included.
	Snapshot(ctx context.Context) []*domain.PresenceRecord

	// CleanupStale removes records whose heartbeat is older than retain.
	CleanupStale(ctx context.Context, now time.Time, retain time.Duration) int
}

// PresenceService tracks which users currently have a live client.
type PresenceService struct {
	repo PresenceRepository
}

// NewPresenceService creates a PresenceService.
func NewPresenceService(repo PresenceRepository) *PresenceService {
	return &PresenceService{repo: repo}
}

// ============================================================================
// Heartbeat Operation
// ============================================================================

// HeartbeatRequest contains parameters for a presence heartbeat.
type HeartbeatRequest struct {
	UserID string // Required
	Label  string // Optional display name, defaults to UserID
}

// HeartbeatResponse reports the refreshed record.
type HeartbeatResponse struct {
	UserID   string
	Label    string
	LastSeen int64 // Unix MS
}

// Heartbeat refreshes the caller's presence.
func (s *PresenceService) Heartbeat(ctx context.Context, req *HeartbeatRequest) (*HeartbeatResponse, error) {
	if req.UserID == "" {
		return nil, domain.ErrMissingArgument.WithDetails("user_id is required")
	}

	record, err := s.repo.Heartbeat(ctx, req.UserID, req.Label)
	if err != nil {
		return nil, err
	}
	return &HeartbeatResponse{
		UserID:   record.UserID,
		Label:    record.Label,
		LastSeen: record.LastSeen,
	}, nil
}

// ============================================================================
// Peer Search Operation
// ============================================================================

// PeerInfo describes one peer in a search result.
type PeerInfo struct {
	UserID   string `json:"user_id"`
	Label    string `json:"label"`
	LastSeen int64  `json:"last_seen"`
	Online   bool   `json:"online"`
}

// SearchRequest contains parameters for a peer search.
type SearchRequest struct {
	Requester  string // Excluded from results
	Query      string // Case-insensitive substring; empty matches all
	ActiveOnly bool   // Drop peers without a heartbeat within the TTL
	Limit      int    // Optional, 0 means unlimited
}

// Search lists peers matching the query, most recently seen first. The
// requester never appears in their own results.
func (s *PresenceService) Search(ctx context.Context, req *SearchRequest) ([]*PeerInfo, error) {
	records := s.repo.Snapshot(ctx)
	now := time.Now()

	peers := make([]*PeerInfo, 0, len(records))
	for _, r := range records {
		if r.UserID == req.Requester || !r.Matches(req.Query) {
			continue
		}
		online := r.ActiveAt(now)
		if req.ActiveOnly && !online {
			continue
		}
		peers = append(peers, &PeerInfo{
			UserID:   r.UserID,
			Label:    r.Label,
			LastSeen: r.LastSeen,
			Online:   online,
		})
	}

	sort.Slice(peers, func(i, j int) bool {
		return peers[i].LastSeen > peers[j].LastSeen
	})

	if req.Limit > 0 && len(peers) > req.Limit {
		peers = peers[:req.Limit]
	}
	return peers, nil
}

// ============================================================================
// Activity Checks
// ============================================================================

// IsActive reports whether userID is currently present.
func (s *PresenceService) IsActive(ctx context.Context, userID string) bool {
	return s.repo.IsActive(ctx, userID, time.Now())
}

// CountActive returns the number of currently active users.
func (s *PresenceService) CountActive(ctx context.Context) int {
	now := time.Now()
	n := 0
	for _, r := range s.repo.Snapshot(ctx) {
		if r.ActiveAt(now) {
			n++
		}
	}
	return n
}

// Sweep drops records stale for longer than retain. Returns the number
// removed.
func (s *PresenceService) Sweep(ctx context.Context, retain time.Duration) int {
	return s.repo.CleanupStale(ctx, time.Now(), retain)
}
