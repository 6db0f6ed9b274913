package memory

import (
	"context"
	"time"

	"github.com/Vinuthna-Athimamula/QuMail/internal/core/domain"
	"github.com/Vinuthna-Athimamula/QuMail/pkg/cmap"
)

// PresenceStore holds heartbeat records keyed by user ID.
//
// Records are never required to be deleted for correctness: activity is
// computed against the TTL at read time. CleanupStale exists only to
// bound memory on long-running servers.
type PresenceStore struct {
	records *cmap.Map[*domain.PresenceRecord]
	ttl     time.Duration
}

// NewPresenceStore creates a presence store with the given activity TTL.
// A non-positive ttl falls back to the domain default.
func NewPresenceStore(ttl time.Duration) *PresenceStore {
	if ttl <= 0 {
		ttl = domain.DefaultPresenceTTL
	}
	return &PresenceStore{
		records: cmap.New[*domain.PresenceRecord](),
		ttl:     ttl,
	}
}

// Heartbeat upserts the record for userID, refreshing LastSeen. The
// upsert runs under the shard lock so racing heartbeats cannot lose a
// label update.
func (s *PresenceStore) Heartbeat(_ context.Context, userID, label string) (*domain.PresenceRecord, error) {
	fresh, err := domain.NewPresenceRecord(userID, label, s.ttl)
	if err != nil {
		return nil, err
	}

	stored := s.records.Upsert(fresh.UserID, func(cur *domain.PresenceRecord, ok bool) *domain.PresenceRecord {
		if !ok {
			return fresh
		}
		cur.Seen(label)
		return cur
	})
	return stored.Clone(), nil
}

// Get returns a copy of the record for userID, whether or not it is
// still active.
func (s *PresenceStore) Get(_ context.Context, userID string) (*domain.PresenceRecord, bool) {
	r, ok := s.records.Get(userID)
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// IsActive reports whether userID has a heartbeat within the TTL.
func (s *PresenceStore) IsActive(_ context.Context, userID string, now time.Time) bool {
	r, ok := s.records.Get(userID)
	return ok && r.ActiveAt(now)
}

// Snapshot returns copies of all stored records, stale ones included.
// Activity is judged by the caller against its own instant.
func (s *PresenceStore) Snapshot(_ context.Context) []*domain.PresenceRecord {
	var out []*domain.PresenceRecord
	s.records.Range(func(_ string, r *domain.PresenceRecord) bool {
		out = append(out, r.Clone())
		return true
	})
	return out
}

// CleanupStale deletes records whose heartbeat is older than retain and
// returns how many were removed. retain should be well beyond the TTL so
// a briefly-offline user's label survives.
func (s *PresenceStore) CleanupStale(_ context.Context, now time.Time, retain time.Duration) int {
	cutoff := now.Add(-retain).UnixMilli()

	var stale []string
	s.records.Range(func(id string, r *domain.PresenceRecord) bool {
		if r.LastSeen < cutoff {
			stale = append(stale, id)
		}
		return true
	})

	removed := 0
	for _, id := range stale {
		if r, ok := s.records.Get(id); ok && r.LastSeen < cutoff {
			s.records.Delete(id)
			removed++
		}
	}
	return removed
}

// Count returns the number of stored records, stale ones included.
func (s *PresenceStore) Count(_ context.Context) int {
	return s.records.Count()
}
