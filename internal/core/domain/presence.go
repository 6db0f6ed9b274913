package domain

import (
	"strings"
	"time"
)

// Presence constraints and defaults.
const (
	MaxUserIDLength = 128
	MaxLabelLength  = 256

	// DefaultPresenceTTL is how long a heartbeat keeps a user active.
	DefaultPresenceTTL = 60 * time.Second
)

// PresenceRecord marks a user as currently active. Records are upserted on
// every heartbeat; staleness is computed at read time against the TTL, so
// no hard delete is required for correctness.
type PresenceRecord struct {
	// UserID identifies the user. Opaque; supplied by the identity layer.
	UserID string `json:"user_id"`

	// Label is the human-readable name shown in peer search results.
	// Defaults to the user ID.
	Label string `json:"label"`

	// LastSeen is the timestamp of the most recent heartbeat (Unix ms).
	LastSeen int64 `json:"last_seen"`

	// TTL is how long after LastSeen the record counts as active.
	TTL time.Duration `json:"-"`
}

// NewPresenceRecord creates a record with LastSeen set to now.
func NewPresenceRecord(userID, label string, ttl time.Duration) (*PresenceRecord, error) {
	r := &PresenceRecord{
		UserID:   strings.TrimSpace(userID),
		Label:    strings.TrimSpace(label),
		LastSeen: time.Now().UnixMilli(),
		TTL:      ttl,
	}
	if r.Label == "" {
		r.Label = r.UserID
	}
	if r.TTL <= 0 {
		r.TTL = DefaultPresenceTTL
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the record fields against constraints.
func (r *PresenceRecord) Validate() error {
	if r.UserID == "" {
		return ErrMissingArgument.WithDetails("user_id is required")
	}
	if len(r.UserID) > MaxUserIDLength {
		return ErrInvalidArgument.WithDetails("user_id exceeds 128 characters")
	}
	if len(r.Label) > MaxLabelLength {
		return ErrInvalidArgument.WithDetails("label exceeds 256 characters")
	}
	return nil
}

// Seen refreshes LastSeen to now and optionally updates the label.
func (r *PresenceRecord) Seen(label string) {
	r.LastSeen = time.Now().UnixMilli()
	if label = strings.TrimSpace(label); label != "" {
		r.Label = label
	}
}

// ActiveAt reports whether the record is live at the given instant.
func (r *PresenceRecord) ActiveAt(now time.Time) bool {
	return now.UnixMilli()-r.LastSeen <= r.TTL.Milliseconds()
}

// LastSeenTime returns LastSeen as time.Time.
func (r *PresenceRecord) LastSeenTime() time.Time {
	return time.UnixMilli(r.LastSeen)
}

// Matches reports whether query is a case-insensitive substring of the
// user ID or label. An empty query matches everything.
func (r *PresenceRecord) Matches(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(r.UserID), q) ||
		strings.Contains(strings.ToLower(r.Label), q)
}

// Clone returns a copy of the record.
func (r *PresenceRecord) Clone() *PresenceRecord {
	clone := *r
	return &clone
}
