package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewPresenceRecord(t *testing.T) {
	r, err := NewPresenceRecord("  alice@example.com ", "Alice", 0)
	if err != nil {
		t.Fatalf("NewPresenceRecord failed: %v", err)
	}
	if r.UserID != "alice@example.com" {
		t.Errorf("UserID = %q, want trimmed", r.UserID)
	}
	if r.Label != "Alice" {
		t.Errorf("Label = %q, want Alice", r.Label)
	}
	if r.TTL != DefaultPresenceTTL {
		t.Errorf("TTL = %v, want default %v", r.TTL, DefaultPresenceTTL)
	}

	// Label defaults to the user ID.
	r, err = NewPresenceRecord("bob@example.com", "", 0)
	if err != nil {
		t.Fatalf("NewPresenceRecord failed: %v", err)
	}
	if r.Label != "bob@example.com" {
		t.Errorf("Label = %q, want user ID fallback", r.Label)
	}
}

func TestNewPresenceRecordValidation(t *testing.T) {
	if _, err := NewPresenceRecord("", "x", 0); !errors.Is(err, ErrMissingArgument) {
		t.Errorf("empty user ID: err = %v, want ErrMissingArgument", err)
	}
	if _, err := NewPresenceRecord(strings.Repeat("a", MaxUserIDLength+1), "", 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("oversized user ID: err = %v, want ErrInvalidArgument", err)
	}
	if _, err := NewPresenceRecord("ok@example.com", strings.Repeat("b", MaxLabelLength+1), 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("oversized label: err = %v, want ErrInvalidArgument", err)
	}
}

func TestPresenceActiveAt(t *testing.T) {
	r, err := NewPresenceRecord("alice@example.com", "", 60*time.Second)
	if err != nil {
		t.Fatalf("NewPresenceRecord failed: %v", err)
	}

	seen := r.LastSeenTime()
	if !r.ActiveAt(seen.Add(30 * time.Second)) {
		t.Error("record inactive inside its TTL")
	}
	if r.ActiveAt(seen.Add(61 * time.Second)) {
		t.Error("record active past its TTL")
	}

	r.Seen("Alice B")
	if r.Label != "Alice B" {
		t.Errorf("Seen did not update label: %q", r.Label)
	}
	if !r.ActiveAt(time.Now()) {
		t.Error("record inactive right after heartbeat")
	}
}

func TestPresenceMatches(t *testing.T) {
	r, err := NewPresenceRecord("alice@example.com", "Quantum Alice", 0)
	if err != nil {
		t.Fatalf("NewPresenceRecord failed: %v", err)
	}

	for _, q := range []string{"", "ALICE", "example.com", "quantum"} {
		if !r.Matches(q) {
			t.Errorf("Matches(%q) = false, want true", q)
		}
	}
	if r.Matches("bob") {
		t.Error("Matches(bob) = true, want false")
	}
}

func TestPresenceClone(t *testing.T) {
	r, err := NewPresenceRecord("alice@example.com", "Alice", 0)
	if err != nil {
		t.Fatalf("NewPresenceRecord failed: %v", err)
	}
	c := r.Clone()
	c.Label = "changed"
	if r.Label != "Alice" {
		t.Error("mutating the clone changed the original")
	}
}
