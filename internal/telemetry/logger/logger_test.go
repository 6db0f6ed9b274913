package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.Info("session created", "session_id", "qmss-x", "bytes", 64)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "session created" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["session_id"] != "qmss-x" {
		t.Errorf("session_id = %v", entry["session_id"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "warn", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %s", buf.String())
	}

	l.Warn("kept")
	if buf.Len() == 0 {
		t.Error("warn not logged at warn level")
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.Debug("dropped")
	if buf.Len() != 0 {
		t.Error("debug logged at info level")
	}

	SetLevel("debug")
	defer SetLevel("info")
	l.Debug("kept")
	if buf.Len() == 0 {
		t.Error("debug not logged after SetLevel(debug)")
	}
}

func TestRedaction(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.Info("issued", "key_material", "deadbeef", "session_id", "qmss-x")

	out := buf.String()
	if strings.Contains(out, "deadbeef") {
		t.Errorf("key material leaked: %s", out)
	}
	if !strings.Contains(out, redactedValue) {
		t.Errorf("no redaction placeholder: %s", out)
	}
	if !strings.Contains(out, "qmss-x") {
		t.Errorf("non-sensitive field was redacted: %s", out)
	}
}

func TestIsSensitiveKey(t *testing.T) {
	for _, key := range []string{"key_material", "chunk_data", "Token", "client_secret"} {
		if !IsSensitiveKey(key) {
			t.Errorf("IsSensitiveKey(%q) = false", key)
		}
	}
	for _, key := range []string{"session_id", "user_id", "offset"} {
		if IsSensitiveKey(key) {
			t.Errorf("IsSensitiveKey(%q) = true", key)
		}
	}
}

func TestContextRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("RequestIDFromContext = %q", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("empty context returned %q", got)
	}

	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx = WithLogger(ctx, l)

	L(ctx).Info("tagged")
	if !strings.Contains(buf.String(), "req-123") {
		t.Errorf("request id not propagated: %s", buf.String())
	}
}
