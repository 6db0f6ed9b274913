package logger

import (
	"log/slog"
	"strings"
)

// Keys whose values carry or derive from raw key material. Matched as
// substrings, case-insensitive.
var sensitiveKeyPatterns = []string{
	"material",
	"chunk_data",
	"key_bytes",
	"secret",
	"password",
	"token",
}

// redactedValue replaces sensitive data in log output.
const redactedValue = "***REDACTED***"

// redactSensitive rewrites attributes that would leak key material.
// Byte-slice values under a sensitive key are dropped entirely; strings
// are replaced by the placeholder.
func redactSensitive(a slog.Attr) slog.Attr {
	if IsSensitiveKey(a.Key) {
		switch a.Value.Kind() {
		case slog.KindString:
			if a.Value.String() != "" {
				return slog.String(a.Key, redactedValue)
			}
		case slog.KindAny:
			if b, ok := a.Value.Any().([]byte); ok && len(b) > 0 {
				return slog.String(a.Key, redactedValue)
			}
		}
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		redacted := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			redacted[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redacted...)}
	}

	return a
}

// IsSensitiveKey reports whether a key name suggests key material.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(k, pattern) {
			return true
		}
	}
	return false
}
