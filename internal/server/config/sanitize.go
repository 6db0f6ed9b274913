package config

import "strings"

// Sanitize returns a copy of the config safe to log. The only field that
// can carry a credential is the entropy URL, which may embed an API key
// in its query string.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	sanitized.Entropy.URL = maskURLQuery(sanitized.Entropy.URL)
	return &sanitized
}

// maskURLQuery drops everything after '?' from a URL.
func maskURLQuery(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i] + "?***"
	}
	return u
}
