package config

import "time"

// ServerConfig is the root configuration for qumail-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	QKD     QKDSection     `koanf:"qkd"`
	Entropy EntropySection `koanf:"entropy"`
	Pool    PoolSection    `koanf:"pool"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures the HTTP endpoint.
type ServerSection struct {
	Addr string `koanf:"addr"`

	// ReadTimeout/WriteTimeout bound request handling.
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown on SIGTERM.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RateLimitRPS throttles per-client request rates; 0 disables.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
}

// QKDSection configures presence and session lifecycles.
type QKDSection struct {
	// PresenceTTL is how long a heartbeat keeps a user active.
	PresenceTTL time.Duration `koanf:"presence_ttl"`

	// SessionTTL is how long a session lives without refills.
	SessionTTL time.Duration `koanf:"session_ttl"`

	// MaxBufferBytes caps each session's key buffer.
	MaxBufferBytes int `koanf:"max_buffer_bytes"`

	// TargetBufferBytes is the size initiate and refill aim for by
	// default.
	TargetBufferBytes int `koanf:"target_buffer_bytes"`

	// SweepInterval is how often expired sessions and stale presence
	// records are removed.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// EntropySection configures the quantum entropy source.
type EntropySection struct {
	// URL is the quantum service endpoint. Empty disables the source
	// and serves everything from the CSPRNG fallback.
	URL string `koanf:"url"`

	// MaxRequestBytes is the upstream per-request byte limit.
	MaxRequestBytes int `koanf:"max_request_bytes"`

	// Timeout bounds each upstream HTTP request.
	Timeout time.Duration `koanf:"timeout"`
}

// PoolSection configures the local key pool served to clients.
type PoolSection struct {
	BatchSize int `koanf:"batch_size"`
	KeyBytes  int `koanf:"key_bytes"`
	MaxKeys   int `koanf:"max_keys"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
