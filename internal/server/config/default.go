package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr        = "127.0.0.1:8000"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRateLimitRPS    = 50.0
	DefaultRateLimitBurst  = 100

	DefaultPresenceTTL       = 60 * time.Second
	DefaultSessionTTL        = time.Hour
	DefaultMaxBufferBytes    = 128 << 20 // 128 MiB
	DefaultTargetBufferBytes = 100 << 20 // 100 MiB
	DefaultSweepInterval     = 30 * time.Second

	DefaultEntropyURL      = "https://qrng.anu.edu.au/API/jsonI.php"
	DefaultEntropyMaxBytes = 1024
	DefaultEntropyTimeout  = 5 * time.Second

	DefaultPoolBatchSize = 8
	DefaultPoolKeyBytes  = 4096
	DefaultPoolMaxKeys   = 64

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Addr:            DefaultHTTPAddr,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			RateLimitRPS:    DefaultRateLimitRPS,
			RateLimitBurst:  DefaultRateLimitBurst,
		},
		QKD: QKDSection{
			PresenceTTL:       DefaultPresenceTTL,
			SessionTTL:        DefaultSessionTTL,
			MaxBufferBytes:    DefaultMaxBufferBytes,
			TargetBufferBytes: DefaultTargetBufferBytes,
			SweepInterval:     DefaultSweepInterval,
		},
		Entropy: EntropySection{
			URL:             DefaultEntropyURL,
			MaxRequestBytes: DefaultEntropyMaxBytes,
			Timeout:         DefaultEntropyTimeout,
		},
		Pool: PoolSection{
			BatchSize: DefaultPoolBatchSize,
			KeyBytes:  DefaultPoolKeyBytes,
			MaxKeys:   DefaultPoolMaxKeys,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
