package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyQKD(&cfg.QKD); err != nil {
		return err
	}
	if err := verifyEntropy(&cfg.Entropy); err != nil {
		return err
	}
	return verifyPool(&cfg.Pool)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.Addr == "" {
		return errors.New("server.addr is required")
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("server.addr %q is not host:port: %w", cfg.Addr, err)
	}
	if cfg.RateLimitRPS < 0 {
		return errors.New("server.rate_limit_rps must not be negative")
	}
	return nil
}

func verifyQKD(cfg *QKDSection) error {
	if cfg.PresenceTTL <= 0 {
		return errors.New("qkd.presence_ttl must be positive")
	}
	if cfg.SessionTTL <= 0 {
		return errors.New("qkd.session_ttl must be positive")
	}
	if cfg.MaxBufferBytes <= 0 {
		return errors.New("qkd.max_buffer_bytes must be positive")
	}
	if cfg.TargetBufferBytes <= 0 {
		return errors.New("qkd.target_buffer_bytes must be positive")
	}
	if cfg.TargetBufferBytes > cfg.MaxBufferBytes {
		return errors.New("qkd.target_buffer_bytes must not exceed qkd.max_buffer_bytes")
	}
	if cfg.SweepInterval <= 0 {
		return errors.New("qkd.sweep_interval must be positive")
	}
	return nil
}

func verifyEntropy(cfg *EntropySection) error {
	if cfg.URL != "" {
		u, err := url.Parse(cfg.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("entropy.url %q is not a valid URL", cfg.URL)
		}
	}
	if cfg.MaxRequestBytes <= 0 {
		return errors.New("entropy.max_request_bytes must be positive")
	}
	if cfg.Timeout <= 0 {
		return errors.New("entropy.timeout must be positive")
	}
	return nil
}

func verifyPool(cfg *PoolSection) error {
	if cfg.BatchSize <= 0 {
		return errors.New("pool.batch_size must be positive")
	}
	if cfg.KeyBytes <= 0 {
		return errors.New("pool.key_bytes must be positive")
	}
	if cfg.MaxKeys < cfg.BatchSize {
		return errors.New("pool.max_keys must be at least pool.batch_size")
	}
	return nil
}
