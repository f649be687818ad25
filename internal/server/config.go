package server

import (
	"fmt"
	"time"
)

// Config holds the server configuration.
type Config struct {
	Host            string          `mapstructure:"host"`
	Port            int             `mapstructure:"port"`
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"` // Must outlast a full fallback sequence.
	IdleTimeout     time.Duration   `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
	// TrustedProxies lists addresses or CIDR blocks whose X-Forwarded-For
	// header is believed. Empty means the TCP peer is always the client.
	TrustedProxies  []string        `mapstructure:"trusted_proxies"`
}

// RateLimitConfig configures the per-IP token bucket.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// DefaultConfig returns the server defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    3 * time.Minute,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		RateLimit:       RateLimitConfig{RPS: 1, Burst: 5},
		TrustedProxies:  []string{},
	}
}

// Validate reports unusable settings.
func (c *Config) Validate() error {
	_, err := parseTrustedProxies(c.TrustedProxies)
	return err
}

// Addr returns the listen address as host:port.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
