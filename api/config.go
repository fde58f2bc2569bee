package api

import (
	"errors"
	"net"
	"strconv"
	"time"
)

// Config holds HTTP server settings.
type Config struct {
	Host string
	Port int

	// RequestTimeout bounds each request end to end. Zero disables it.
	RequestTimeout time.Duration

	// RateLimitRequests per RateLimitWindow are allowed per client IP.
	// Zero disables rate limiting.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// CORSAllowedOrigins lists origins allowed to call the API.
	CORSAllowedOrigins []string

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the settings used when none are given.
func DefaultConfig() *Config {
	return &Config{
		Host:               "0.0.0.0",
		Port:               8000,
		RequestTimeout:     60 * time.Second,
		RateLimitRequests:  60,
		RateLimitWindow:    time.Minute,
		CORSAllowedOrigins: []string{"*"},
		ShutdownTimeout:    10 * time.Second,
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.New("api config: Port must be between 0 and 65535")
	}
	if c.RequestTimeout < 0 {
		return errors.New("api config: RequestTimeout cannot be negative")
	}
	if c.RateLimitRequests < 0 {
		return errors.New("api config: RateLimitRequests cannot be negative")
	}
	if c.RateLimitRequests > 0 && c.RateLimitWindow <= 0 {
		return errors.New("api config: RateLimitWindow must be positive when rate limiting")
	}
	return nil
}
