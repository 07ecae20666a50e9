package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching is
// disabled.  Methods lists the HTTP methods to cache (e.g. GET, HEAD).
// TTL bounds the lifetime of an entry even when no write invalidates it.
type CacheConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MethodList   string        `koanf:"methods"`
	TTL          time.Duration `koanf:"ttl"`
	KeyStrategy  string        `koanf:"key_strategy"`
	Prefix       string        `koanf:"prefix"`
	MaxBodyBytes int           `koanf:"max_body_bytes"`

	Methods map[string]bool `koanf:"-"`
}

// IdempotencyConfig controls replay of POST /bookings by Idempotency-Key.
type IdempotencyConfig struct {
	Enabled bool          `koanf:"enabled"`
	TTL     time.Duration `koanf:"ttl"`
	Prefix  string        `koanf:"prefix"`
}

func (c *CacheConfig) applyDefaults() {
	if c.MethodList == "" {
		c.MethodList = "GET"
	}
	c.Methods = parseMethods(c.MethodList)
	if c.TTL <= 0 {
		c.TTL = 30 * time.Second
	}
	if c.KeyStrategy == "" {
		c.KeyStrategy = "route_query"
	}
	if c.Prefix == "" {
		c.Prefix = "cache"
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 1 << 20
	}
}

func (c *IdempotencyConfig) applyDefaults() {
	if c.TTL <= 0 {
		c.TTL = 24 * time.Hour
	}
	if c.Prefix == "" {
		c.Prefix = "idem"
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
