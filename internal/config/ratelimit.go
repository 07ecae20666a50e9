package config

import "time"

// RateLimitConfig configures the Redis token bucket in front of the
// login and registration endpoints.
type RateLimitConfig struct {
	Enabled        bool          `koanf:"enabled"`
	Capacity       int           `koanf:"capacity"`
	RefillTokens   int           `koanf:"refill_tokens"`
	RefillInterval time.Duration `koanf:"refill_interval"`
	TTL            time.Duration `koanf:"ttl"`
	KeyStrategy    string        `koanf:"key_strategy"`
	Prefix         string        `koanf:"prefix"`
	Debug          bool          `koanf:"debug"`
}

func (c *RateLimitConfig) applyDefaults() {
	if c.Capacity < 1 {
		c.Capacity = 10
	}
	if c.RefillTokens < 1 {
		c.RefillTokens = 1
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = 6 * time.Second
	}
	if c.KeyStrategy == "" {
		c.KeyStrategy = "ip_route"
	}
	if c.Prefix == "" {
		c.Prefix = "rl"
	}
	minTTL := 5 * c.RefillInterval
	if c.TTL < minTTL {
		c.TTL = minTTL
	}
}
