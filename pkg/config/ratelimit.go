package config

import (
	"fmt"
	"strings"
)

// RateLimitConfig is a token bucket applied to the whole catalog API. RPS of zero disables it.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

func (c *RateLimitConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Rate Limit ---\n")
	b.WriteString(fmt.Sprintf("  rps: %v\n", c.RPS))
	b.WriteString(fmt.Sprintf("  burst: %d\n", c.Burst))
	return b.String()
}

func (c *RateLimitConfig) Validate() error {
	if c.RPS < 0 {
		return fmt.Errorf("ratelimit.rps must not be negative")
	}
	if c.RPS > 0 && c.Burst <= 0 {
		return fmt.Errorf("ratelimit.burst must be greater than 0 when rps is set")
	}
	return nil
}
