package config

import (
	"fmt"
	"strings"
)

// SessionConfig configures the cookie store that carries toast notifications across redirects.
type SessionConfig struct {
	Name   string `koanf:"name"`
	Secret string `koanf:"secret"`
	MaxAge int    `koanf:"maxage"`
	Secure bool   `koanf:"secure"`
}

func (c *SessionConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Session ---\n")
	b.WriteString(fmt.Sprintf("  name: %s\n", c.Name))
	b.WriteString("  secret: ****\n")
	b.WriteString(fmt.Sprintf("  maxage: %d\n", c.MaxAge))
	b.WriteString(fmt.Sprintf("  secure: %t\n", c.Secure))
	return b.String()
}

func (c *SessionConfig) Validate() error {
	if c.Name == "" {
		c.Name = "storefront"
	}
	if len(c.Secret) < 32 {
		return fmt.Errorf("session secret must be at least 32 bytes")
	}
	if c.MaxAge < 0 {
		return fmt.Errorf("session maxage must not be negative")
	}
	return nil
}
