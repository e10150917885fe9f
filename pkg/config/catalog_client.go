package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// CatalogClientConfig tells the storefront where the catalog API lives.
type CatalogClientConfig struct {
	BaseURL        string               `koanf:"baseurl"`
	Timeout        time.Duration        `koanf:"timeout"`
	Token          string               `koanf:"token"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

func (c *CatalogClientConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Catalog API ---\n")
	b.WriteString(fmt.Sprintf("  baseurl: %s\n", c.BaseURL))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	if c.Token != "" {
		b.WriteString("  token: ********\n")
	}
	b.WriteString(c.CircuitBreaker.String())
	return b.String()
}

func (c *CatalogClientConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("catalog base URL is not configured")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid catalog base URL: %q", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("catalog request timeout must be greater than 0")
	}
	return c.CircuitBreaker.Validate()
}
