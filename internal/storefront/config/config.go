// Package config holds the configuration of the storefront.
package config

import (
	"strings"

	"github.com/abgdnv/productstore/pkg/config"
	"github.com/abgdnv/productstore/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig          `koanf:"server"`
	Catalog    config.CatalogClientConfig `koanf:"catalog"`
	Session    config.SessionConfig       `koanf:"session"`
	NATS       config.NATSConfig          `koanf:"nats"`
	Subscriber config.SubscriberConfig    `koanf:"subscriber"`
	Telemetry  config.TelemetryConfig     `koanf:"telemetry"`
	Log        config.LogConfig           `koanf:"log"`
	PProf      config.PProfConfig         `koanf:"pprof"`
	Shutdown   config.ShutdownConfig      `koanf:"shutdown"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Catalog.String())
	b.WriteString(c.Session.String())
	b.WriteString(c.NATS.String())
	if c.NATS.Enabled {
		b.WriteString(c.Subscriber.String())
	}
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	validators := []configloader.Validator{
		&c.HTTPServer,
		&c.Catalog,
		&c.Session,
		&c.NATS,
		&c.Telemetry,
		&c.Log,
		&c.PProf,
		&c.Shutdown,
	}
	if c.NATS.Enabled {
		validators = append(validators, &c.Subscriber)
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
