// Package subscriber keeps the storefront cache in step with product changes
// announced by the catalog.
package subscriber

import (
	"context"
	"log/slog"

	"github.com/abgdnv/productstore/pkg/config"
	"github.com/abgdnv/productstore/pkg/messaging/events"
	pkgnats "github.com/abgdnv/productstore/pkg/nats"
	"github.com/nats-io/nats.go/jetstream"
)

// Applier patches a product cache from a change event.
type Applier interface {
	Apply(e events.ProductChangedEvent)
}

// NewHandler decodes product events and applies them. Undecodable payloads are
// logged and acknowledged so they are not redelivered.
func NewHandler(applier Applier, logger *slog.Logger) pkgnats.Handler {
	return func(ctx context.Context, data []byte) error {
		e, err := events.Decode(data)
		if err != nil {
			logger.WarnContext(ctx, "Dropping invalid product event", "error", err)
			return nil
		}
		applier.Apply(e)
		logger.DebugContext(ctx, "Applied product event", "type", e.Type, "ID", e.ProductID)
		return nil
	}
}

// Start consumes the product stream until ctx is cancelled.
func Start(ctx context.Context, js jetstream.JetStream, stream string, cfg config.SubscriberConfig, applier Applier, logger *slog.Logger) error {
	logger = logger.With("component", "subscriber")
	logger.Info("Consuming product events", "stream", stream, "subject", cfg.Subject, "workers", cfg.Workers)
	return pkgnats.Subscribe(ctx, js, stream, cfg, NewHandler(applier, logger), logger)
}
