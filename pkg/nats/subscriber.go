package nats

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/abgdnv/productstore/pkg/config"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/sync/errgroup"
)

// Handler processes one message payload. A returned error naks the message.
type Handler func(ctx context.Context, data []byte) error

// ackableMsg is the subset of jetstream.Msg the worker relies on.
type ackableMsg interface {
	Data() []byte
	Subject() string
	Ack() error
	Nak() error
}

// Subscribe creates (or updates) a durable consumer on stream and runs cfg.Workers
// fetch loops until ctx is cancelled.
func Subscribe(ctx context.Context, js jetstream.JetStream, stream string, cfg config.SubscriberConfig, handle Handler, logger *slog.Logger) error {
	consumer, err := js.CreateOrUpdateConsumer(ctx, stream, jetstream.ConsumerConfig{
		FilterSubject: cfg.Subject,
		Durable:       cfg.Consumer,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return err
	}
	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Workers; i++ {
		g.Go(func() error {
			return runWorker(gCtx, consumer, cfg.Timeout, cfg.Interval, handle, logger)
		})
	}
	return g.Wait()
}

func runWorker(ctx context.Context, consumer jetstream.Consumer, timeout, interval time.Duration, handle Handler, logger *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			batch, err := consumer.Fetch(1, jetstream.FetchMaxWait(timeout))
			if err != nil {
				if errors.Is(err, nats.ErrTimeout) {
					continue
				}
				logger.Error("failed to fetch messages", "error", err)
				time.Sleep(interval)
				continue
			}
			for msg := range batch.Messages() {
				handleMessage(ctx, msg, handle, logger)
			}
		}
	}
}

func handleMessage(ctx context.Context, msg ackableMsg, handle Handler, logger *slog.Logger) {
	if msg == nil {
		logger.Error("received nil message")
		return
	}
	if err := handle(ctx, msg.Data()); err != nil {
		logger.Error("failed to handle message", "error", err, "subject", msg.Subject())
		if err := msg.Nak(); err != nil {
			logger.Error("failed to nack message", "error", err)
		}
		return
	}
	if err := msg.Ack(); err != nil {
		logger.Error("failed to ack message", "error", err)
	}
}
