package subscriber

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/abgdnv/productstore/internal/storefront/productstore"
	"github.com/abgdnv/productstore/pkg/config"
	"github.com/abgdnv/productstore/pkg/messaging"
	"github.com/abgdnv/productstore/pkg/messaging/events"
	pkgnats "github.com/abgdnv/productstore/pkg/nats"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/nats"
	"golang.org/x/sync/errgroup"
)

// skipIntegrationTests is the environment variable that controls whether to skip integration tests.
const skipIntegrationTests = "STOREFRONT_SKIP_INTEGRATION_TESTS"
const natsImg = "nats:2.11.6-alpine"

// noopAPI satisfies productstore.API for a store that is only fed by events.
type noopAPI struct{}

func (noopAPI) List(context.Context) ([]productstore.Product, error) { return nil, nil }
func (noopAPI) Create(context.Context, productstore.Fields) (productstore.Product, string, error) {
	return productstore.Product{}, "", nil
}
func (noopAPI) Update(context.Context, string, productstore.Fields) (productstore.Product, string, error) {
	return productstore.Product{}, "", nil
}
func (noopAPI) Delete(context.Context, string) (string, error) { return "", nil }

type SubscriberSuite struct {
	suite.Suite
	ctx           context.Context
	logger        *slog.Logger
	natsContainer *nats.NATSContainer
	nc            *natsgo.Conn
	js            jetstream.JetStream
}

func (s *SubscriberSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	var err error
	s.natsContainer, err = nats.Run(s.ctx, natsImg)
	require.NoError(s.T(), err, "Failed to run NATS container")

	natsURL, err := s.natsContainer.ConnectionString(s.ctx)
	require.NoError(s.T(), err)
	s.nc, err = pkgnats.NewClient(natsURL, 5*time.Second)
	require.NoError(s.T(), err, "Failed to connect to NATS")
	s.js, err = pkgnats.NewJetStreamContext(s.nc)
	require.NoError(s.T(), err, "Failed to get JetStream context")
}

func (s *SubscriberSuite) TearDownSuite() {
	if s.nc != nil {
		s.nc.Close()
	}
	if err := testcontainers.TerminateContainer(s.natsContainer); err != nil {
		s.logger.Error("Failed to terminate NATS container", "error", err)
	}
}

func TestSubscriberIntegration(t *testing.T) {
	if testing.Short() || os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(SubscriberSuite))
}

func (s *SubscriberSuite) TestPublishedEventsReachTheStore() {
	// given
	stream := "PRODUCTS_" + uuid.NewString()[:8]
	require.NoError(s.T(), pkgnats.EnsureProductStream(s.ctx, s.js, stream))
	store := productstore.New(noopAPI{}, s.logger)

	testCtx, cancel := context.WithTimeout(s.ctx, 20*time.Second)
	g, gCtx := errgroup.WithContext(testCtx)
	g.Go(func() error {
		return Start(gCtx, s.js, stream, config.SubscriberConfig{
			Subject:  messaging.ProductsSubjects,
			Consumer: "storefront-" + uuid.NewString()[:8],
			Timeout:  500 * time.Millisecond,
			Interval: 100 * time.Millisecond,
			Workers:  1,
		}, store, s.logger)
	})
	s.T().Cleanup(func() {
		cancel()
		_ = g.Wait()
	})

	publisher := pkgnats.NewNatsPublisher(s.js)
	id := uuid.New()

	// when
	require.NoError(s.T(), publisher.Publish(s.ctx, events.ProductChangedEvent{
		Type: events.ProductCreated, ProductID: id, Name: "Pen", Price: 10, Image: "http://x/pen.png", OccurredAt: time.Now().UTC(),
	}))
	require.NoError(s.T(), publisher.Publish(s.ctx, events.ProductChangedEvent{
		Type: events.ProductUpdated, ProductID: id, Name: "Pen", Price: 12, Image: "http://x/pen.png", OccurredAt: time.Now().UTC(),
	}))

	// then
	require.Eventually(s.T(), func() bool {
		p, ok := store.Find(id.String())
		return ok && p.Price == 12
	}, 10*time.Second, 100*time.Millisecond)

	// when
	require.NoError(s.T(), publisher.Publish(s.ctx, events.ProductChangedEvent{Type: events.ProductDeleted, ProductID: id, OccurredAt: time.Now().UTC()}))

	// then
	require.Eventually(s.T(), func() bool {
		_, ok := store.Find(id.String())
		return !ok
	}, 10*time.Second, 100*time.Millisecond)
}
