// Package app wires the catalog API: storage, events and transports.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/productstore/internal/catalog/config"
	"github.com/abgdnv/productstore/internal/catalog/service"
	"github.com/abgdnv/productstore/internal/catalog/store"
	"github.com/abgdnv/productstore/internal/catalog/transport/rest"
	"github.com/abgdnv/productstore/pkg/auth"
	"github.com/abgdnv/productstore/pkg/bootstrap"
	pkgconfig "github.com/abgdnv/productstore/pkg/config"
	"github.com/abgdnv/productstore/pkg/messaging"
	pkgnats "github.com/abgdnv/productstore/pkg/nats"
	"github.com/abgdnv/productstore/pkg/server"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

type Dependencies struct {
	Store          store.ProductStore
	ProductService service.ProductService
	Limiter        *rate.Limiter
	Verifier       auth.Verifier
	Metrics        http.Handler
	MetricsPath    string
	Logger         *slog.Logger
}

// SetupDependencies builds the service layer on top of an opened store.
func SetupDependencies(productStore store.ProductStore, publisher messaging.Publisher, rl pkgconfig.RateLimitConfig, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		Store:          productStore,
		ProductService: service.NewService(productStore, publisher, logger),
		Limiter:        NewLimiter(rl),
		Logger:         logger,
	}
}

// NewLimiter returns nil, meaning unlimited, when rps is not set.
func NewLimiter(cfg pkgconfig.RateLimitConfig) *rate.Limiter {
	if cfg.RPS <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)
}

// OpenStore selects the product store from database.driver and applies migrations when asked.
// The returned func releases the store.
func OpenStore(ctx context.Context, cfg pkgconfig.DatabaseConfig, logger *slog.Logger) (store.ProductStore, func(), error) {
	if cfg.Driver == pkgconfig.DriverMemory {
		logger.Warn("Using in-memory product store, data is lost on restart")
		return store.NewInMemoryStore(), func() {}, nil
	}

	if cfg.Migrate {
		if err := store.Migrate(cfg.URL); err != nil {
			return nil, nil, err
		}
		logger.Info("Database migrations applied")
	}

	dbPool, err := bootstrap.NewDbPool(ctx, cfg.URL, cfg.Timeout)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Successfully connected to the database!")
	return store.NewPgStore(dbPool), dbPool.Close, nil
}

// OpenPublisher connects to JetStream and makes sure the product stream exists.
// With NATS disabled every event is dropped.
func OpenPublisher(ctx context.Context, cfg pkgconfig.NATSConfig, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.Enabled {
		logger.Info("NATS disabled, product events will not be published")
		return messaging.NoopPublisher{}, func() {}, nil
	}
	nc, err := pkgnats.NewClient(cfg.Url, cfg.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := pkgnats.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	if err := pkgnats.EnsureProductStream(ctx, js, cfg.Stream); err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to prepare product events: %w", err)
	}
	logger.Info("Publishing product events", "stream", cfg.Stream)
	return pkgnats.NewNatsPublisher(js), func() { _ = nc.Drain() }, nil
}

// OpenVerifier returns nil when write authentication is disabled.
func OpenVerifier(ctx context.Context, cfg pkgconfig.AuthConfig, logger *slog.Logger) (auth.Verifier, error) {
	if !cfg.Enabled {
		logger.Warn("Write authentication disabled, catalog mutations are open")
		return nil, nil
	}
	verifier, err := auth.NewJWTVerifier(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT verifier: %w", err)
	}
	logger.Info("Write authentication enabled", "issuer", cfg.Issuer)
	return verifier, nil
}

// SetupHttpHandler initializes the router and routes of the catalog API.
// Used by tests to exercise the full middleware chain.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Store, deps.Limiter, deps.Logger)
	if deps.Verifier != nil {
		productHandler.WithWriteAuth(deps.Verifier)
	}
	productHandler.RegisterRoutes(mux)
	if deps.Metrics != nil {
		mux.Handle(deps.MetricsPath, deps.Metrics)
	}
}

// SetupHttpServer creates and configures an HTTP server for the catalog API.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Name:           "catalog",
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}

// SetupGrpcServer initializes the gRPC server that exposes health checks.
func SetupGrpcServer(reflectionEnabled bool, logger *slog.Logger) (*grpc.Server, *health.Server) {
	return server.NewGRPCServer(logger, reflectionEnabled)
}
