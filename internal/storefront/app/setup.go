// Package app wires the storefront: the catalog client, the product cache, the pages
// and the optional event subscription.
package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/abgdnv/productstore/internal/storefront/config"
	"github.com/abgdnv/productstore/internal/storefront/productstore"
	"github.com/abgdnv/productstore/internal/storefront/subscriber"
	"github.com/abgdnv/productstore/internal/storefront/web"
	pkgconfig "github.com/abgdnv/productstore/pkg/config"
	pkgnats "github.com/abgdnv/productstore/pkg/nats"
	"github.com/abgdnv/productstore/pkg/server"
	"github.com/gorilla/sessions"
)

type Dependencies struct {
	Store    *productstore.Store
	Sessions sessions.Store
	Session  pkgconfig.SessionConfig
	Logger   *slog.Logger

	Metrics     http.Handler
	MetricsPath string
}

// SetupDependencies creates the product cache on top of the given catalog API.
func SetupDependencies(api productstore.API, sessionCfg pkgconfig.SessionConfig, logger *slog.Logger) *Dependencies {
	return &Dependencies{
		Store:    productstore.New(api, logger),
		Sessions: NewSessionStore(sessionCfg),
		Session:  sessionCfg,
		Logger:   logger,
	}
}

// NewSessionStore creates the signed cookie store that carries flashes.
func NewSessionStore(cfg pkgconfig.SessionConfig) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// SetupHttpHandler initializes the router and the storefront pages.
func SetupHttpHandler(deps *Dependencies) (http.Handler, error) {
	mux := server.NewChiRouter(deps.Logger)
	h, err := web.NewHandler(deps.Store, deps.Sessions, deps.Session.Name, deps.Logger)
	if err != nil {
		return nil, err
	}
	h.RegisterRoutes(mux)
	if deps.Metrics != nil {
		mux.Handle(deps.MetricsPath, deps.Metrics)
	}
	return mux, nil
}

// SetupHttpServer creates and configures the storefront HTTP server.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) (*http.Server, error) {
	mux, err := SetupHttpHandler(deps)
	if err != nil {
		return nil, err
	}

	httpCfg := server.HTTPConfig{
		Name:           "storefront",
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}
	return server.NewHTTPServer(httpCfg, mux), nil
}

// RunSubscriber connects to JetStream and feeds product events into the cache
// until ctx is cancelled.
func RunSubscriber(ctx context.Context, deps *Dependencies, natsCfg pkgconfig.NATSConfig, subCfg pkgconfig.SubscriberConfig) error {
	nc, err := pkgnats.NewClient(natsCfg.Url, natsCfg.Timeout)
	if err != nil {
		return err
	}
	defer nc.Close()

	js, err := pkgnats.NewJetStreamContext(nc)
	if err != nil {
		return err
	}
	if err := pkgnats.EnsureProductStream(ctx, js, natsCfg.Stream); err != nil {
		return err
	}
	return subscriber.Start(ctx, js, natsCfg.Stream, subCfg, deps.Store, deps.Logger)
}
