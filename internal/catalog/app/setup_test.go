package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abgdnv/productstore/internal/catalog/service"
	"github.com/abgdnv/productstore/internal/catalog/store"
	pkgconfig "github.com/abgdnv/productstore/pkg/config"
	"github.com/abgdnv/productstore/pkg/messaging"
	"github.com/abgdnv/productstore/pkg/telemetry"
	"github.com/abgdnv/productstore/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps := SetupDependencies(store.NewInMemoryStore(), messaging.NoopPublisher{}, pkgconfig.RateLimitConfig{}, logger)
	return SetupHttpHandler(deps)
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, web.Envelope[json.RawMessage]) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, reader))
	var env web.Envelope[json.RawMessage]
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	}
	return rr, env
}

func Test_CatalogAPI_ProductLifecycle(t *testing.T) {
	// given
	h := newTestHandler(t)

	// when: create
	rr, env := do(t, h, http.MethodPost, "/api/products", `{"name":"Pen","price":10,"image":"http://x/pen.png"}`)
	// then
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Product created", env.Message)
	var created service.ProductDto
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.NotEmpty(t, created.ID)

	// when: update
	rr, env = do(t, h, http.MethodPut, "/api/products/"+created.ID, `{"name":"Pen","price":12,"image":"http://x/pen.png"}`)
	// then
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Product updated", env.Message)

	// when: list
	rr, env = do(t, h, http.MethodGet, "/api/products", "")
	// then
	require.Equal(t, http.StatusOK, rr.Code)
	var list []service.ProductDto
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, 12.0, list[0].Price)

	// when: delete twice
	rr, env = do(t, h, http.MethodDelete, "/api/products/"+created.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Product deleted", env.Message)
	rr, env = do(t, h, http.MethodDelete, "/api/products/"+created.ID, "")
	// then
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Product not found", env.Message)
}

func Test_NewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(pkgconfig.RateLimitConfig{}))
	limiter := NewLimiter(pkgconfig.RateLimitConfig{RPS: 5, Burst: 2})
	require.NotNil(t, limiter)
	assert.Equal(t, 2, limiter.Burst())
}

func Test_OpenStore_Memory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, closeFn, err := OpenStore(context.Background(), pkgconfig.DatabaseConfig{Driver: pkgconfig.DriverMemory}, logger)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &store.InMemoryStore{}, s)
}

func Test_OpenPublisher_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p, closeFn, err := OpenPublisher(context.Background(), pkgconfig.NATSConfig{}, logger)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, messaging.NoopPublisher{}, p)
}

func Test_OpenVerifier_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v, err := OpenVerifier(context.Background(), pkgconfig.AuthConfig{}, logger)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func Test_CatalogAPI_MetricsEndpoint(t *testing.T) {
	// given
	metricsHandler, shutdown, err := telemetry.SetupMetrics("catalog")
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps := SetupDependencies(store.NewInMemoryStore(), messaging.NoopPublisher{}, pkgconfig.RateLimitConfig{}, logger)
	deps.Metrics, deps.MetricsPath = metricsHandler, "/metrics"
	h := SetupHttpHandler(deps)
	rr, _ := do(t, h, http.MethodPost, "/api/products", `{"name":"Pen","price":10,"image":"http://x/pen.png"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	// when
	scrape := httptest.NewRecorder()
	h.ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// then
	assert.Equal(t, http.StatusOK, scrape.Code)
	assert.Contains(t, scrape.Body.String(), "catalog_product_changes")
}
