package productstore

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abgdnv/productstore/pkg/config"
	"github.com/go-chi/chi/v5"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClientConfig(baseURL string) config.CatalogClientConfig {
	return config.CatalogClientConfig{
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
		CircuitBreaker: config.CircuitBreakerConfig{
			ConsecutiveFailures: 2,
			ErrorRatePercent:    100,
			OpenTimeout:         time.Minute,
			HalfOpenRequests:    1,
		},
	}
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(testClientConfig(srv.URL), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func Test_Client_List(t *testing.T) {
	testCases := []struct {
		name          string
		status        int
		body          string
		expected      []Product
		expectedError string
	}{
		{
			name:     "Success - products returned",
			status:   http.StatusOK,
			body:     `{"success":true,"data":[{"_id":"1","name":"Pen","price":10,"image":"http://x/pen.png"}]}`,
			expected: []Product{pen},
		},
		{
			name:     "Success - data omitted",
			status:   http.StatusOK,
			body:     `{"success":true}`,
			expected: []Product{},
		},
		{
			name:          "Error - malformed payload",
			status:        http.StatusOK,
			body:          `<html>`,
			expectedError: "malformed catalog response",
		},
		{
			name:          "Error - success flag false",
			status:        http.StatusOK,
			body:          `{"success":false,"message":"Server Error"}`,
			expectedError: "Server Error",
		},
		{
			name:          "Error - non-2xx",
			status:        http.StatusInternalServerError,
			body:          `{"success":false,"message":"Server Error"}`,
			expectedError: "status 500: Server Error",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/products", r.URL.Path)
				writeJSON(w, tc.status, tc.body)
			}))
			// when
			list, err := c.List(context.Background())
			// then
			if tc.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, list)
		})
	}
}

func Test_Client_Mutations(t *testing.T) {
	// given
	var gotFields Fields
	r := chi.NewRouter()
	r.Post("/api/products", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotFields))
		writeJSON(w, http.StatusCreated, `{"success":true,"message":"Product created","data":{"_id":"1","name":"Pen","price":10,"image":"http://x/pen.png"}}`)
	})
	r.Put("/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", chi.URLParam(r, "id"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotFields))
		writeJSON(w, http.StatusOK, `{"success":true,"message":"Product updated","data":{"_id":"1","name":"Pen","price":12,"image":"http://x/pen.png"}}`)
	})
	r.Delete("/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") != "1" {
			writeJSON(w, http.StatusNotFound, `{"success":false,"message":"Product not found"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"success":true,"message":"Product deleted"}`)
	})
	c := newTestClient(t, r)
	ctx := context.Background()

	// when: create
	created, msg, err := c.Create(ctx, pen.Fields())
	// then
	require.NoError(t, err)
	assert.Equal(t, pen, created)
	assert.Equal(t, "Product created", msg)
	assert.Equal(t, pen.Fields(), gotFields)

	// when: update
	edited := pen.Fields()
	edited.Price = 12
	updated, msg, err := c.Update(ctx, "1", edited)
	// then
	require.NoError(t, err)
	assert.Equal(t, 12.0, updated.Price)
	assert.Equal(t, "Product updated", msg)
	assert.Equal(t, 12.0, gotFields.Price)

	// when: delete
	msg, err = c.Delete(ctx, "1")
	// then
	require.NoError(t, err)
	assert.Equal(t, "Product deleted", msg)

	// when: delete unknown
	_, err = c.Delete(ctx, "2")
	// then
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Product not found", apiErr.Message)
}

func Test_Client_CircuitBreakerOpens(t *testing.T) {
	// given
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusServiceUnavailable, `{"success":false}`)
	}))

	// when
	for i := 0; i < 2; i++ {
		_, err := c.List(context.Background())
		require.Error(t, err)
	}
	_, err := c.List(context.Background())

	// then
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), calls.Load())
}

func Test_Client_NotFoundDoesNotOpenBreaker(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusNotFound, `{"success":false,"message":"Product not found"}`)
	}))

	for i := 0; i < 4; i++ {
		_, err := c.Delete(context.Background(), "missing")
		require.Error(t, err)
	}
	assert.Equal(t, int32(4), calls.Load())
}

func Test_Store_WithClient_CollapsesOpenBreaker(t *testing.T) {
	// given
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadGateway, `{}`)
	}))
	s := New(c, slog.New(slog.NewTextHandler(io.Discard, nil)))

	// when
	var outcome Outcome
	for i := 0; i < 3; i++ {
		outcome = s.Delete(context.Background(), "1")
	}

	// then
	assert.False(t, outcome.Success)
	assert.Equal(t, msgDeleteFailed, outcome.Message)
}

func Test_Client_SendsBearerToken(t *testing.T) {
	// given
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, `{"success":true,"message":"Product deleted"}`)
	}))
	t.Cleanup(srv.Close)
	cfg := testClientConfig(srv.URL)
	cfg.Token = "service-token"
	c := NewClient(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	// when
	msg, err := c.Delete(context.Background(), "1")

	// then
	require.NoError(t, err)
	assert.Equal(t, "Product deleted", msg)
	assert.Equal(t, "Bearer service-token", got)
}
