package productstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/abgdnv/productstore/pkg/client"
	"github.com/abgdnv/productstore/pkg/config"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// API is the remote catalog the store talks to.
// Successful mutations return the message the catalog sent along.
type API interface {
	List(ctx context.Context) ([]Product, error)
	Create(ctx context.Context, fields Fields) (Product, string, error)
	Update(ctx context.Context, id string, fields Fields) (Product, string, error)
	Delete(ctx context.Context, id string) (string, error)
}

var _ API = (*Client)(nil)

// APIError is a non-2xx response from the catalog. Message is the one the catalog
// put in its envelope and may be empty.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog responded with status %d", e.Status)
	}
	return fmt.Sprintf("catalog responded with status %d: %s", e.Status, e.Message)
}

func (e *APIError) StatusCode() int { return e.Status }

// envelope mirrors the catalog response body.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Client calls the catalog REST API through a circuit breaker.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *slog.Logger
}

// NewClient creates a catalog API client. Requests are traced with otelhttp.
func NewClient(cfg config.CatalogClientConfig, logger *slog.Logger) *Client {
	logger = logger.With("component", "catalog-client")
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: client.NewCircuitBreaker[[]byte]("catalog-api", cfg.CircuitBreaker, logger),
		logger:  logger,
	}
}

func (c *Client) List(ctx context.Context) ([]Product, error) {
	var env envelope[[]Product]
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = []Product{}
	}
	return env.Data, nil
}

func (c *Client) Create(ctx context.Context, fields Fields) (Product, string, error) {
	var env envelope[Product]
	if err := c.do(ctx, http.MethodPost, "/api/products", fields, &env); err != nil {
		return Product{}, "", err
	}
	if env.Data.ID == "" {
		return Product{}, "", fmt.Errorf("catalog returned a product without id")
	}
	return env.Data, env.Message, nil
}

func (c *Client) Update(ctx context.Context, id string, fields Fields) (Product, string, error) {
	var env envelope[Product]
	if err := c.do(ctx, http.MethodPut, productPath(id), fields, &env); err != nil {
		return Product{}, "", err
	}
	return env.Data, env.Message, nil
}

func (c *Client) Delete(ctx context.Context, id string) (string, error) {
	var env envelope[json.RawMessage]
	if err := c.do(ctx, http.MethodDelete, productPath(id), nil, &env); err != nil {
		return "", err
	}
	return env.Message, nil
}

func productPath(id string) string {
	return "/api/products/" + url.PathEscape(id)
}

// do sends one request through the breaker and decodes a successful envelope into out.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	raw, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, payload)
	})
	if err != nil {
		c.logger.WarnContext(ctx, "Catalog request failed", "method", method, "path", path, "error", err)
		return err
	}

	var status envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &status); err != nil {
		return fmt.Errorf("malformed catalog response: %w", err)
	}
	if !status.Success {
		return &APIError{Status: http.StatusOK, Message: status.Message}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("malformed catalog response: %w", err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var env envelope[json.RawMessage]
		if json.Unmarshal(raw, &env) == nil {
			apiErr.Message = env.Message
		}
		return nil, apiErr
	}
	return raw, nil
}
