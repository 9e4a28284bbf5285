// Package director implements the deployment API client. Every mutating
// call is asynchronous on the server side: the response names a monitor
// order whose completion the client polls before returning.
package director

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/siemcac/siemcac/internal/domain/entities"
	"github.com/siemcac/siemcac/internal/domain/values"
)

// Config holds the connection settings for one director instance.
type Config struct {
	BaseURL      string
	Token        string
	Timeout      time.Duration
	PollInterval time.Duration
	PollTimeout  time.Duration
	MaxRetries   int
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = 5 * time.Minute
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	return c
}

// Client talks to the director's configuration API. URLs are scoped by
// the node's pool and identity, so one client serves the whole fleet.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a director client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Health verifies the director answers authenticated requests. Called
// before mutating runs so a bad URL or token fails fast.
func (c *Client) Health(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodGet, c.cfg.BaseURL+"/monitorapi/health", nil); err != nil {
		return fmt.Errorf("director health check: %w", err)
	}
	return nil
}

// FetchConfiguration returns the live resources of one type on a node.
func (c *Client) FetchConfiguration(ctx context.Context, node entities.Node, resourceType string) ([]entities.Resource, error) {
	body, err := c.do(ctx, http.MethodGet, c.resourceURL(node, resourceType, ""), nil)
	if err != nil {
		return nil, err
	}

	var payload []map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding %s list from %s: %w", resourceType, node.Name, err)
	}

	resources := make([]entities.Resource, 0, len(payload))
	for i, item := range payload {
		v, err := values.FromGo(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d] from %s: %w", resourceType, i, node.Name, err)
		}
		resources = append(resources, entities.Resource(v.Map()))
	}
	return resources, nil
}

// CreateResource creates a resource and waits for the server-side order
// to complete.
func (c *Client) CreateResource(ctx context.Context, node entities.Node, resourceType string, resource entities.Resource) error {
	return c.mutate(ctx, node, http.MethodPost, c.resourceURL(node, resourceType, ""), resource)
}

// UpdateResource updates a resource by its identity.
func (c *Client) UpdateResource(ctx context.Context, node entities.Node, resourceType, name string, resource entities.Resource) error {
	return c.mutate(ctx, node, http.MethodPut, c.resourceURL(node, resourceType, name), resource)
}

// DeleteResource removes a resource by its identity.
func (c *Client) DeleteResource(ctx context.Context, node entities.Node, resourceType, name string) error {
	return c.mutate(ctx, node, http.MethodDelete, c.resourceURL(node, resourceType, name), nil)
}

func (c *Client) resourceURL(node entities.Node, resourceType, name string) string {
	url := fmt.Sprintf("%s/configapi/%s/%s/%s", c.cfg.BaseURL, node.Pool, node.Name, resourceType)
	if name != "" {
		url += "/" + name
	}
	return url
}

func (c *Client) mutate(ctx context.Context, node entities.Node, method, url string, resource entities.Resource) error {
	var payload []byte
	if resource != nil {
		plain := make(map[string]interface{}, len(resource))
		for key, v := range resource {
			plain[key] = v.ToGo()
		}
		var err error
		payload, err = json.Marshal(map[string]interface{}{"data": plain})
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	body, err := c.do(ctx, method, url, payload)
	if err != nil {
		return err
	}

	var order struct {
		Message string `json:"message"`
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal(body, &order); err != nil {
		return fmt.Errorf("decoding order response: %w", err)
	}
	if order.OrderID == "" {
		// Synchronous endpoints answer without an order to poll.
		return nil
	}
	return c.awaitOrder(ctx, node, order.OrderID)
}

// awaitOrder polls the monitor endpoint until the order completes or
// the poll window closes.
func (c *Client) awaitOrder(ctx context.Context, node entities.Node, orderID string) error {
	url := fmt.Sprintf("%s/monitorapi/%s/%s/orders/%s", c.cfg.BaseURL, node.Pool, node.Name, orderID)
	deadline := time.Now().Add(c.cfg.PollTimeout)

	for {
		body, err := c.do(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		var status struct {
			Success bool   `json:"success"`
			Done    bool   `json:"done"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &status); err != nil {
			return fmt.Errorf("decoding order status: %w", err)
		}
		if status.Done {
			if !status.Success {
				return fmt.Errorf("order %s failed: %s", orderID, status.Message)
			}
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("order %s did not complete within %s", orderID, c.cfg.PollTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.PollInterval):
		}
	}
}

// do issues one HTTP request with bearer auth, retrying transient
// failures with exponential backoff.
func (c *Client) do(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := calculateBackoff(attempt, 500*time.Millisecond, 10*time.Second)
			c.logger.Debug("retrying request", "method", method, "url", url, "attempt", attempt, "delay", delay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, err := c.once(ctx, method, url, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !isTransientError(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", c.cfg.MaxRetries+1, lastErr)
}

func (c *Client) once(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: status %d: %s", method, url, resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
