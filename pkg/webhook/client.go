package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const deliveryTimeout = 30 * time.Second

// Client posts call results to the backend webhook endpoint.
type Client struct {
	url    string
	secret string
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a webhook client for the given endpoint URL. The
// secret is sent as X-Webhook-Secret so the backend can authenticate
// the caller.
func NewClient(url, secret string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:    url,
		secret: secret,
		http:   &http.Client{Timeout: deliveryTimeout},
		logger: logger,
	}
}

// Deliver posts the result payload. Callers treat a returned error as a
// logged, non-fatal collaborator failure.
func (c *Client) Deliver(ctx context.Context, res *Result) error {
	body, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set("X-Webhook-Secret", c.secret)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post call result: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	c.logger.Info("call result delivered",
		"call_id", res.CallID, "status", res.Status, "http_status", resp.StatusCode)
	return nil
}
