package stacker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client is the stacker SDK entry point.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	obs     *observer
}

// New creates a stacker Client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("stacker: base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("stacker: invalid base URL: %w", err)
	}

	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.apiKey,
		http:    httpClient,
		obs:     obs,
	}, nil
}

// Health reports the service's aggregated store health. A degraded
// service still answers; err is non-nil only when the service is
// unreachable or the response cannot be read.
func (c *Client) Health(ctx context.Context) (h HealthReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	// /health sits outside /api/v1 and answers 503 when degraded.
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return HealthReport{}, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return HealthReport{}, fmt.Errorf("stacker: health: %w", err)
	}
	defer drain(res.Body)

	if err := json.NewDecoder(res.Body).Decode(&h); err != nil {
		return HealthReport{}, fmt.Errorf("stacker: decode health: %w", err)
	}
	return h, nil
}

// HealthReport is the service health response.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// do runs one API call: marshal the body, send, and decode the response
// into out (when out is non-nil and the response has content).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("stacker: marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("stacker: %s %s: %w", method, path, err)
	}
	defer drain(res.Body)

	if res.StatusCode >= 400 {
		return decodeAPIError(res)
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("stacker: decode response: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("stacker: build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

// drain empties and closes a response body so the connection can be
// reused.
func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}

// Bool returns a pointer to v. The API's tri-state flags distinguish
// absent from false, so boolean fields take pointers.
func Bool(v bool) *bool { return &v }
