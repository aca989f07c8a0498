package kener

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/wheecious/kener/internal/reconcile"
	"github.com/wheecious/kener/pkg/types"
)

const (
	defaultMonitorsPath = "/api/monitor"
	userAgent           = "kenerctl/0.0.1"
	maxErrorBodyBytes   = 512
)

// Config holds the static configuration for a Kener API client.
type Config struct {
	BaseURL string
	APIKey  string
}

// Dependencies allow overrides for the HTTP transport, logging, and the
// monitor endpoint path.
type Dependencies struct {
	HTTPClient   *http.Client
	Logger       *log.Logger
	MonitorsPath string
}

// Client talks to the monitor endpoints of a Kener instance. Every request
// carries the configured API key as a bearer token.
type Client struct {
	httpClient  *http.Client
	monitorsURL string
	apiKey      string
	logger      *log.Logger
}

// NewClient builds a Client from configuration and dependencies.
func NewClient(cfg Config, deps Dependencies) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	httpClient := deps.HTTPClient
	if httpClient == nil {
		return nil, fmt.Errorf("HTTP client is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	monitorsPath := deps.MonitorsPath
	if monitorsPath == "" {
		monitorsPath = defaultMonitorsPath
	}

	return &Client{
		httpClient:  httpClient,
		monitorsURL: joinURL(cfg.BaseURL, monitorsPath),
		apiKey:      cfg.APIKey,
		logger:      logger,
	}, nil
}

// ListMonitorsByTag returns the monitors carrying the tag, in server order.
// An unknown tag yields an empty slice, not an error.
func (c *Client) ListMonitorsByTag(ctx context.Context, tag string) ([]types.RemoteMonitor, error) {
	endpoint := c.monitorsURL + "?tag=" + url.QueryEscape(tag)
	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("list monitors: %w", err)
	}
	if len(body) == 0 {
		return nil, nil
	}
	var monitors []types.RemoteMonitor
	if err := json.Unmarshal(body, &monitors); err != nil {
		return nil, fmt.Errorf("decode monitor list: %w", err)
	}
	return monitors, nil
}

// CreateMonitor registers a new monitor and returns the stored record when
// the API includes one in the response.
func (c *Client) CreateMonitor(ctx context.Context, payload types.MonitorPayload) (types.RemoteMonitor, error) {
	body, err := c.do(ctx, http.MethodPost, c.monitorsURL, &payload)
	if err != nil {
		return types.RemoteMonitor{}, fmt.Errorf("create monitor: %w", err)
	}
	return decodeMonitor(body)
}

// UpdateMonitor replaces the monitor stored under id.
func (c *Client) UpdateMonitor(ctx context.Context, id types.ID, payload types.MonitorPayload) (types.RemoteMonitor, error) {
	body, err := c.do(ctx, http.MethodPut, c.monitorsURL+"/"+url.PathEscape(id.String()), &payload)
	if err != nil {
		return types.RemoteMonitor{}, fmt.Errorf("update monitor: %w", err)
	}
	return decodeMonitor(body)
}

// DeleteMonitor removes the monitor stored under id.
func (c *Client) DeleteMonitor(ctx context.Context, id types.ID) error {
	if _, err := c.do(ctx, http.MethodDelete, c.monitorsURL+"/"+url.PathEscape(id.String()), nil); err != nil {
		return fmt.Errorf("delete monitor: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload *types.MonitorPayload) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Printf("%s %s failed: %s", method, endpoint, resp.Status)
		return nil, &APIError{
			Method:     method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       truncateBody(body),
		}
	}
	return body, nil
}

// Responses may legally be empty; an empty body decodes to a zero record.
func decodeMonitor(body []byte) (types.RemoteMonitor, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return types.RemoteMonitor{}, nil
	}
	var monitor types.RemoteMonitor
	if err := json.Unmarshal(body, &monitor); err != nil {
		return types.RemoteMonitor{}, fmt.Errorf("decode monitor response: %w", err)
	}
	return monitor, nil
}

func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBodyBytes {
		return s[:maxErrorBodyBytes] + "..."
	}
	return s
}

func joinURL(base, path string) string {
	base = strings.TrimRight(base, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

var _ reconcile.API = (*Client)(nil)
