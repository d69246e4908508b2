// Package dataclient fetches fleet statistics from a remote dataset API.
package dataclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/fleethealth/auth"
	"github.com/kilianp07/fleethealth/core/fault"
	"github.com/kilianp07/fleethealth/core/logger"
	"github.com/kilianp07/fleethealth/core/model"
)

const requestIDHeader = "X-Request-ID"

// Config locates the dataset API.
type Config struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	// Auth enables OAuth2 client credentials when ClientID is set.
	Auth auth.Conf `json:"auth"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8080"
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks that the base URL is absolute.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url must be absolute, got %q", c.BaseURL)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must be >= 0")
	}
	return c.Auth.Validate()
}

// Client calls the dataset API over HTTP.
type Client struct {
	base *url.URL
	http *http.Client
	log  logger.Logger
}

// New creates a Client for cfg.
func New(cfg Config, log logger.Logger) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, _ := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	hc := &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	if cfg.Auth.Enabled() {
		hc.Transport = auth.NewClientCred(context.Background(), cfg.Auth).Transport(nil)
	}
	return &Client{base: base, http: hc, log: logger.OrNop(log)}, nil
}

// Stats fetches the fleet statistics scoped by q.
func (c *Client) Stats(ctx context.Context, q model.StatsQuery) (model.Stats, error) {
	v := url.Values{}
	if q.CarType != "" {
		v.Set("car_type", q.CarType)
	}
	if q.Grade != "" {
		v.Set("grade", q.Grade)
	}
	var out model.Stats
	err := c.get(ctx, "stats", c.endpoint(v, "api", "stats"), &out)
	return out, err
}

// VehicleDetail fetches the detail payload of one vehicle.
func (c *Client) VehicleDetail(ctx context.Context, id string) (model.VehicleDetail, error) {
	var out model.VehicleDetail
	err := c.get(ctx, "vehicle detail", c.endpoint(nil, "api", "vehicle-detail", id), &out)
	return out, err
}

func (c *Client) endpoint(q url.Values, segments ...string) string {
	u := *c.base
	u.Path += "/" + strings.Join(segments, "/")
	u.RawPath = ""
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c *Client) get(ctx context.Context, op, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fault.Network(op, err)
	}
	rid := uuid.NewString()
	req.Header.Set(requestIDHeader, rid)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fault.Network(op, err)
	}
	defer resp.Body.Close()
	c.log.Debugw("dataset request", map[string]any{
		"op":         op,
		"url":        target,
		"status":     resp.StatusCode,
		"request_id": rid,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s: %w", op, &fault.StatusError{Code: resp.StatusCode, URL: target})
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fault.Malformed(op, err)
	}
	return nil
}
