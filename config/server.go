package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/fleethealth/core/view"
)

// ServerConfig defines the dataset API listener.
type ServerConfig struct {
	Addr string `json:"addr"`
	// AccessLog enables one log entry per request.
	AccessLog           bool `json:"access_log"`
	ShutdownTimeoutSecs int  `json:"shutdown_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ShutdownTimeoutSecs == 0 {
		c.ShutdownTimeoutSecs = 5
	}
}

// Validate checks mandatory fields.
func (c ServerConfig) Validate() error {
	if c.ShutdownTimeoutSecs < 0 {
		return fmt.Errorf("shutdown_timeout_seconds must be positive")
	}
	return nil
}

// ViewConfig tunes the dashboard controller.
type ViewConfig struct {
	RefreshIntervalSeconds int `json:"refresh_interval_seconds"`
	FetchTimeoutSeconds    int `json:"fetch_timeout_seconds"`
}

// SetDefaults applies sane defaults. A negative refresh interval disables
// periodic reloads.
func (c *ViewConfig) SetDefaults() {
	if c.RefreshIntervalSeconds == 0 {
		c.RefreshIntervalSeconds = 300
	}
	if c.FetchTimeoutSeconds == 0 {
		c.FetchTimeoutSeconds = 30
	}
}

// Validate checks mandatory fields.
func (c ViewConfig) Validate() error {
	if c.FetchTimeoutSeconds < 0 {
		return fmt.Errorf("fetch_timeout_seconds must be positive")
	}
	return nil
}

// Controller converts the section into controller settings.
func (c ViewConfig) Controller() view.Config {
	cfg := view.DefaultConfig()
	cfg.RefreshInterval = time.Duration(max(0, c.RefreshIntervalSeconds)) * time.Second
	cfg.FetchTimeout = time.Duration(c.FetchTimeoutSeconds) * time.Second
	return cfg
}
