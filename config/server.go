package config

import (
	"fmt"
	"strings"
	"time"
)

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Address        string `json:"address"`
	PollIntervalMs int    `json:"poll_interval_ms"`
	WSPath         string `json:"ws_path"`
	PollPath       string `json:"poll_path"`
	// StaleAfterMs is the age after which /healthz reports stale.
	StaleAfterMs int `json:"stale_after_ms"`
	// StaticDir serves dashboard assets from / when set.
	StaticDir string `json:"static_dir"`
}

// SetDefaults fills unset fields.
func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":5000"
	}
	if c.PollIntervalMs == 0 {
		c.PollIntervalMs = 500
	}
	if c.WSPath == "" {
		c.WSPath = "/ws"
	}
	if c.PollPath == "" {
		c.PollPath = "/data"
	}
	if c.StaleAfterMs == 0 {
		c.StaleAfterMs = 4000
	}
}

// Validate checks the server configuration.
func (c ServerConfig) Validate() error {
	if c.PollIntervalMs <= 0 {
		return fmt.Errorf("poll_interval_ms must be positive")
	}
	if !strings.HasPrefix(c.WSPath, "/") || !strings.HasPrefix(c.PollPath, "/") {
		return fmt.Errorf("ws_path and poll_path must start with /")
	}
	if c.WSPath == c.PollPath {
		return fmt.Errorf("ws_path and poll_path must differ")
	}
	return nil
}

// PollInterval returns the poll sampling period.
func (c ServerConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// StaleAfter returns the liveness threshold.
func (c ServerConfig) StaleAfter() time.Duration {
	return time.Duration(c.StaleAfterMs) * time.Millisecond
}
