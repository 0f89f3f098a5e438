package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/evdash/core/metrics"
	"github.com/kilianp07/evdash/infra/logger"
	"github.com/kilianp07/evdash/infra/mqtt"
	"github.com/kilianp07/evdash/infra/redis"
)

// Config is the root service configuration.
type Config struct {
	Server     ServerConfig     `json:"server"`
	Source     SourceConfig     `json:"source"`
	Simulation SimulationConfig `json:"simulation"`
	Vehicle    VehicleConfig    `json:"vehicle"`
	Metrics    metrics.Config   `json:"metrics"`
	Bridges    BridgesConfig    `json:"bridges"`
	Logging    logger.Options   `json:"logging"`
	Sentry     SentryConfig     `json:"sentry"`
}

// BridgesConfig groups the optional snapshot bridges.
type BridgesConfig struct {
	MQTT  mqtt.Config  `json:"mqtt"`
	Redis redis.Config `json:"redis"`
}

// VehicleConfig identifies the vehicle in bridges and metrics.
type VehicleConfig struct {
	ID string `json:"id"`
}

// EnvFile is loaded into the process environment before the config file.
var EnvFile = ".env"

// Load reads path (YAML or JSON) and applies K_ environment overrides, e.g.
// K_SERVER__ADDRESS=:8080. An empty path uses defaults plus environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", EnvFile, err)
	}

	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills unset fields of every section.
func (c *Config) SetDefaults() {
	c.Server.SetDefaults()
	c.Source.SetDefaults()
	c.Simulation.SetDefaults()
	if c.Vehicle.ID == "" {
		c.Vehicle.ID = "ev-1"
	}
	c.Bridges.MQTT.SetDefaults()
	c.Bridges.Redis.SetDefaults()
	c.Logging.SetDefaults()
	c.Sentry.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Source.Validate(); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if err := c.Bridges.MQTT.Validate(); err != nil {
		return fmt.Errorf("bridges.mqtt: %w", err)
	}
	if err := c.Bridges.Redis.Validate(); err != nil {
		return fmt.Errorf("bridges.redis: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
