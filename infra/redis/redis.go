// Package redis mirrors the latest telemetry snapshot into Redis: a hash with
// the current state and a pub/sub channel carrying every forwarded snapshot.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kilianp07/evdash/core/telemetry"
)

// Config configures the Redis bridge.
type Config struct {
	Enabled   bool   `json:"enabled"`
	Addr      string `json:"addr"`
	Password  string `json:"password"`
	DB        int    `json:"db"`
	KeyPrefix string `json:"key_prefix"`
	// TTLSeconds expires the state hash when the producer goes quiet. A
	// negative value keeps it forever.
	TTLSeconds    int `json:"ttl_seconds"`
	MinIntervalMs int `json:"min_interval_ms"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "vehicle"
	}
	if c.TTLSeconds == 0 {
		c.TTLSeconds = 30
	}
}

// Validate checks an enabled configuration.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}
	if c.DB < 0 {
		return fmt.Errorf("redis db must not be negative")
	}
	return nil
}

// Bridge writes snapshots to Redis.
type Bridge struct {
	client  *goredis.Client
	key     string
	channel string
	ttl     time.Duration
}

// NewBridge connects to Redis and checks the connection with PING.
func NewBridge(ctx context.Context, cfg Config, vehicleID string) (*Bridge, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 4,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return newBridge(client, cfg, vehicleID), nil
}

func newBridge(client *goredis.Client, cfg Config, vehicleID string) *Bridge {
	return &Bridge{
		client:  client,
		key:     fmt.Sprintf("%s:%s:state", cfg.KeyPrefix, vehicleID),
		channel: fmt.Sprintf("%s:%s:telemetry", cfg.KeyPrefix, vehicleID),
		ttl:     time.Duration(cfg.TTLSeconds) * time.Second,
	}
}

// Name implements bridge.Forwarder.
func (b *Bridge) Name() string { return "redis" }

// Key returns the state hash key.
func (b *Bridge) Key() string { return b.key }

// Channel returns the pub/sub channel.
func (b *Bridge) Channel() string { return b.channel }

// Forward stores s in the state hash and publishes it, in one pipeline.
func (b *Bridge) Forward(ctx context.Context, s telemetry.Snapshot) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	state := map[string]interface{}{
		"timestamp":       s.Timestamp,
		"speed":           s.Speed,
		"temperature":     s.Temperature,
		"voltage":         s.Voltage,
		"soc":             s.SoC,
		"wh":              s.Wh,
		"trip_distance":   s.TripDistance,
		"trip_efficiency": s.TripEfficiency,
		"trip_time":       s.TripTime,
	}

	pipe := b.client.Pipeline()
	pipe.HSet(ctx, b.key, state)
	if b.ttl > 0 {
		pipe.Expire(ctx, b.key, b.ttl)
	}
	pipe.Publish(ctx, b.channel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline failed: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (b *Bridge) Close() error {
	return b.client.Close()
}
