// Tripgrid - Geospatial Trip Telemetry Ingestion and Analytics
// Copyright 2026 Tripgrid Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/tripgrid/tripgrid

// Package config loads and validates Tripgrid configuration using Koanf v2
// with layered sources: built-in defaults, an optional YAML config file, and
// environment variables (highest priority).
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Tripgrid service.
type Config struct {
	Server ServerConfig `koanf:"server"`
	Redis  RedisConfig  `koanf:"redis"`
	Index  IndexConfig  `koanf:"index"`
	Log    LogConfig    `koanf:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Host is the listen address.
	Host string `koanf:"host"`

	// Port is the listen port.
	Port int `koanf:"port"`

	// ReadTimeout bounds reading of request bodies.
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds response writes.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RequestsPerMinute is the per-IP rate limit applied at the router.
	// Zero disables rate limiting.
	RequestsPerMinute int `koanf:"requests_per_minute"`
}

// RedisConfig configures the backing ordered-set/counter store.
type RedisConfig struct {
	// Addr is the host:port of the Redis server.
	Addr string `koanf:"addr"`

	// DB selects the store namespace (0..15). Overridable via the
	// REDIS_DB_NUM environment variable, which tests use to leave the
	// production namespace untouched.
	DB int `koanf:"db"`

	// Password is the optional Redis AUTH password.
	Password string `koanf:"password"`

	// DialTimeout bounds connection establishment.
	DialTimeout time.Duration `koanf:"dial_timeout"`

	// OpTimeout bounds every individual store call; exceeding it surfaces
	// a store error to the caller.
	OpTimeout time.Duration `koanf:"op_timeout"`
}

// IndexConfig configures retention of the trip index.
type IndexConfig struct {
	// SnapshotTTL is the lifetime of counter snapshots and day buckets.
	SnapshotTTL time.Duration `koanf:"snapshot_ttl"`

	// SweepEnabled turns the background prefix-index sweeper on or off.
	SweepEnabled bool `koanf:"sweep_enabled"`

	// SweepInterval is the pause between sweeper passes.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// SweepRetention is how long prefix-index members are kept; members
	// whose last-seen score is older are removed by the sweeper.
	SweepRetention time.Duration `koanf:"sweep_retention"`
}

// LogConfig configures the zerolog-based logging layer.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              6789,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			RequestsPerMinute: 0,
		},
		Redis: RedisConfig{
			Addr:        "127.0.0.1:6379",
			DB:          0,
			Password:    "",
			DialTimeout: 5 * time.Second,
			OpTimeout:   30 * time.Second,
		},
		Index: IndexConfig{
			SnapshotTTL:    90 * 24 * time.Hour,
			SweepEnabled:   true,
			SweepInterval:  1 * time.Hour,
			SweepRetention: 90 * 24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range 1..65535", c.Server.Port)
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 || c.Redis.DB > 15 {
		return fmt.Errorf("config: redis.db %d out of range 0..15", c.Redis.DB)
	}
	if c.Redis.OpTimeout <= 0 {
		return fmt.Errorf("config: redis.op_timeout must be positive")
	}
	if c.Index.SnapshotTTL <= 0 {
		return fmt.Errorf("config: index.snapshot_ttl must be positive")
	}
	if c.Index.SweepEnabled {
		if c.Index.SweepInterval <= 0 {
			return fmt.Errorf("config: index.sweep_interval must be positive")
		}
		if c.Index.SweepRetention <= 0 {
			return fmt.Errorf("config: index.sweep_retention must be positive")
		}
	}
	return nil
}
