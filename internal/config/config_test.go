// Tripgrid - Geospatial Trip Telemetry Ingestion and Analytics
// Copyright 2026 Tripgrid Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/tripgrid/tripgrid

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 6789 {
		t.Errorf("default port = %d, want 6789", cfg.Server.Port)
	}
	if cfg.Redis.DB != 0 {
		t.Errorf("default redis db = %d, want 0", cfg.Redis.DB)
	}
	if cfg.Redis.OpTimeout != 30*time.Second {
		t.Errorf("default op timeout = %v, want 30s", cfg.Redis.OpTimeout)
	}
	if cfg.Index.SnapshotTTL != 90*24*time.Hour {
		t.Errorf("default snapshot ttl = %v, want 2160h", cfg.Index.SnapshotTTL)
	}
	if !cfg.Index.SweepEnabled {
		t.Error("sweeper should be enabled by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("REDIS_DB_NUM", "3")
	t.Setenv("TRIPGRID_PORT", "8080")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Redis.DB != 3 {
		t.Errorf("redis db = %d, want 3 from REDIS_DB_NUM", cfg.Redis.DB)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080 from TRIPGRID_PORT", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug from LOG_LEVEL", cfg.Log.Level)
	}
}

func TestLoadRejectsDBOutOfRange(t *testing.T) {
	t.Setenv("REDIS_DB_NUM", "16")
	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted redis db 16, want error")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("server:\n  port: 7001\nredis:\n  addr: \"10.0.0.5:6379\"\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7001 {
		t.Errorf("port = %d, want 7001 from config file", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "10.0.0.5:6379" {
		t.Errorf("redis addr = %q, want value from config file", cfg.Redis.Addr)
	}
	// Untouched keys keep their defaults.
	if cfg.Index.SweepInterval != time.Hour {
		t.Errorf("sweep interval = %v, want default 1h", cfg.Index.SweepInterval)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"empty redis addr", func(c *Config) { c.Redis.Addr = "" }, true},
		{"negative db", func(c *Config) { c.Redis.DB = -1 }, true},
		{"zero op timeout", func(c *Config) { c.Redis.OpTimeout = 0 }, true},
		{"zero snapshot ttl", func(c *Config) { c.Index.SnapshotTTL = 0 }, true},
		{"zero sweep interval with sweeper on", func(c *Config) { c.Index.SweepInterval = 0 }, true},
		{"zero sweep interval with sweeper off", func(c *Config) {
			c.Index.SweepEnabled = false
			c.Index.SweepInterval = 0
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
