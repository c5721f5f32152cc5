// Tripgrid - Geospatial Trip Telemetry Ingestion and Analytics
// Copyright 2026 Tripgrid Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/tripgrid/tripgrid

package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tripgrid/config.yaml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// envKeys maps environment variables to config keys. Variables not listed
// here are ignored by the env provider. REDIS_DB_NUM is kept un-prefixed for
// compatibility with deployments that select a test namespace through it.
var envKeys = map[string]string{
	"REDIS_DB_NUM":                  "redis.db",
	"TRIPGRID_REDIS_ADDR":           "redis.addr",
	"TRIPGRID_REDIS_PASSWORD":       "redis.password",
	"TRIPGRID_HOST":                 "server.host",
	"TRIPGRID_PORT":                 "server.port",
	"TRIPGRID_RATE_LIMIT_PER_MIN":   "server.requests_per_minute",
	"TRIPGRID_SWEEP_ENABLED":        "index.sweep_enabled",
	"LOG_LEVEL":                     "log.level",
	"LOG_FORMAT":                    "log.format",
	"LOG_CALLER":                    "log.caller",
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: loading defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: loading %s: %w", path, err)
		}
	}

	// Env vars override everything. The callback translates known variables
	// to config keys; returning "" drops unrelated variables.
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("config: loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findConfigFile returns the config file to load, or "" when none exists.
func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
