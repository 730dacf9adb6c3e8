// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/pitchside/config.yaml",
	"/etc/pitchside/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values. Defaults are
// applied first, then overridden by the config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Warehouse: WarehouseConfig{
			User:             "", // Required
			Password:         "", // Required
			Database:         "", // Required
			Host:             "localhost",
			Port:             5432,
			Schema:           "gold",
			PoolSize:         5,
			MaxOverflow:      10,
			PoolRecycle:      30 * time.Minute,
			ConnectTimeout:   10 * time.Second,
			AcquireTimeout:   5 * time.Second,
			StatementTimeout: 30 * time.Second,
			Echo:             false,
		},
		Cache: CacheConfig{
			MaxEntries:        2048,
			DefaultTTL:        10 * time.Minute,
			FixturesTTL:       5 * time.Minute,
			PredictionsTTL:    5 * time.Minute,
			FormTTL:           10 * time.Minute,
			StatsTTL:          time.Hour,
			StandingsTTL:      time.Hour,
			FreshnessTTL:      time.Minute,
			WarmOnStartup:     true,
			WarmFixturesDays:  7,
			WarmFixturesLimit: 20,
			RefreshPerSecond:  2,
			RefreshBurst:      4,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8090,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		API: APIConfig{
			DefaultFixturesLimit: 50,
			MaxLimit:             200,
			DefaultDaysAhead:     14,
			MaxDaysAhead:         365,
			DefaultFormMatches:   5,
			DefaultH2HMatches:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in values
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: override any setting
//
// Precedence is ENV > file > defaults. The result is validated before return;
// a missing warehouse credential fails here, before any connection attempt.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	// POSTGRES_USER -> warehouse.user, CACHE_MAX_ENTRIES -> cache.max_entries
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths defines which config paths are parsed as comma-separated slices.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]any); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// legacyEnvMap maps the warehouse-style environment variable names (kept for
// compatibility with the data pipeline's .env files) to koanf config paths.
var legacyEnvMap = map[string]string{
	"postgres_user":     "warehouse.user",
	"postgres_password": "warehouse.password",
	"postgres_db":       "warehouse.database",
	"postgres_host":     "warehouse.host",
	"postgres_port":     "warehouse.port",
	"db_pool_size":      "warehouse.pool_size",
	"db_max_overflow":   "warehouse.max_overflow",
	"db_pool_recycle":   "warehouse.pool_recycle",
	"db_echo":           "warehouse.echo",
	"http_host":         "server.host",
	"http_port":         "server.port",
	"log_level":         "logging.level",
	"log_format":        "logging.format",
}

// knownPrefixes are the config sections addressable directly via
// SECTION_FIELD environment variables, e.g. CACHE_MAX_ENTRIES.
var knownPrefixes = []string{"warehouse", "cache", "server", "api", "logging"}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - POSTGRES_USER -> warehouse.user (legacy mapping)
//   - CACHE_MAX_ENTRIES -> cache.max_entries
//   - SERVER_RATE_LIMIT_REQS -> server.rate_limit_reqs
//
// Unrecognized variables return an empty path and are ignored, so unrelated
// environment noise never leaks into the configuration.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if path, ok := legacyEnvMap[key]; ok {
		return path
	}

	for _, prefix := range knownPrefixes {
		if strings.HasPrefix(key, prefix+"_") {
			return prefix + "." + strings.TrimPrefix(key, prefix+"_")
		}
	}

	return ""
}
