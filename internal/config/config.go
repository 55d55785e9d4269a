// Package config loads the application's YAML configuration file into a
// single typed struct, overlaying the file's fields onto a complete set
// of defaults rather than requiring every key to be present.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/netforge-labs/topoforge/internal/cache"
	"github.com/netforge-labs/topoforge/internal/history/neo4j"
	"github.com/netforge-labs/topoforge/internal/history/postgres"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	History   HistoryConfig   `yaml:"history"`
	Cache     CacheConfig     `yaml:"cache"`
	Allocator AllocatorConfig `yaml:"allocator"`
	Log       LogConfig       `yaml:"log"`
}

// CacheConfig controls the optional Redis read cache in front of
// RecentMetrics. Disabled by default; enabling it requires a reachable
// Redis instance at startup.
type CacheConfig struct {
	Enabled bool         `yaml:"enabled"`
	Redis   cache.Config `yaml:"redis"`
}

// ServerConfig controls the HTTP transport (C11).
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	MetricsAddr     string `yaml:"metrics_addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// HistoryConfig selects and configures one of the four history.Store
// backends. Type is one of "sqlite", "postgres", "neo4j", "inmemory".
type HistoryConfig struct {
	Type     string           `yaml:"type"`
	SQLite   SQLiteConfig     `yaml:"sqlite"`
	Postgres postgres.Config  `yaml:"postgres"`
	Neo4j    neo4j.Config     `yaml:"neo4j"`
}

// SQLiteConfig points at the database file the sqlite backend opens.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// AllocatorConfig holds an address range for the allocator (C1). The
// synthesizer does not read it; it always allocates from
// addressing.DefaultLinkRange.
type AllocatorConfig struct {
	CIDR string `yaml:"cidr"`
}

// LogConfig controls the structured logger's verbosity and format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// defaults mirrors the zero-config path a fresh checkout should run under:
// an in-process sqlite file, info-level logging, and a private /16 in
// Allocator.CIDR.
func defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			MetricsAddr:     ":9090",
			ShutdownTimeout: "15s",
		},
		History: HistoryConfig{
			Type:   "sqlite",
			SQLite: SQLiteConfig{Path: "topoforge.db"},
		},
		Cache: CacheConfig{
			Enabled: false,
			Redis:   cache.Config{Addr: "localhost:6379", TTL: 5 * time.Minute},
		},
		Allocator: AllocatorConfig{CIDR: "10.0.0.0/16"},
		Log:       LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads the YAML document at path over a default configuration, so a
// file only needs to mention the fields it overrides. An empty path falls
// back to GetDefaultConfigPath.
func Load(path string) (*Config, error) {
	if path == "" {
		path = GetDefaultConfigPath()
	}

	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return &cfg, nil
}

// GetDefaultConfigPath resolves the config file location: an environment
// variable override, falling back to ./config/topoforge.yaml.
func GetDefaultConfigPath() string {
	if path := os.Getenv("TOPOFORGE_CONFIG_PATH"); path != "" {
		return path
	}
	wd, _ := os.Getwd()
	return filepath.Join(wd, "config", "topoforge.yaml")
}
