// cmd/adrtool/config.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/CaptainTux/VATSIM-TDLS-backend/catalog"
	"github.com/CaptainTux/VATSIM-TDLS-backend/util"
)

// Config is adrtool's JSON configuration file; most fields can be
// overridden from the command line.
type Config struct {
	LogLevel string        `json:"log_level"`
	LogDir   string        `json:"log_dir"`
	NavData  []string      `json:"navdata"`
	Catalog  CatalogConfig `json:"catalog"`
	Cache    CacheConfig   `json:"cache"`
}

type CatalogConfig struct {
	// Backend is one of "memory" (catalog files), "sqlite", "postgres",
	// or "snapshot" (a catalog object in a storage backend).
	Backend string                `json:"backend"`
	Paths   []string              `json:"paths"`
	DSN     string                `json:"dsn"`
	Storage catalog.StorageConfig `json:"storage"`
	Object  string                `json:"object"`
}

// CacheConfig controls caching of catalog query results; a zero Size
// disables caching.
type CacheConfig struct {
	Size int    `json:"size"`
	TTL  string `json:"ttl"`
}

var catalogBackends = []string{"memory", "sqlite", "postgres", "snapshot"}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Catalog:  CatalogConfig{Backend: "memory"},
		Cache:    CacheConfig{TTL: "5m"},
	}
}

// LoadConfig returns the default configuration updated with the contents
// of the given file, if path is non-empty.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	r, err := util.OpenFile(path)
	if err != nil {
		return cfg, err
	}
	defer r.Close()

	if err := util.UnmarshalJSON(r, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c CacheConfig) Duration() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 0
	}
	return d
}

func (c *Config) Check(e *util.ErrorLogger) {
	e.Push("config")
	defer e.Pop()

	c.Catalog.Backend = strings.ToLower(c.Catalog.Backend)
	if !slices.Contains(catalogBackends, c.Catalog.Backend) {
		e.ErrorString("catalog backend %q unknown; must be one of %s", c.Catalog.Backend,
			strings.Join(catalogBackends, ", "))
	}

	switch c.Catalog.Backend {
	case "memory":
		if len(c.Catalog.Paths) == 0 {
			e.ErrorString("no catalog paths specified for \"memory\" backend")
		}
	case "sqlite", "postgres":
		if c.Catalog.DSN == "" {
			e.ErrorString("no dsn specified for %q backend", c.Catalog.Backend)
		}
	case "snapshot":
		if c.Catalog.Object == "" {
			e.ErrorString("no object specified for \"snapshot\" backend")
		}
	}

	if c.Cache.Size < 0 {
		e.ErrorString("cache size %d must not be negative", c.Cache.Size)
	}
	if c.Cache.Size > 0 {
		if d, err := time.ParseDuration(c.Cache.TTL); err != nil {
			e.ErrorString("cache ttl %q: %v", c.Cache.TTL, err)
		} else if d <= 0 {
			e.ErrorString("cache ttl %q must be positive", c.Cache.TTL)
		}
	}
}
