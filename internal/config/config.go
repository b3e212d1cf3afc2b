package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	CatalogRemote = "remote"
	CatalogLocal  = "local"

	RateStoreMemory = "memory"
	RateStoreSQLite = "sqlite"
)

// Config is the deckbuilder configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Decks     DecksConfig     `yaml:"decks"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type CatalogConfig struct {
	Source  string        `yaml:"source"`   // "remote" or "local"
	BaseURL string        `yaml:"base_url"` // remote card API endpoint
	DataDir string        `yaml:"data_dir"` // CSV directory for the local catalog
	Timeout time.Duration `yaml:"timeout"`
}

type RateLimitConfig struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
	Store  string        `yaml:"store"` // "memory" or "sqlite"
}

type DecksConfig struct {
	SaveLimit int `yaml:"save_limit"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: "data/decks.db"},
		Catalog: CatalogConfig{
			Source:  CatalogRemote,
			BaseURL: "https://db.ygoprodeck.com/api/v7/cardinfo.php",
			DataDir: "data",
			Timeout: 12 * time.Second,
		},
		RateLimit: RateLimitConfig{Limit: 10, Window: time.Minute, Store: RateStoreMemory},
		Decks:     DecksConfig{SaveLimit: 10},
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. A missing file is not an error; an empty path skips
// the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if v := os.Getenv("DECKBUILDER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DECKBUILDER_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("DECKBUILDER_DATA_DIR"); v != "" {
		c.Catalog.DataDir = v
	}
	if v := os.Getenv("DECKBUILDER_CATALOG_URL"); v != "" {
		c.Catalog.BaseURL = v
	}
	if v := os.Getenv("DECKBUILDER_CATALOG_SOURCE"); v != "" {
		c.Catalog.Source = v
	}
	if v := os.Getenv("DECKBUILDER_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getEnvInt("DECKBUILDER_RATE_LIMIT"); v > 0 {
		c.RateLimit.Limit = v
	}
	if v := getEnvInt("DECKBUILDER_SAVE_LIMIT"); v >= 0 {
		c.Decks.SaveLimit = v
	}
}

// getEnvInt returns -1 when key is unset or not a number.
func getEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return -1
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.Catalog.Source {
	case CatalogRemote, CatalogLocal:
	default:
		return fmt.Errorf("catalog.source must be %q or %q, got %q", CatalogRemote, CatalogLocal, c.Catalog.Source)
	}
	switch c.RateLimit.Store {
	case RateStoreMemory, RateStoreSQLite:
	default:
		return fmt.Errorf("rate_limit.store must be %q or %q, got %q", RateStoreMemory, RateStoreSQLite, c.RateLimit.Store)
	}
	if c.RateLimit.Limit <= 0 {
		return fmt.Errorf("rate_limit.limit must be positive")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive")
	}
	if c.Decks.SaveLimit < 0 {
		return fmt.Errorf("decks.save_limit must not be negative")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	return nil
}
