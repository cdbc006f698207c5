// Package config loads inkhub settings from inkhub.yaml, .env files and
// INKHUB_* environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/goliatone/go-inkhub/components/kvstore"
)

// EnvPrefix prefixes every environment override, INKHUB_LISTEN for listen.
const EnvPrefix = "INKHUB"

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config is the server and CLI configuration.
type Config struct {
	Listen   string `mapstructure:"listen" json:"listen"`
	BasePath string `mapstructure:"base_path" json:"base_path"`
	Locale   string `mapstructure:"locale" json:"locale"`
	Manifest string `mapstructure:"manifest" json:"manifest"`
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	Metrics  bool   `mapstructure:"metrics" json:"metrics"`
	Store    Store  `mapstructure:"store" json:"store"`
	Source   Source `mapstructure:"source" json:"source"`
}

// Store selects the preference store.
type Store struct {
	Driver        string `mapstructure:"driver" json:"driver"`
	DSN           string `mapstructure:"dsn" json:"dsn"`
	RedisAddr     string `mapstructure:"redis_addr" json:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" json:"-"`
	RedisDB       int    `mapstructure:"redis_db" json:"redis_db"`
	Prefix        string `mapstructure:"prefix" json:"prefix"`
}

// Source configures the upstream REST API. An empty BaseURL disables it.
type Source struct {
	BaseURL  string `mapstructure:"base_url" json:"base_url"`
	Token    string `mapstructure:"token" json:"-"`
	Fixtures string `mapstructure:"fixtures" json:"fixtures"`
}

var defaults = map[string]any{
	"listen":               ":8080",
	"base_path":            "/admin",
	"locale":               "en",
	"manifest":             "",
	"log_level":            "info",
	"metrics":              true,
	"store.driver":         StoreMemory,
	"store.dsn":            "",
	"store.redis_addr":     "localhost:6379",
	"store.redis_password": "",
	"store.redis_db":       0,
	"store.prefix":         "inkhub:",
	"source.base_url":      "",
	"source.token":         "",
	"source.fixtures":      "",
}

// Load reads .env files, then path (or ./inkhub.yaml when path is empty and
// the file exists), then the environment. Later sources win.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = godotenv.Load(".env.local")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("inkhub")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read inkhub.yaml: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks driver names, DSNs and the locale tag.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreMemory, StoreRedis:
	case StoreSQLite, StorePostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("config: store.dsn is required for %s", c.Store.Driver)
		}
	default:
		return fmt.Errorf("config: unsupported store driver %q", c.Store.Driver)
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("config: locale %q: %w", c.Locale, err)
	}
	return nil
}

// Language returns the parsed locale, English when unparsable.
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// Level maps LogLevel to a slog level.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Open builds the configured store. The returned func releases it.
func (s Store) Open(ctx context.Context) (kvstore.Store, func() error, error) {
	noop := func() error { return nil }
	switch s.Driver {
	case "", StoreMemory:
		return kvstore.NewMemoryStore(), noop, nil
	case StoreSQLite, StorePostgres:
		store, err := kvstore.Open(ctx, kvstore.Dialect(s.Driver), s.DSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case StoreRedis:
		rdb := redis.NewClient(&redis.Options{Addr: s.RedisAddr, Password: s.RedisPassword, DB: s.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("config: redis ping %s: %w", s.RedisAddr, err)
		}
		return kvstore.NewRedisStore(rdb, s.Prefix), rdb.Close, nil
	}
	return nil, nil, fmt.Errorf("config: unsupported store driver %q", s.Driver)
}
