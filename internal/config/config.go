// Package config loads aagen settings from defaults, an optional aagen.toml,
// AAGEN_* environment variables and command-line flags, in increasing order
// of priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/cache"
	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/pipeline"
)

const (
	// DefaultFile is read from the working directory when present.
	DefaultFile = "aagen.toml"
	// EnvPrefix prefixes every environment variable, e.g. AAGEN_CACHE=redis.
	EnvPrefix = "AAGEN_"
)

// Config holds all settings shared by the CLI and the server.
type Config struct {
	LogLevel string `koanf:"log-level"`
	Verbose  bool   `koanf:"verbose"`

	Cache           string        `koanf:"cache"`
	CacheDir        string        `koanf:"cache-dir"`
	CachePrefix     string        `koanf:"cache-prefix"`
	RedisURL        string        `koanf:"redis-url"`
	MongoURI        string        `koanf:"mongo-uri"`
	MongoDatabase   string        `koanf:"mongo-database"`
	MongoCollection string        `koanf:"mongo-collection"`
	MemoryEntries   int           `koanf:"memory-entries"`
	CheckpointTTL   time.Duration `koanf:"checkpoint-ttl"`

	Rules            string  `koanf:"rules"`
	Strategy         string  `koanf:"strategy"`
	DefaultMaxSizeMB float64 `koanf:"default-max-size-mb"`

	Addr string `koanf:"addr"`
}

// Defaults returns the built-in settings.
func Defaults() map[string]any {
	return map[string]any{
		"log-level":           "info",
		"verbose":             false,
		"cache":               cache.BackendFile,
		"cache-dir":           "",
		"cache-prefix":        "",
		"redis-url":           "redis://localhost:6379/0",
		"mongo-uri":           "mongodb://localhost:27017",
		"mongo-database":      "aagen",
		"mongo-collection":    "checkpoints",
		"memory-entries":      cache.DefaultMemoryEntries,
		"checkpoint-ttl":      pipeline.DefaultCheckpointTTL,
		"rules":               "",
		"strategy":            pipeline.DefaultStrategy,
		"default-max-size-mb": 0.0,
		"addr":                ":8080",
	}
}

// RegisterFlags adds the shared settings as flags. Flag defaults mirror
// [Defaults]; only flags the user sets override lower layers.
func RegisterFlags(f *pflag.FlagSet) {
	d := Defaults()
	f.String("config", "", "config file (default: ./"+DefaultFile+" if present)")
	f.String("log-level", d["log-level"].(string), "log level: debug, info, warn, error")
	f.BoolP("verbose", "v", false, "enable verbose logging")
	f.String("cache", d["cache"].(string), "checkpoint cache: file, memory, redis, mongo, none")
	f.String("cache-dir", "", "file cache directory (default: $XDG_CACHE_HOME/aagen)")
	f.String("cache-prefix", "", "key prefix for sharing one cache backend between projects")
	f.String("redis-url", d["redis-url"].(string), "redis connection URL")
	f.String("mongo-uri", d["mongo-uri"].(string), "mongodb connection URI")
	f.String("mongo-database", d["mongo-database"].(string), "mongodb database")
	f.String("mongo-collection", d["mongo-collection"].(string), "mongodb collection")
	f.Int("memory-entries", cache.DefaultMemoryEntries, "in-process cache capacity")
	f.Duration("checkpoint-ttl", pipeline.DefaultCheckpointTTL, "checkpoint lifetime in the cache")
	f.String("rules", "", "rules file (.toml, .yaml or .json)")
	f.String("strategy", pipeline.DefaultStrategy, "source set strategy: reachability, paths")
	f.Float64("default-max-size-mb", 0, "size budget for output rules without max_size_mb (0 = no limit)")
}

// Load resolves the configuration. f may be nil. When f has a non-empty
// --config flag that file must exist; otherwise ./aagen.toml is read if
// present.
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(mapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path, explicit := DefaultFile, false
	if f != nil {
		if p, err := f.GetString("config"); err == nil && p != "" {
			path, explicit = p, true
		}
	}
	if p := os.Getenv(EnvPrefix + "CONFIG"); p != "" && !explicit {
		path, explicit = p, true
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeConfig, err, "load config file %s", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errs.Wrap(errs.ErrCodeConfig, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps AAGEN_CACHE_DIR to cache-dir.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", "-")
}

// Validate checks values koanf cannot type-check.
func (c *Config) Validate() error {
	switch c.Cache {
	case cache.BackendFile, cache.BackendMemory, cache.BackendRedis, cache.BackendMongo, cache.BackendNone:
	default:
		return errs.New(errs.ErrCodeConfig, "unknown cache backend %q", c.Cache)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errs.Wrap(errs.ErrCodeConfig, err, "invalid log level")
	}
	if err := pipeline.ValidateStrategy(c.Strategy); err != nil {
		return err
	}
	if c.DefaultMaxSizeMB < 0 {
		return errs.New(errs.ErrCodeConfig, "default-max-size-mb must not be negative")
	}
	if c.MemoryEntries <= 0 {
		return errs.New(errs.ErrCodeConfig, "memory-entries must be positive")
	}
	return nil
}

// Level returns the effective log level; Verbose forces debug.
func (c *Config) Level() log.Level {
	if c.Verbose {
		return log.DebugLevel
	}
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// CacheOptions converts the cache settings for [cache.Open].
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:    c.Cache,
		Dir:        c.CacheDir,
		MemorySize: c.MemoryEntries,
		Redis:      cache.RedisOptions{URL: c.RedisURL},
		Mongo: cache.MongoOptions{
			URI:        c.MongoURI,
			Database:   c.MongoDatabase,
			Collection: c.MongoCollection,
		},
	}
}

// Keyer returns the checkpoint keyer. A non-empty cache prefix scopes every
// key so several projects can share one backend.
func (c *Config) Keyer() cache.Keyer {
	if c.CachePrefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.CachePrefix)
}

// mapProvider adapts a map to koanf.Provider.
type mapProvider map[string]any

func (p mapProvider) Read() (map[string]any, error) { return p, nil }

func (p mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("not implemented")
}
