// Package config loads the agentforge settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given. A missing default file is not an error.
const DefaultPath = "agentforge.yaml"

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the full application configuration.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // text or json

	// Catalog is an optional YAML/JSON option catalog replacing the embedded one.
	Catalog       string        `yaml:"catalog"`
	PhaseDuration time.Duration `yaml:"phase_duration"`

	Store    StoreConfig    `yaml:"store"`
	HTTP     HTTPConfig     `yaml:"http"`
	Security SecurityConfig `yaml:"security"`
}

// StoreConfig selects where sessions are persisted.
type StoreConfig struct {
	Kind  string      `yaml:"kind"`
	Dir   string      `yaml:"dir"`
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
	Lock     bool          `yaml:"lock"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// SecurityConfig configures the store middleware.
type SecurityConfig struct {
	// EncryptionKey is a base64 AES-256 key. Empty disables encryption.
	EncryptionKey string   `yaml:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys"`
	// Redact lists regular expressions of draft keys masked before saving.
	// Empty means the secret fields of the schema rules.
	Redact []string `yaml:"redact"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:      "info",
		LogFormat:     "text",
		PhaseDuration: 800 * time.Millisecond,
		Store: StoreConfig{
			Kind: StoreMemory,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// When path is DefaultPath and the file does not exist, only the defaults
// and the environment are used.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
	default:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from AGENTFORGE_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		if v, ok := lookup(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			*dst = d
		}
		return nil
	}

	str("AGENTFORGE_LOG_LEVEL", &c.LogLevel)
	str("AGENTFORGE_LOG_FORMAT", &c.LogFormat)
	str("AGENTFORGE_CATALOG", &c.Catalog)
	str("AGENTFORGE_STORE", &c.Store.Kind)
	str("AGENTFORGE_STORE_DIR", &c.Store.Dir)
	str("AGENTFORGE_REDIS_ADDR", &c.Store.Redis.Addr)
	str("AGENTFORGE_REDIS_PASSWORD", &c.Store.Redis.Password)
	str("AGENTFORGE_REDIS_PREFIX", &c.Store.Redis.Prefix)
	str("AGENTFORGE_HTTP_ADDR", &c.HTTP.Addr)
	str("AGENTFORGE_ENCRYPTION_KEY", &c.Security.EncryptionKey)

	if err := dur("AGENTFORGE_PHASE_DURATION", &c.PhaseDuration); err != nil {
		return err
	}
	if err := dur("AGENTFORGE_REDIS_TTL", &c.Store.Redis.TTL); err != nil {
		return err
	}
	if v, ok := lookup("AGENTFORGE_REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AGENTFORGE_REDIS_DB: %w", err)
		}
		c.Store.Redis.DB = db
	}
	if v, ok := lookup("AGENTFORGE_REDIS_LOCK"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid AGENTFORGE_REDIS_LOCK: %w", err)
		}
		c.Store.Redis.Lock = b
	}
	if v, ok := lookup("AGENTFORGE_REDACT"); ok {
		c.Security.Redact = splitList(v)
	}
	return nil
}

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	switch c.Store.Kind {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown store kind '%s' (expected memory, file or redis)", c.Store.Kind)
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format '%s'", c.LogFormat)
	}
	if c.PhaseDuration < 0 {
		return fmt.Errorf("phase_duration must not be negative")
	}
	if c.Store.Redis.TTL < 0 {
		return fmt.Errorf("store.redis.ttl must not be negative")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
