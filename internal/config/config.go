// Package config loads moodify settings from an optional YAML file and the
// environment.
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

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Log formats.
const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
)

var ErrMissingCredentials = errors.New("spotify client id and secret are required")

type SpotifyConfig struct {
	ClientID     string `json:"client_id"     yaml:"client_id"`
	ClientSecret string `json:"client_secret" yaml:"client_secret"`
	Market       string `json:"market"        yaml:"market"`
	TokenURL     string `json:"token_url"     yaml:"token_url"`
	BaseURL      string `json:"base_url"      yaml:"base_url"`

	Timeout       time.Duration `json:"timeout"        yaml:"timeout"`
	MaxRetries    uint64        `json:"max_retries"    yaml:"max_retries"`
	RetryInterval time.Duration `json:"retry_interval" yaml:"retry_interval"`
}

type ServerConfig struct {
	Port            int           `json:"port"             yaml:"port"`
	ClientURL       string        `json:"client_url"       yaml:"client_url"`
	ReadTimeout     time.Duration `json:"read_timeout"     yaml:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"    yaml:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"     yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `json:"level"  yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

type CacheConfig struct {
	TTL     time.Duration `json:"ttl"      yaml:"ttl"` // 0 disables the cache
	MaxSize int64         `json:"max_size" yaml:"max_size"`
}

type StorageConfig struct {
	Driver         string `json:"driver"          yaml:"driver"`
	DatabaseURL    string `json:"database_url"    yaml:"database_url"`
	SQLitePath     string `json:"sqlite_path"     yaml:"sqlite_path"`
	MemoryCapacity int    `json:"memory_capacity" yaml:"memory_capacity"`
}

type Config struct {
	Spotify SpotifyConfig `json:"spotify" yaml:"spotify"`
	Server  ServerConfig  `json:"server"  yaml:"server"`
	Log     LogConfig     `json:"log"     yaml:"log"`
	Cache   CacheConfig   `json:"cache"   yaml:"cache"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Spotify: SpotifyConfig{
			Market:        "US",
			Timeout:       10 * time.Second,
			MaxRetries:    3,
			RetryInterval: 500 * time.Millisecond,
		},
		Server: ServerConfig{
			Port:            5000,
			ClientURL:       "http://localhost:3000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: FormatPretty,
		},
		Cache: CacheConfig{
			TTL:     5 * time.Minute,
			MaxSize: 500,
		},
		Storage: StorageConfig{
			Driver:         DriverMemory,
			SQLitePath:     "moodify.db",
			MemoryCapacity: 1000,
		},
	}
}

func (cfg *Config) validate() error {
	switch cfg.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if cfg.Storage.DatabaseURL == "" {
			return errors.New("database url is empty")
		}
	case DriverSQLite:
		if cfg.Storage.SQLitePath == "" {
			return errors.New("sqlite path is empty")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	switch cfg.Log.Format {
	case FormatPretty, FormatJSON:
	default:
		return fmt.Errorf("unknown log format %q", cfg.Log.Format)
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", cfg.Server.Port)
	}

	for name, d := range map[string]time.Duration{
		"read timeout":     cfg.Server.ReadTimeout,
		"write timeout":    cfg.Server.WriteTimeout,
		"idle timeout":     cfg.Server.IdleTimeout,
		"shutdown timeout": cfg.Server.ShutdownTimeout,
		"spotify timeout":  cfg.Spotify.Timeout,
		"retry interval":   cfg.Spotify.RetryInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	if cfg.Cache.TTL < 0 {
		return errors.New("cache ttl must not be negative")
	}

	if cfg.Spotify.Market == "" {
		return errors.New("spotify market is empty")
	}

	return nil
}

// RequireCredentials reports whether the provider credentials are set.
// Commands that never call the provider skip this check.
func (cfg *Config) RequireCredentials() error {
	if cfg.Spotify.ClientID == "" || cfg.Spotify.ClientSecret == "" {
		return ErrMissingCredentials
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (cfg *Config) Addr() string {
	return ":" + strconv.Itoa(cfg.Server.Port)
}

// Load reads the optional YAML file at filePath, then applies environment
// overrides through lookup. An empty filePath starts from Default.
func Load(filePath string, lookup func(string) (string, bool)) (*Config, error) {
	var data []byte
	if filePath != "" {
		var err error
		data, err = os.ReadFile(filePath)
		if nil != err {
			return nil, fmt.Errorf("failed to read config file %q: %v", filePath, err)
		}
	}

	return parse(data, lookup)
}

func parse(data []byte, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); nil != err {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}

	if err := cfg.applyEnv(lookup); nil != err {
		return nil, err
	}

	if err := cfg.validate(); nil != err {
		return nil, fmt.Errorf("validation failed: %v", err)
	}

	return &cfg, nil
}

func (cfg *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("SPOTIFY_CLIENT_ID", &cfg.Spotify.ClientID)
	str("SPOTIFY_CLIENT_SECRET", &cfg.Spotify.ClientSecret)
	str("SPOTIFY_MARKET", &cfg.Spotify.Market)
	str("CLIENT_URL", &cfg.Server.ClientURL)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("STORAGE_DRIVER", &cfg.Storage.Driver)
	str("DATABASE_URL", &cfg.Storage.DatabaseURL)
	str("SQLITE_PATH", &cfg.Storage.SQLitePath)

	if v, ok := lookup("PORT"); ok && strings.TrimSpace(v) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if nil != err {
			return fmt.Errorf("invalid PORT %q: %v", v, err)
		}
		cfg.Server.Port = port
	}

	if v, ok := lookup("CACHE_TTL"); ok && strings.TrimSpace(v) != "" {
		ttl, err := parseDuration(strings.TrimSpace(v))
		if nil != err {
			return fmt.Errorf("invalid CACHE_TTL %q: %v", v, err)
		}
		cfg.Cache.TTL = ttl
	}

	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	cfg.Storage.Driver = strings.ToLower(cfg.Storage.Driver)
	return nil
}

// parseDuration accepts Go durations ("90s") and bare seconds ("90").
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); nil == err {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}
