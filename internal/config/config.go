// Package config loads client and server settings.
//
// Priority (highest to lowest):
//  1. Command line flags bound to viper keys
//  2. Environment variables (VITRINA_ for the client, VITRINA_SERVER_ for the server)
//  3. config.toml
//  4. Built-in defaults
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Env prefixes
const (
	ClientEnvPrefix = "VITRINA"
	ServerEnvPrefix = "VITRINA_SERVER"
)

// Storage backends
const (
	BackendBolt   = "bolt"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	Prefix   string
	DB       int
}

// StorageConfig selects the local mirror backend
type StorageConfig struct {
	Backend string // bolt, memory, redis
	Path    string // bbolt file
	Redis   RedisConfig
	Quota   int64 // bytes, 0 = unlimited
}

// ClientConfig holds CLI configuration
type ClientConfig struct {
	ServerURL string
	APIKey    string
	Log       LogConfig
	Storage   StorageConfig
	Timeout   time.Duration
}

// RateLimitConfig holds per-client rate limiting settings
type RateLimitConfig struct {
	RPS     float64
	Burst   int
	Enabled bool
}

// ServerConfig holds record store server configuration
type ServerConfig struct {
	Address         string
	DBPath          string
	JWTSecret       string
	Log             LogConfig
	RateLimit       RateLimitConfig
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// NewViper creates a viper instance reading config.toml (or file, when set)
// and environment variables with the given prefix.
func NewViper(prefix, file string) (*viper.Viper, error) {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.vitrina")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// LoadClient builds the client configuration from v
func LoadClient(v *viper.Viper) (*ClientConfig, error) {
	cfg := &ClientConfig{
		ServerURL: v.GetString("server"),
		APIKey:    v.GetString("api_key"),
		Timeout:   v.GetDuration("timeout"),
		Storage: StorageConfig{
			Backend: v.GetString("storage.backend"),
			Path:    v.GetString("storage.path"),
			Quota:   v.GetInt64("storage.quota"),
			Redis: RedisConfig{
				Addr:     v.GetString("storage.redis.addr"),
				Password: v.GetString("storage.redis.password"),
				DB:       v.GetInt("storage.redis.db"),
				Prefix:   v.GetString("storage.redis.prefix"),
			},
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}

	applyClientDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadServer builds the server configuration from v
func LoadServer(v *viper.Viper) (*ServerConfig, error) {
	cfg := &ServerConfig{
		Address:         v.GetString("address"),
		DBPath:          v.GetString("db"),
		JWTSecret:       v.GetString("jwt_secret"),
		ReadTimeout:     v.GetDuration("http.read_timeout"),
		WriteTimeout:    v.GetDuration("http.write_timeout"),
		ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		RateLimit: RateLimitConfig{
			Enabled: v.GetBool("rate_limit.enabled"),
			RPS:     v.GetFloat64("rate_limit.rps"),
			Burst:   v.GetInt("rate_limit.burst"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}

	applyServerDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyClientDefaults sets default values for any empty client fields
func applyClientDefaults(cfg *ClientConfig) {
	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://localhost:8080"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendBolt
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "vitrina.db"
	}
	if cfg.Storage.Redis.Addr == "" {
		cfg.Storage.Redis.Addr = "localhost:6379"
	}
	applyLogDefaults(&cfg.Log, "warn")
}

// applyServerDefaults sets default values for any empty server fields
func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Address == "" {
		cfg.Address = ":8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "vitrina-server.db"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 15 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.RateLimit.RPS == 0 {
		cfg.RateLimit.RPS = 20
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 40
	}
	applyLogDefaults(&cfg.Log, "info")
}

func applyLogDefaults(l *LogConfig, level string) {
	if l.Level == "" {
		l.Level = level
	}
	if l.Format == "" {
		l.Format = "console"
	}
	if l.Output == "" {
		l.Output = "stderr"
	}
}

// validate performs validation on the client configuration
func (c *ClientConfig) validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server must be an http(s) URL, got %q", c.ServerURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	switch c.Storage.Backend {
	case BackendBolt, BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("storage.backend must be one of %s, %s, %s; got %q",
			BackendBolt, BackendMemory, BackendRedis, c.Storage.Backend)
	}
	if c.Storage.Quota < 0 {
		return fmt.Errorf("storage.quota cannot be negative")
	}
	return nil
}

// validate performs validation on the server configuration
func (c *ServerConfig) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("jwt_secret must be at least 32 characters")
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit.rps and rate_limit.burst cannot be negative")
	}
	return nil
}
