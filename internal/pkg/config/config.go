package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Session store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Backend BackendConfig
	Session SessionConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type BackendConfig struct {
	// BaseURL is the API root, e.g. https://api.example.com/api/v1.
	BaseURL string `env:"BACKEND_BASE_URL, default=http://localhost:8000/api/v1"`
	// Timeout of zero leaves requests bounded only by the transport.
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=0s"`
}

type SessionConfig struct {
	Store      string        `env:"SESSION_STORE,  default=memory"`
	CookieName string        `env:"SESSION_COOKIE, default=jobsheet_sid"`
	TTL        time.Duration `env:"SESSION_TTL,    default=168h"`
	Secure     bool          `env:"COOKIE_SECURE,  default=false"`
	// Secret enables at-rest sealing of tokens and cookies when set.
	Secret string `env:"SESSION_SECRET"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=jobsheet"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsDevelopment reports whether the process runs with ENV=development.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: BACKEND_BASE_URL must be an absolute URL, got %q", c.Backend.BaseURL)
	}
	switch c.Session.Store {
	case StoreMemory, StoreRedis, StoreMongo:
	default:
		return fmt.Errorf("config: SESSION_STORE must be one of memory, redis, mongo; got %q", c.Session.Store)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive")
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("config: BACKEND_TIMEOUT must not be negative")
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	cfg.Session.Store = strings.ToLower(strings.TrimSpace(cfg.Session.Store))
	cfg.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Backend.BaseURL), "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
