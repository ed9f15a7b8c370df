package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/colexalia/colexalia-backend/pkg/logger"
	"gopkg.in/yaml.v3"
)

// Config holds the whole application configuration.
// Values come from configs/config.<APP_ENV>.yaml and are then overridden by environment variables.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	OAuth     OAuthConfig     `yaml:"oauth"`
	Pricing   PricingConfig   `yaml:"pricing"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port int    `yaml:"port" env:"PORT"`
	Mode string `yaml:"mode" env:"APP_ENV"`
}

// DatabaseConfig selects MySQL (production) or SQLite (local development).
type DatabaseConfig struct {
	Driver          string `yaml:"driver" env:"DB_DRIVER"`
	Host            string `yaml:"host" env:"DB_HOST"`
	Port            int    `yaml:"port" env:"DB_PORT"`
	User            string `yaml:"user" env:"DB_USER"`
	Password        string `yaml:"password" env:"DB_PASSWORD"`
	Name            string `yaml:"name" env:"DB_NAME"`
	Path            string `yaml:"path" env:"DB_PATH"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // seconds
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED"`
	Host     string `yaml:"host" env:"REDIS_HOST"`
	Port     int    `yaml:"port" env:"REDIS_PORT"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
	PoolSize int    `yaml:"pool_size"`
}

type JWTConfig struct {
	Secret     string        `yaml:"secret" env:"JWT_SECRET"`
	AccessTTL  time.Duration `yaml:"access_ttl" env:"JWT_ACCESS_TTL"`
	RefreshTTL time.Duration `yaml:"refresh_ttl" env:"JWT_REFRESH_TTL"`
}

// OAuthConfig configures the broker that signs federated Google ID tokens.
type OAuthConfig struct {
	Google GoogleOAuthConfig `yaml:"google"`
}

type GoogleOAuthConfig struct {
	Secret string `yaml:"secret" env:"OAUTH_GOOGLE_SECRET"`
	Issuer string `yaml:"issuer" env:"OAUTH_GOOGLE_ISSUER"`
}

// PricingConfig configures the third-party price API. An empty APIToken switches to simulated data.
type PricingConfig struct {
	APIToken          string        `yaml:"api_token" env:"PRICECHARTING_API_TOKEN"`
	BaseURL           string        `yaml:"base_url" env:"PRICECHARTING_BASE_URL"`
	Timeout           time.Duration `yaml:"timeout" env:"PRICECHARTING_TIMEOUT"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"PRICECHARTING_RPS"`
	CacheTTL          time.Duration `yaml:"cache_ttl" env:"PRICECHARTING_CACHE_TTL"`
	AffiliateID       string        `yaml:"affiliate_id" env:"EBAY_AFFILIATE_ID"`
	Breaker           BreakerConfig `yaml:"breaker"`
}

type BreakerConfig struct {
	MaxRequests      uint32        `yaml:"max_requests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold uint32        `yaml:"failure_threshold"`
}

type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins" env:"CORS_ALLOW_ORIGINS"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
	RequestsPerMinute int  `yaml:"requests_per_minute" env:"RATE_LIMIT_RPM"`
}

// Load reads the YAML file at path, applies environment overrides and fills defaults.
// A missing file is not an error; defaults and environment variables still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		logger.Warn("config file %s not found, using defaults and environment", path)
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "local"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "colexalia.db"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 10
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 50
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.JWT.AccessTTL == 0 {
		c.JWT.AccessTTL = 15 * time.Minute
	}
	if c.JWT.RefreshTTL == 0 {
		c.JWT.RefreshTTL = 7 * 24 * time.Hour
	}
	if c.Pricing.BaseURL == "" {
		c.Pricing.BaseURL = "https://api.pricecharting.com/api"
	}
	if c.Pricing.Timeout == 0 {
		c.Pricing.Timeout = 30 * time.Second
	}
	if c.Pricing.Breaker.MaxRequests == 0 {
		c.Pricing.Breaker.MaxRequests = 1
	}
	if c.Pricing.Breaker.Interval == 0 {
		c.Pricing.Breaker.Interval = 60 * time.Second
	}
	if c.Pricing.Breaker.Timeout == 0 {
		c.Pricing.Breaker.Timeout = 30 * time.Second
	}
	if c.Pricing.Breaker.FailureThreshold == 0 {
		c.Pricing.Breaker.FailureThreshold = 5
	}
	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = 120
	}
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("jwt.secret (JWT_SECRET) is required outside development")
		}
		c.JWT.Secret = "local-development-secret"
	}
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	return nil
}

// IsDevelopment reports whether the server runs in a local or development environment
func (c *Config) IsDevelopment() bool {
	switch c.Server.Mode {
	case "local", "dev", "development", "test":
		return true
	}
	return false
}

// GetDSN returns the MySQL DSN
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// LogResolved prints the effective configuration without secrets
func LogResolved(c *Config) {
	pricingMode := "live"
	if c.Pricing.APIToken == "" {
		pricingMode = "simulated"
	}
	logger.Info("Config: server.port=%d mode=%s", c.Server.Port, c.Server.Mode)
	if c.Database.Driver == "sqlite" {
		logger.Info("Config: database=sqlite path=%s", c.Database.Path)
	} else {
		logger.Info("Config: database=mysql %s:%d/%s", c.Database.Host, c.Database.Port, c.Database.Name)
	}
	logger.Info("Config: redis.enabled=%t %s:%d", c.Redis.Enabled, c.Redis.Host, c.Redis.Port)
	logger.Info("Config: pricing=%s base_url=%s timeout=%s cache_ttl=%s", pricingMode, c.Pricing.BaseURL, c.Pricing.Timeout, c.Pricing.CacheTTL)
	logger.Info("Config: oauth.google=%t", c.OAuth.Google.Secret != "")
}
