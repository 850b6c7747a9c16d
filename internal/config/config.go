// Package config provides application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultTokenSecret is the development fallback for JWT_SECRET.
	// It must never be used outside development.
	DefaultTokenSecret = "dev-secret"

	defaultDemoURL = "https://demo-api.ig.com/gateway/deal"
	defaultLiveURL = "https://api.ig.com/gateway/deal"
)

// ErrInsecureSecret is returned by Validate when production runs with the default secret.
var ErrInsecureSecret = errors.New("JWT_SECRET must be set in production")

// Config holds the application configuration.
type Config struct {
	// Server settings
	Port string `yaml:"port"`
	Host string `yaml:"host"`

	// IG settings
	IG IGConfig `yaml:"ig"`

	// Local access token settings
	TokenSecret string        `yaml:"token_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`

	// Dashboard assets and CORS
	StaticDir   string   `yaml:"static_dir"`
	CORSOrigins []string `yaml:"cors_origins"`

	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	// Only enable it behind a reverse proxy that overwrites those headers.
	TrustProxy bool `yaml:"trust_proxy"`

	Log LogConfig `yaml:"log"`

	// AuditCapacity is how many audit entries are kept in memory.
	AuditCapacity int `yaml:"audit_capacity"`

	// Environment
	IsDevelopment bool `yaml:"-"`
}

// IGConfig holds the vendor endpoints.
type IGConfig struct {
	DemoURL     string        `yaml:"demo_url"`
	LiveURL     string        `yaml:"live_url"`
	Environment string        `yaml:"environment"`
	Timeout     time.Duration `yaml:"timeout"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // "text" or "json"
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Load reads an optional .env file, then the YAML file named by CONFIG_FILE,
// then applies environment variable overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Port: "3001",
		Host: "localhost",
		IG: IGConfig{
			DemoURL:     defaultDemoURL,
			LiveURL:     defaultLiveURL,
			Environment: "demo",
			Timeout:     30 * time.Second,
		},
		TokenSecret: DefaultTokenSecret,
		TokenTTL:    24 * time.Hour,
		CORSOrigins: []string{"*"},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 14,
		},
		AuditCapacity: 500,
		IsDevelopment: true,
	}
}

// loadFile overlays the YAML file at path onto the config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.Host = getEnv("HOST", c.Host)

	c.IG.DemoURL = strings.TrimSuffix(getEnv("IG_DEMO_URL", c.IG.DemoURL), "/")
	c.IG.LiveURL = strings.TrimSuffix(getEnv("IG_LIVE_URL", c.IG.LiveURL), "/")
	c.IG.Environment = getEnv("IG_ENV", c.IG.Environment)
	c.IG.Timeout = getEnvDuration("IG_TIMEOUT", c.IG.Timeout)

	c.TokenSecret = getEnv("JWT_SECRET", c.TokenSecret)
	c.TokenTTL = getEnvDuration("TOKEN_TTL", c.TokenTTL)

	c.StaticDir = getEnv("STATIC_DIR", c.StaticDir)
	c.TrustProxy = getEnvBool("TRUST_PROXY", c.TrustProxy)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.CORSOrigins = splitList(origins)
	}

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Log.File = getEnv("LOG_FILE", c.Log.File)
	c.Log.MaxSizeMB = getEnvInt("LOG_MAX_SIZE_MB", c.Log.MaxSizeMB)
	c.Log.MaxBackups = getEnvInt("LOG_MAX_BACKUPS", c.Log.MaxBackups)
	c.Log.MaxAgeDays = getEnvInt("LOG_MAX_AGE_DAYS", c.Log.MaxAgeDays)

	c.AuditCapacity = getEnvInt("AUDIT_CAPACITY", c.AuditCapacity)

	c.IsDevelopment = getEnv("ENV", "development") == "development"
}

// Address returns the full address to bind the server to.
func (c *Config) Address() string {
	return c.Host + ":" + c.Port
}

// InsecureSecret reports whether the token secret is the development default.
func (c *Config) InsecureSecret() bool {
	return c.TokenSecret == "" || c.TokenSecret == DefaultTokenSecret
}

// Validate checks the config for deployment misconfiguration.
func (c *Config) Validate() error {
	if c.InsecureSecret() && !c.IsDevelopment {
		return ErrInsecureSecret
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL)
	}
	if c.IG.DemoURL == "" || c.IG.LiveURL == "" {
		return errors.New("IG gateway URLs must not be empty")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
