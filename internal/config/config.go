package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPPort           string        `yaml:"http_port"`
	APIBaseURL         string        `yaml:"api_base_url"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
	MaxRequestBodySize int64         `yaml:"max_request_body_size"`

	StorageBackend string `yaml:"storage_backend"` // sqlite, redis or memory
	SQLitePath     string `yaml:"sqlite_path"`
	RedisAddr      string `yaml:"redis_addr"`
	RedisPassword  string `yaml:"redis_password"`
	RedisDB        int    `yaml:"redis_db"`
	Namespace      string `yaml:"namespace"`

	// CheckoutDelay simulates the payment round trip before an order is written.
	CheckoutDelay time.Duration `yaml:"checkout_delay"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogFile   string `yaml:"log_file"`
}

func defaults() *Config {
	return &Config{
		HTTPPort:           "8080",
		APIBaseURL:         "http://localhost:5000/api",
		RequestTimeout:     30 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		MaxRequestBodySize: 1 << 20, // 1MB
		StorageBackend:     "sqlite",
		SQLitePath:         "./storefront.db",
		RedisAddr:          "localhost:6379",
		Namespace:          "storefront",
		CheckoutDelay:      1500 * time.Millisecond,
		LogLevel:           "info",
		LogFormat:          "json",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// STOREFRONT_CONFIG (if set), then environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("STOREFRONT_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	c.HTTPPort = getEnv("HTTP_PORT", c.HTTPPort)
	c.APIBaseURL = getEnv("API_BASE_URL", c.APIBaseURL)
	c.StorageBackend = getEnv("STORAGE_BACKEND", c.StorageBackend)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.Namespace = getEnv("STORAGE_NAMESPACE", c.Namespace)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)

	var err error
	if c.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", c.RequestTimeout); err != nil {
		return err
	}
	if c.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout); err != nil {
		return err
	}
	if c.CheckoutDelay, err = getDuration("CHECKOUT_DELAY", c.CheckoutDelay); err != nil {
		return err
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		c.RedisDB = db
	}
	return nil
}

func (c *Config) validate() error {
	if _, err := strconv.Atoi(c.HTTPPort); err != nil {
		return fmt.Errorf("invalid HTTP_PORT %q", c.HTTPPort)
	}
	switch c.StorageBackend {
	case "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL must not be empty")
	}
	if c.CheckoutDelay < 0 {
		return fmt.Errorf("checkout delay must not be negative")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.RequestTimeout <= c.CheckoutDelay {
		return fmt.Errorf("request timeout %s must exceed checkout delay %s", c.RequestTimeout, c.CheckoutDelay)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
