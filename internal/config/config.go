// Package config loads maitre settings from a YAML file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/maitre/internal/logging"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given. A missing default file is not an error.
const DefaultPath = "maitre.yaml"

// Config holds all application configuration.
type Config struct {
	LogLevel string        `yaml:"log_level"`
	OpenAI   OpenAIConfig  `yaml:"openai"`
	Booking  ServiceConfig `yaml:"booking"`
	SMS      ServiceConfig `yaml:"sms"`
	Redis    RedisConfig   `yaml:"redis"`
	Server   ServerConfig  `yaml:"server"`
}

// OpenAIConfig configures the extraction model.
type OpenAIConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// ServiceConfig configures a simulated provider.
type ServiceConfig struct {
	FailureRate float64 `yaml:"failure_rate"`
}

// RedisConfig enables the distributed lock and shared booking ledger when Addr is set.
type RedisConfig struct {
	Addr    string        `yaml:"addr"`
	Prefix  string        `yaml:"prefix"`
	LockTTL time.Duration `yaml:"lock_ttl"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		OpenAI: OpenAIConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			Timeout:     30 * time.Second,
		},
		Booking: ServiceConfig{FailureRate: 0.05},
		SMS:     ServiceConfig{FailureRate: 0.03},
		Redis: RedisConfig{
			Prefix:  "maitre:",
			LockTTL: 30 * time.Second,
		},
		Server: ServerConfig{Port: "8080"},
	}
}

// Load builds the configuration: defaults, then the YAML file at path, then
// .env, then environment variables. An empty path means DefaultPath.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := cfg.loadFile(path, explicit); err != nil {
		return nil, err
	}

	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.OpenAI.APIKey = getEnv("OPENAI_API_KEY", c.OpenAI.APIKey)
	c.OpenAI.Model = getEnv("MODEL_NAME", c.OpenAI.Model)
	c.OpenAI.BaseURL = getEnv("OPENAI_BASE_URL", c.OpenAI.BaseURL)
	c.Redis.Addr = getEnv("MAITRE_REDIS_ADDR", c.Redis.Addr)
	c.Server.Port = getEnv("MAITRE_PORT", c.Server.Port)
	c.LogLevel = getEnv("MAITRE_LOG_LEVEL", c.LogLevel)
	c.Booking.FailureRate = getEnvFloat("MAITRE_BOOKING_FAILURE_RATE", c.Booking.FailureRate)
	c.SMS.FailureRate = getEnvFloat("MAITRE_SMS_FAILURE_RATE", c.SMS.FailureRate)
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.OpenAI.Model == "" {
		return fmt.Errorf("openai.model cannot be empty")
	}
	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		return fmt.Errorf("openai.temperature must be within [0, 2]")
	}
	if c.OpenAI.Timeout <= 0 {
		return fmt.Errorf("openai.timeout must be > 0")
	}
	if c.Booking.FailureRate < 0 || c.Booking.FailureRate > 1 {
		return fmt.Errorf("booking.failure_rate must be within [0, 1]")
	}
	if c.SMS.FailureRate < 0 || c.SMS.FailureRate > 1 {
		return fmt.Errorf("sms.failure_rate must be within [0, 1]")
	}
	if c.Redis.Addr != "" && c.Redis.LockTTL <= 0 {
		return fmt.Errorf("redis.lock_ttl must be > 0")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server.port cannot be empty")
	}
	return nil
}

// RequireAPIKey reports a helpful error when no OpenAI key is configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set (use the environment, a .env file or openai.api_key in %s)", DefaultPath)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}
