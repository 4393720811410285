package api

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the service configuration, loaded from YAML with
// environment overrides for secrets and deploy-time values.
type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port" validate:"min=1,max=65535"`
	} `yaml:"server"`

	Backend struct {
		BaseURL        string `yaml:"base_url" validate:"required,url"`
		Token          string `yaml:"token"`
		TimeoutSeconds int    `yaml:"timeout_seconds" validate:"min=1,max=600"`
	} `yaml:"backend"`

	Auth struct {
		Enabled bool   `yaml:"enabled"`
		Secret  string `yaml:"secret" validate:"required_if=Enabled true"`
	} `yaml:"auth"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`

	Canvas struct {
		Width  float64 `yaml:"width" validate:"min=100"`
		Height float64 `yaml:"height" validate:"min=100"`
	} `yaml:"canvas"`

	MaxBodyBytes int64 `yaml:"max_body_bytes" validate:"min=1024"`
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Backend.BaseURL = "http://localhost:8000"
	cfg.Backend.TimeoutSeconds = 90
	cfg.Canvas.Width = 1920
	cfg.Canvas.Height = 1080
	cfg.MaxBodyBytes = 4 << 20
	return cfg
}

// LoadConfig reads the YAML file at path, applies environment
// overrides, and validates the result. An empty path loads defaults
// plus overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ATLAS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ATLAS_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("ATLAS_BACKEND_TOKEN"); v != "" {
		cfg.Backend.Token = v
	}
	if v := os.Getenv("ATLAS_AUTH_SECRET"); v != "" {
		cfg.Auth.Enabled = true
		cfg.Auth.Secret = v
	}
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// BackendTimeout returns the backend timeout as a duration
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}
