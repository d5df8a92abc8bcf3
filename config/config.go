// Package config loads server settings from an optional YAML file and the
// process environment. Environment values win over the file.
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

const (
	DefaultPort            = 3000
	DefaultModel           = "gpt-4o-mini"
	DefaultBaseURL         = "https://api.openai.com/v1"
	DefaultMaxOutputTokens = 600
	DefaultTimeout         = 60 * time.Second
	DefaultLogLevel        = "info"
)

// Config holds every tunable of the server
type Config struct {
	Port           int       `yaml:"port"`
	AllowedOrigins []string  `yaml:"allowed_origins"`
	LLM            LLMConfig `yaml:"llm"`
	Logging        Logging   `yaml:"logging"`
}

// LLMConfig configures the completion gateway
type LLMConfig struct {
	APIKey          string        `yaml:"api_key,omitempty"`
	BaseURL         string        `yaml:"base_url"`
	Model           string        `yaml:"model"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
	Timeout         time.Duration `yaml:"timeout"`
	TokenBudget     int           `yaml:"token_budget"`
}

// Logging configures the zap logger
type Logging struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Port:           DefaultPort,
		AllowedOrigins: []string{"*"},
		LLM: LLMConfig{
			BaseURL:         DefaultBaseURL,
			Model:           DefaultModel,
			MaxOutputTokens: DefaultMaxOutputTokens,
			Timeout:         DefaultTimeout,
		},
		Logging: Logging{Level: DefaultLogLevel},
	}
}

// Load reads path (if non-empty) over the defaults, then applies
// environment overrides. A missing file is an error only when path was
// given explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Port = port
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("ONBOARD_MAX_OUTPUT_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ONBOARD_MAX_OUTPUT_TOKENS: %w", err)
		}
		c.LLM.MaxOutputTokens = n
	}
	if v := os.Getenv("ONBOARD_TIMEOUT_SEC"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ONBOARD_TIMEOUT_SEC: %w", err)
		}
		c.LLM.Timeout = time.Duration(n) * time.Second
	}
	if v := os.Getenv("ONBOARD_TOKEN_BUDGET"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ONBOARD_TOKEN_BUDGET: %w", err)
		}
		c.LLM.TokenBudget = n
	}
	if v := os.Getenv("ONBOARD_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("ONBOARD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate rejects settings the server cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.LLM.MaxOutputTokens <= 0 {
		errs = append(errs, fmt.Errorf("max_output_tokens must be positive, got %d", c.LLM.MaxOutputTokens))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.LLM.Timeout))
	}
	if c.LLM.TokenBudget < 0 {
		errs = append(errs, fmt.Errorf("token_budget must not be negative, got %d", c.LLM.TokenBudget))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("model is required"))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address for the configured port
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
