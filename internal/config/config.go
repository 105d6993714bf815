// Package config loads comprehend's settings from a YAML file, then
// applies COMPREHEND_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/grading"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/llm"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/store"
)

// Config is the full application configuration.
type Config struct {
	LLM     llm.Config    `yaml:"llm"`
	Grading GradingConfig `yaml:"grading"`
	Store   StoreConfig   `yaml:"store"`
	Passage PassageConfig `yaml:"passage"`
	Log     LogConfig     `yaml:"log"`
}

// GradingConfig controls how answers are graded.
type GradingConfig struct {
	// Policy applies when the semantic grader fails: accept-answer,
	// use-local-matcher or reject.
	Policy        string        `yaml:"policy"`
	Timeout       time.Duration `yaml:"timeout"`
	MinTermLength int           `yaml:"min_term_length"`
	// Offline skips the LLM entirely: questions come from the built-in
	// bank and answers are graded by the matcher.
	Offline bool `yaml:"offline"`
}

// StoreConfig selects the KV backend.
type StoreConfig struct {
	Backend string      `yaml:"backend"` // sqlite, redis or memory
	Path    string      `yaml:"path"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type PassageConfig struct {
	// Path to a passage YAML file. Empty uses the built-in passage.
	Path string `yaml:"path"`
}

type LogConfig struct {
	Mode string `yaml:"mode"` // dev or prod
	Path string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LLM: llm.DefaultConfig(),
		Grading: GradingConfig{
			Policy:        string(grading.PolicyAcceptAnswer),
			Timeout:       20 * time.Second,
			MinTermLength: grading.DefaultMinTermLength,
		},
		Store: StoreConfig{
			Backend: "sqlite",
			Redis:   RedisConfig{Prefix: "comprehend:"},
		},
		Log: LogConfig{Mode: "prod"},
	}
}

// Dir returns $XDG_CONFIG_HOME/comprehend, or ~/.config/comprehend.
func Dir() (string, error) {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return filepath.Join(d, "comprehend"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "comprehend"), nil
}

// DefaultPath is the config file location used when none is given.
func DefaultPath() (string, error) {
	if p := os.Getenv("COMPREHEND_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads path (or DefaultPath when empty) over the defaults, applies
// environment overrides and validates the result. A missing file is not
// an error.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays COMPREHEND_* variables.
func (c *Config) ApplyEnv() error {
	c.LLM.ApplyEnv()

	str := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str(&c.Grading.Policy, "COMPREHEND_GRADING_POLICY")
	str(&c.Store.Backend, "COMPREHEND_STORE")
	str(&c.Store.Redis.Addr, "COMPREHEND_REDIS_ADDR")
	str(&c.Store.Redis.Password, "COMPREHEND_REDIS_PASSWORD")
	str(&c.Passage.Path, "COMPREHEND_PASSAGE")
	str(&c.Log.Mode, "COMPREHEND_LOG_MODE")
	str(&c.Log.Path, "COMPREHEND_LOG_PATH")

	if v := os.Getenv("COMPREHEND_GRADING_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("COMPREHEND_GRADING_TIMEOUT: %w", err)
		}
		c.Grading.Timeout = d
	}
	if v := os.Getenv("COMPREHEND_OFFLINE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("COMPREHEND_OFFLINE: %w", err)
		}
		c.Grading.Offline = b
	}
	return nil
}

// Validate checks the non-LLM sections. The LLM section is validated when
// a provider is built, since offline mode never needs one.
func (c *Config) Validate() error {
	if _, err := grading.ParsePolicy(c.Grading.Policy); err != nil {
		return err
	}
	if c.Grading.Timeout < 0 {
		return fmt.Errorf("grading.timeout must not be negative")
	}
	if c.Grading.MinTermLength < 0 {
		return fmt.Errorf("grading.min_term_length must not be negative")
	}
	switch c.Store.Backend {
	case "sqlite", "memory":
	case "redis":
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q (want sqlite, redis or memory)", c.Store.Backend)
	}
	switch c.Log.Mode {
	case "dev", "prod":
	default:
		return fmt.Errorf("unknown log mode %q (want dev or prod)", c.Log.Mode)
	}
	return nil
}

// GradingPolicy returns the parsed unavailable policy.
func (c *Config) GradingPolicy() grading.UnavailablePolicy {
	p, err := grading.ParsePolicy(c.Grading.Policy)
	if err != nil {
		return grading.PolicyAcceptAnswer
	}
	return p
}

// LogPath is the configured log file, defaulting to the data dir so the
// TUI keeps the terminal.
func (c *Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	dir, err := store.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "comprehend.log"), nil
}

// Save writes cfg to path as YAML, creating the directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
