package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// envOverrides are endpoint settings the environment may override after
// the file is read (SONIFIER_WS_URL, SONIFIER_REST_URL, ...).
type envOverrides struct {
	WSURL         string `envconfig:"WS_URL"`
	RestURL       string `envconfig:"REST_URL"`
	RedisURL      string `envconfig:"REDIS_URL"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	APIKey        string `envconfig:"API_KEY"`
}

// Load reads a YAML config file and expands ${VAR} environment
// variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config, applies environment overrides, and
// fills in default values.
func LoadWithDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config, applies overrides and defaults, and
// validates.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	var env envOverrides
	if err := envconfig.Process("sonifier", &env); err != nil {
		return fmt.Errorf("process env overrides: %w", err)
	}

	if env.WSURL != "" {
		c.Stream.WSURL = env.WSURL
	}
	if env.RestURL != "" {
		c.History.RestURL = env.RestURL
	}
	if env.RedisURL != "" {
		c.Cache.RedisURL = env.RedisURL
	}
	if env.RedisPassword != "" {
		c.Cache.RedisPassword = env.RedisPassword
	}
	if env.APIKey != "" {
		c.History.APIKey = env.APIKey
	}
	return nil
}
