// Package config loads the sonifier configuration from YAML with
// environment-variable expansion, applies defaults, overrides endpoints
// from the environment, and validates the result.
package config

import "time"

// Config is the root configuration for a sonifier instance.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	Stream   StreamConfig   `yaml:"stream"`
	History  HistoryConfig  `yaml:"history"`
	Cache    CacheConfig    `yaml:"cache"`
	Audio    AudioConfig    `yaml:"audio"`
	Session  SessionConfig  `yaml:"session"`
	Playback PlaybackConfig `yaml:"playback"`
	Server   ServerConfig   `yaml:"server"`
}

// InstanceConfig identifies this sonifier.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// StreamConfig holds the live stream connection settings.
type StreamConfig struct {
	WSURL           string        `yaml:"ws_url"`
	ReconnectDelay  time.Duration `yaml:"reconnect_delay"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	BufferSize      int           `yaml:"buffer_size"`
	StateBufferSize int           `yaml:"state_buffer_size"`
}

// HistoryConfig holds the historical data API settings.
type HistoryConfig struct {
	RestURL      string        `yaml:"rest_url"`
	APIKey       string        `yaml:"api_key"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// CacheConfig holds the two-tier candle cache settings. An empty
// RedisURL disables the hot tier; an empty SQLitePath disables the cold
// tier.
type CacheConfig struct {
	RedisURL      string        `yaml:"redis_url"`
	RedisPassword string        `yaml:"redis_password"`
	TTL           time.Duration `yaml:"ttl"`
	SQLitePath    string        `yaml:"sqlite_path"`
	MaxAge        time.Duration `yaml:"max_age"`
}

// AudioConfig holds synthesis and output settings.
type AudioConfig struct {
	SampleRate int `yaml:"sample_rate"`

	// Output opens the system audio device. When false the engine is
	// driven by a real-time pump instead, keeping the clock honest.
	Output bool `yaml:"output"`

	// CapturePath, when set, writes the rendered session as a WAV file
	// on shutdown.
	CapturePath string `yaml:"capture_path"`
}

// SessionConfig holds the trading-hours gate settings.
type SessionConfig struct {
	MIC     string `yaml:"mic"`
	Enforce bool   `yaml:"enforce"`
}

// PlaybackConfig holds playback policy settings.
type PlaybackConfig struct {
	ReassertOnReconnect bool `yaml:"reassert_on_reconnect"`
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}
