package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultWSURL           = "ws://localhost:8765"
	DefaultRestURL         = "http://localhost:8080/api/v1"
	DefaultReconnectDelay  = 5 * time.Second
	DefaultWriteTimeout    = 5 * time.Second
	DefaultBufferSize      = 1024
	DefaultStateBufferSize = 64
	DefaultAPITimeout      = 30 * time.Second
	DefaultMaxRetries      = 3
	DefaultRetryBackoff    = 1 * time.Second
	DefaultCacheTTL        = 24 * time.Hour
	DefaultCacheMaxAge     = 30 * 24 * time.Hour
	DefaultSampleRate      = 44100
	DefaultMIC             = "xnys"
	DefaultServerPort      = 8080
)

func (c *Config) applyDefaults() {
	if c.Stream.WSURL == "" {
		c.Stream.WSURL = DefaultWSURL
	}
	if c.Stream.ReconnectDelay == 0 {
		c.Stream.ReconnectDelay = DefaultReconnectDelay
	}
	if c.Stream.WriteTimeout == 0 {
		c.Stream.WriteTimeout = DefaultWriteTimeout
	}
	if c.Stream.BufferSize == 0 {
		c.Stream.BufferSize = DefaultBufferSize
	}
	if c.Stream.StateBufferSize == 0 {
		c.Stream.StateBufferSize = DefaultStateBufferSize
	}

	if c.History.RestURL == "" {
		c.History.RestURL = DefaultRestURL
	}
	if c.History.Timeout == 0 {
		c.History.Timeout = DefaultAPITimeout
	}
	if c.History.MaxRetries == 0 {
		c.History.MaxRetries = DefaultMaxRetries
	}
	if c.History.RetryBackoff == 0 {
		c.History.RetryBackoff = DefaultRetryBackoff
	}

	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Cache.MaxAge == 0 {
		c.Cache.MaxAge = DefaultCacheMaxAge
	}

	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = DefaultSampleRate
	}

	if c.Session.MIC == "" {
		c.Session.MIC = DefaultMIC
	}

	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
}
