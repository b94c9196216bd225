package config

import "fmt"

// APIConfig contains the status server configuration.
type APIConfig struct {
	Enabled bool            `yaml:"enabled" mapstructure:"enabled"`
	Server  APIServerConfig `yaml:"server" mapstructure:"server"`
}

// APIServerConfig contains HTTP server settings.
type APIServerConfig struct {
	Listen      string          `yaml:"listen" mapstructure:"listen"`
	CORSOrigins []string        `yaml:"cors_origins,omitempty" mapstructure:"cors_origins"`
	RateLimit   RateLimitConfig `yaml:"rate_limit,omitempty" mapstructure:"rate_limit"`
}

// RateLimitConfig configures per-IP rate limiting.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" mapstructure:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// Validate checks the API configuration for errors.
func (c *APIConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Server.Listen == "" {
		return fmt.Errorf("api.server.listen is required when the api is enabled")
	}

	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("api.server.rate_limit.requests_per_minute must be positive, got %d",
			c.Server.RateLimit.RequestsPerMinute)
	}

	return nil
}
