package domain

import (
	"fmt"
	"net/url"
	"time"
)

const defaultBackendTimeout = 30 * time.Second

// EffectiveTimeout returns the request timeout, falling back to the default
// when the configured value is missing or nonsensical.
func (b BackendSettings) EffectiveTimeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return defaultBackendTimeout
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// Validate checks the configuration for unusable values. The loader runs
// it once after unmarshalling, before anything else sees the config.
func (c Config) Validate() error {
	if c.Backend.Endpoint == "" {
		return fmt.Errorf("backend.endpoint is empty")
	}
	parsed, err := url.Parse(c.Backend.Endpoint)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("backend.endpoint %q is not an http(s) URL", c.Backend.Endpoint)
	}
	if c.Backend.Model == "" {
		return fmt.Errorf("backend.model is empty")
	}
	if c.Backend.AuthEnvVar == "" {
		return fmt.Errorf("backend.auth_env_var is empty")
	}
	if c.Backend.MaxTokens < 0 {
		return fmt.Errorf("backend.max_tokens is negative")
	}
	if c.Backend.Temperature < 0 || c.Backend.Temperature > 2 {
		return fmt.Errorf("backend.temperature %v is outside [0, 2]", c.Backend.Temperature)
	}
	if c.Backend.TimeoutSeconds < 0 {
		return fmt.Errorf("backend.timeout is negative")
	}
	return nil
}
