// Package config provides configuration loading and validation for probekit.
package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Config holds all settings for one probekit invocation.
type Config struct {
	Name    string            `mapstructure:"name"`
	Target  string            `mapstructure:"target"`
	Method  string            `mapstructure:"method"`
	Headers map[string]string `mapstructure:"headers"`
	Body    string            `mapstructure:"body"`

	Iterations int           `mapstructure:"iterations"`
	Warmup     int           `mapstructure:"warmup"`
	Pace       int           `mapstructure:"pace"`
	Timeout    time.Duration `mapstructure:"timeout"`

	JSONOutput     bool     `mapstructure:"json_output"`
	LogFormat      string   `mapstructure:"log_format"`
	Thresholds     []string `mapstructure:"thresholds"`
	ThresholdFile  string   `mapstructure:"threshold_file"`
	Baseline       string   `mapstructure:"baseline"`
	UpdateBaseline bool     `mapstructure:"update_baseline"`
	TolerancePct   float64  `mapstructure:"tolerance_pct"`

	ConfigFile string        `mapstructure:"-"`
	Tracing    TracingConfig `mapstructure:"tracing"`
}

// TracingConfig controls the optional OpenTelemetry trace exporter.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// Validate checks the configuration for consistency before a run.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Target) == "" {
		return fmt.Errorf("target is required")
	}
	switch c.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodHead, http.MethodOptions:
	default:
		return fmt.Errorf("unsupported HTTP method %q", c.Method)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("iterations must not be negative, got %d", c.Iterations)
	}
	if c.Warmup < 0 {
		return fmt.Errorf("warmup must not be negative, got %d", c.Warmup)
	}
	if c.Pace < 0 {
		return fmt.Errorf("pace must not be negative, got %d", c.Pace)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.TolerancePct < 0 {
		return fmt.Errorf("tolerance_pct must not be negative, got %g", c.TolerancePct)
	}
	switch c.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("unsupported log format %q: use \"console\" or \"json\"", c.LogFormat)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing sample_rate must be between 0.0 and 1.0, got %g", c.Tracing.SampleRate)
	}
	return nil
}
