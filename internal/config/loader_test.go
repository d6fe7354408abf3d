package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/probekit/probekit/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.NewLoader().Load([]string{"--target", "https://example.com"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Target != "https://example.com" {
		t.Errorf("Target = %q", cfg.Target)
	}
	if cfg.Method != "GET" {
		t.Errorf("Method = %q, want GET", cfg.Method)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %s, want 30s", cfg.Timeout)
	}
	if cfg.LogFormat != "console" {
		t.Errorf("LogFormat = %q, want console", cfg.LogFormat)
	}
	if cfg.TolerancePct != 10.0 {
		t.Errorf("TolerancePct = %g, want 10", cfg.TolerancePct)
	}
	if cfg.Tracing.Protocol != "grpc" || cfg.Tracing.SampleRate != 1.0 {
		t.Errorf("unexpected tracing defaults: %+v", cfg.Tracing)
	}
	if cfg.Name != "GET https://example.com" {
		t.Errorf("Name = %q", cfg.Name)
	}
}

func TestLoadNoArgsShowsHelp(t *testing.T) {
	_, err := config.NewLoader().Load(nil)
	if !errors.Is(err, config.ErrHelpRequested) {
		t.Fatalf("expected ErrHelpRequested, got %v", err)
	}
}

func TestLoadHelpFlag(t *testing.T) {
	_, err := config.NewLoader().Load([]string{"--help"})
	if !errors.Is(err, config.ErrHelpRequested) {
		t.Fatalf("expected ErrHelpRequested, got %v", err)
	}
}

func TestLoadFlags(t *testing.T) {
	cfg, err := config.NewLoader().Load([]string{
		"--name", "checkout",
		"--target", "https://example.com/checkout",
		"--method", "post",
		"--body", `{"sku":"x"}`,
		"-n", "500",
		"-w", "10",
		"-p", "50",
		"--timeout", "5s",
		"--json-output",
		"--threshold", "op_duration:p99 < 5",
		"--threshold", "op_alloc:total < 1048576",
		"--baseline", "base.json",
		"--update-baseline",
		"--tolerance", "25",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Name != "checkout" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.Method != "POST" {
		t.Errorf("Method = %q, want POST (upper-cased)", cfg.Method)
	}
	if cfg.Iterations != 500 || cfg.Warmup != 10 || cfg.Pace != 50 {
		t.Errorf("run shape = %d/%d/%d", cfg.Iterations, cfg.Warmup, cfg.Pace)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %s", cfg.Timeout)
	}
	if !cfg.JSONOutput {
		t.Error("expected JSONOutput set")
	}
	if len(cfg.Thresholds) != 2 {
		t.Errorf("Thresholds = %v", cfg.Thresholds)
	}
	if cfg.Baseline != "base.json" || !cfg.UpdateBaseline || cfg.TolerancePct != 25 {
		t.Errorf("baseline settings = %q/%v/%g", cfg.Baseline, cfg.UpdateBaseline, cfg.TolerancePct)
	}
}

func TestLoadHeaders(t *testing.T) {
	cfg, err := config.NewLoader().Load([]string{
		"--target", "https://example.com",
		"-H", "authorization=Bearer tok",
		"-H", "x-request-id=abc",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.Headers["Authorization"]; got != "Bearer tok" {
		t.Errorf("Authorization = %q", got)
	}
	if got := cfg.Headers["X-Request-Id"]; got != "abc" {
		t.Errorf("X-Request-Id = %q", got)
	}
}

func TestLoadInvalidHeader(t *testing.T) {
	_, err := config.NewLoader().Load([]string{
		"--target", "https://example.com",
		"-H", "no-separator",
	})
	if err == nil {
		t.Fatal("expected error for header without key=value")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "probekit.yaml")
	content := `
target: https://example.com/api
method: POST
iterations: 250
warmup: 5
headers:
  Accept: application/json
thresholds:
  - "op_duration:p99 < 10"
tracing:
  enabled: true
  endpoint: localhost:4317
  sample_rate: 0.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.NewLoader().Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Target != "https://example.com/api" || cfg.Method != "POST" {
		t.Errorf("target/method = %q/%q", cfg.Target, cfg.Method)
	}
	if cfg.Iterations != 250 || cfg.Warmup != 5 {
		t.Errorf("iterations/warmup = %d/%d", cfg.Iterations, cfg.Warmup)
	}
	if cfg.Headers["Accept"] != "application/json" {
		t.Errorf("Headers = %v", cfg.Headers)
	}
	if len(cfg.Thresholds) != 1 {
		t.Errorf("Thresholds = %v", cfg.Thresholds)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.Endpoint != "localhost:4317" || cfg.Tracing.SampleRate != 0.5 {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "probekit.yaml")
	content := "target: https://example.com\niterations: 100\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.NewLoader().Load([]string{"--config", path, "-n", "999"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Iterations != 999 {
		t.Errorf("expected flag to override file, got iterations=%d", cfg.Iterations)
	}
	if cfg.Target != "https://example.com" {
		t.Errorf("expected file target preserved, got %q", cfg.Target)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := config.NewLoader().Load([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")})
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}
