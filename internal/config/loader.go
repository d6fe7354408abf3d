package config

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and an optional configuration file to
// produce a Config. Flags set on the command line override file settings.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	cfg := &Config{
		Method:       "GET",
		Headers:      map[string]string{},
		Timeout:      30 * time.Second,
		LogFormat:    "console",
		TolerancePct: 10.0,
		ConfigFile:   configPath,
		Tracing:      TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}

	if configPath != "" {
		v := viper.New()
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		}
		cfg.ConfigFile = configPath
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))
	cfg.Target = strings.TrimSpace(cfg.Target)
	if cfg.Name == "" {
		cfg.Name = fmt.Sprintf("%s %s", cfg.Method, cfg.Target)
	}
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}

	return cfg, nil
}

// applyFlagOverrides copies explicitly-set flags over file-derived settings.
func applyFlagOverrides(cfg *Config, flags *pflag.FlagSet) error {
	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "name":
			cfg.Name, _ = flags.GetString("name")
		case "target":
			cfg.Target, _ = flags.GetString("target")
		case "method":
			cfg.Method, _ = flags.GetString("method")
		case "header":
			var pairs []string
			pairs, _ = flags.GetStringSlice("header")
			err = mergeHeaders(cfg, pairs)
		case "body":
			cfg.Body, _ = flags.GetString("body")
		case "iterations":
			cfg.Iterations, _ = flags.GetInt("iterations")
		case "warmup":
			cfg.Warmup, _ = flags.GetInt("warmup")
		case "pace":
			cfg.Pace, _ = flags.GetInt("pace")
		case "timeout":
			cfg.Timeout, _ = flags.GetDuration("timeout")
		case "json-output":
			cfg.JSONOutput, _ = flags.GetBool("json-output")
		case "log-format":
			cfg.LogFormat, _ = flags.GetString("log-format")
		case "threshold":
			cfg.Thresholds, _ = flags.GetStringSlice("threshold")
		case "threshold-file":
			cfg.ThresholdFile, _ = flags.GetString("threshold-file")
		case "baseline":
			cfg.Baseline, _ = flags.GetString("baseline")
		case "update-baseline":
			cfg.UpdateBaseline, _ = flags.GetBool("update-baseline")
		case "tolerance":
			cfg.TolerancePct, _ = flags.GetFloat64("tolerance")
		case "trace":
			cfg.Tracing.Enabled, _ = flags.GetBool("trace")
		case "trace-endpoint":
			cfg.Tracing.Endpoint, _ = flags.GetString("trace-endpoint")
		case "trace-protocol":
			cfg.Tracing.Protocol, _ = flags.GetString("trace-protocol")
		case "trace-insecure":
			cfg.Tracing.Insecure, _ = flags.GetBool("trace-insecure")
		case "trace-sample-rate":
			cfg.Tracing.SampleRate, _ = flags.GetFloat64("trace-sample-rate")
		}
	})
	return err
}

func mergeHeaders(cfg *Config, pairs []string) error {
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || strings.TrimSpace(key) == "" {
			return fmt.Errorf("invalid header %q: expected key=value", pair)
		}
		cfg.Headers[http.CanonicalHeaderKey(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return nil
}
