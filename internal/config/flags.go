package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "probekit",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Target flags
	flags.String("name", "", "Label for the benchmark and profile session")
	flags.String("target", "", "Target URL whose dispatch latency is measured")
	flags.String("method", "GET", "HTTP method to use")
	flags.StringSliceP("header", "H", nil, "Additional request header in key=value form")
	flags.String("body", "", "Inline request body payload")

	// Run control flags
	flags.IntP("iterations", "n", 0, "Number of measured invocations (default 100)")
	flags.IntP("warmup", "w", 0, "Unmeasured invocations before sampling starts")
	flags.IntP("pace", "p", 0, "Invocations per second pacing (0 means unpaced)")
	flags.Duration("timeout", 30*time.Second, "Per-invocation timeout")

	// Output and assertion flags
	flags.Bool("json-output", false, "Emit JSON formatted output")
	flags.String("log-format", "console", "Log output format: console or json")
	flags.StringSlice("threshold", nil, "Performance assertion, e.g. 'op_duration:p99 < 5'")
	flags.String("threshold-file", "", "Path to YAML file listing thresholds")
	flags.String("baseline", "", "Path to baseline JSON file for regression comparison")
	flags.Bool("update-baseline", false, "Write this run's result to the baseline file")
	flags.Float64("tolerance", 10.0, "Allowed regression against baseline, in percent")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.Bool("trace", false, "Enable OpenTelemetry trace export for dispatches")
	flags.String("trace-endpoint", "", "OTLP exporter endpoint")
	flags.String("trace-protocol", "grpc", "OTLP protocol: grpc or http")
	flags.Bool("trace-insecure", false, "Disable TLS for the OTLP exporter")
	flags.Float64("trace-sample-rate", 1.0, "Trace sampling ratio between 0.0 and 1.0")

	flags.BoolP("help", "h", false, "Show help")
}

func displayHelp(cmd *cobra.Command) {
	fmt.Fprintln(cmd.OutOrStdout(), "probekit - benchmark and profile request dispatch latency")
	fmt.Fprintln(cmd.OutOrStdout(), "\nUsage:\n  probekit [flags]")
	fmt.Fprintln(cmd.OutOrStdout(), "\nFlags:")
	fmt.Fprint(cmd.OutOrStdout(), cmd.Flags().FlagUsages())
}
