// Package output renders benchmark and profile reports.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/probekit/probekit/internal/baseline"
	"github.com/probekit/probekit/internal/bench"
	"github.com/probekit/probekit/internal/profile"
	"github.com/probekit/probekit/internal/threshold"
)

// PrintReport outputs a human-readable benchmark summary.
func PrintReport(w io.Writer, res bench.Result) {
	fmt.Fprintln(w, "\n--- Benchmark Results ---")
	fmt.Fprintf(w, "Request Type:      %s\n", res.RequestType)
	if res.HandlerType != "" {
		fmt.Fprintf(w, "Handler Type:      %s\n", res.HandlerType)
	}
	fmt.Fprintf(w, "Iterations:        %d\n", res.Iterations)
	fmt.Fprintf(w, "Started:           %s\n", res.Timestamp.Format("2006-01-02 15:04:05.000"))
	fmt.Fprintf(w, "Total Time:        %s\n", res.TotalTime)
	fmt.Fprintf(w, "Allocated:         %d bytes (%.1f/iteration)\n", res.TotalAllocatedBytes, res.AllocatedPerIteration())
	fmt.Fprintln(w, "\nLatency:")
	fmt.Fprintf(w, "  Min:             %s\n", res.MinTime)
	fmt.Fprintf(w, "  Max:             %s\n", res.MaxTime)
	fmt.Fprintf(w, "  Mean:            %s\n", res.MeanTime)
	fmt.Fprintf(w, "  StdDev:          %s\n", res.StandardDeviation)
	fmt.Fprintf(w, "  P50:             %s\n", res.P50Time)
	fmt.Fprintf(w, "  P90:             %s\n", res.P90Time)
	fmt.Fprintf(w, "  P99:             %s\n", res.P99Time)
}

// PrintSessionReport outputs a human-readable profile session summary.
func PrintSessionReport(w io.Writer, stats profile.SessionStats) {
	fmt.Fprintln(w, "\n--- Profile Session ---")
	fmt.Fprintf(w, "Session:           %s (%s)\n", stats.SessionName, stats.SessionID)
	fmt.Fprintf(w, "Window:            %s\n", stats.Duration)
	fmt.Fprintf(w, "Operations:        %d\n", stats.Operations)
	fmt.Fprintf(w, "Total Memory:      %d bytes\n", stats.TotalMemoryUsed)
	fmt.Fprintf(w, "Total Allocations: %d\n", stats.TotalAllocations)
	if stats.Operations > 0 {
		fmt.Fprintln(w, "\nOperation Duration:")
		fmt.Fprintf(w, "  Min:             %s\n", stats.MinDuration)
		fmt.Fprintf(w, "  Max:             %s\n", stats.MaxDuration)
		fmt.Fprintf(w, "  Mean:            %s\n", stats.AverageDuration)
		fmt.Fprintf(w, "  StdDev:          %s\n", stats.StdDev)
	}
}

// PrintThresholdResults outputs one line per evaluated threshold.
func PrintThresholdResults(w io.Writer, results []threshold.Result) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintln(w, "\nThresholds:")
	for _, r := range results {
		fmt.Fprintf(w, "  %s\n", r.Message)
	}
}

// PrintDeltas outputs the baseline comparison table.
func PrintDeltas(w io.Writer, deltas []baseline.Delta) {
	if len(deltas) == 0 {
		return
	}
	fmt.Fprintln(w, "\nBaseline Comparison:")
	for _, d := range deltas {
		marker := " "
		if d.Regressed {
			marker = "!"
		}
		fmt.Fprintf(w, "  %s %-22s baseline=%.2f current=%.2f (%+.1f%%)\n",
			marker, d.Metric, d.Baseline, d.Current, d.ChangePct)
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
