// Package baseline stores benchmark results on disk and compares fresh runs
// against them to detect performance regressions.
package baseline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gofrs/flock"
	"github.com/tidwall/gjson"

	"github.com/probekit/probekit/internal/bench"
)

// Delta describes how one metric moved against the stored baseline.
type Delta struct {
	Metric    string  `json:"metric"`
	Baseline  float64 `json:"baseline"`
	Current   float64 `json:"current"`
	ChangePct float64 `json:"change_pct"`
	Regressed bool    `json:"regressed"`
}

// Save writes the benchmark result to path as indented JSON. The write is
// guarded by a sibling lock file so concurrent CI jobs do not interleave.
func Save(path string, res bench.Result) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock baseline %s: %w", path, err)
	}
	defer lock.Unlock()

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode baseline: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write baseline %s: %w", path, err)
	}
	return nil
}

// comparedFields maps delta names to the JSON paths queried in the stored
// baseline document.
var comparedFields = []struct {
	name string
	path string
}{
	{"mean_ms", "mean_ms"},
	{"p50_ms", "p50_ms"},
	{"p99_ms", "p99_ms"},
	{"max_ms", "max_ms"},
	{"total_allocated_bytes", "total_allocated_bytes"},
}

// Compare loads the baseline at path and reports per-metric deltas for the
// given result. A delta is marked Regressed when the current value exceeds
// the baseline by more than tolerancePct percent. Metrics missing from the
// baseline document are skipped, so older baselines keep working.
func Compare(path string, res bench.Result, tolerancePct float64) ([]Delta, error) {
	lock := flock.New(path + ".lock")
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock baseline %s: %w", path, err)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read baseline %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("baseline %s is not valid JSON", path)
	}

	current := map[string]float64{
		"mean_ms":               res.MeanMs,
		"p50_ms":                res.P50Ms,
		"p99_ms":                res.P99Ms,
		"max_ms":                res.MaxMs,
		"total_allocated_bytes": float64(res.TotalAllocatedBytes),
	}

	deltas := make([]Delta, 0, len(comparedFields))
	for _, f := range comparedFields {
		v := gjson.GetBytes(data, f.path)
		if !v.Exists() {
			continue
		}
		base := v.Float()
		cur := current[f.name]

		var changePct float64
		if base > 0 {
			changePct = (cur - base) / base * 100
		}
		deltas = append(deltas, Delta{
			Metric:    f.name,
			Baseline:  base,
			Current:   cur,
			ChangePct: changePct,
			Regressed: changePct > tolerancePct,
		})
	}
	return deltas, nil
}

// AnyRegressed reports whether at least one delta exceeded tolerance.
func AnyRegressed(deltas []Delta) bool {
	for _, d := range deltas {
		if d.Regressed {
			return true
		}
	}
	return false
}
