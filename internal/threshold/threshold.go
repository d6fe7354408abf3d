// Package threshold evaluates performance assertions against benchmark
// results, so CI jobs can fail a run that got slower or hungrier.
package threshold

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/probekit/probekit/internal/bench"
)

// Threshold represents a performance assertion that can pass or fail.
type Threshold struct {
	Metric    string  // "op_duration" or "op_alloc"
	Aggregate string  // e.g. "p99", "mean", "stddev", "total"
	Operator  string  // "<", "<=", ">", ">=", "=="
	Value     float64 // the value to compare against
	Raw       string  // original threshold string for display
}

// Result represents the outcome of evaluating a threshold.
type Result struct {
	Threshold Threshold
	Actual    float64
	Pass      bool
	Message   string
}

// Evaluator evaluates thresholds against a benchmark result.
type Evaluator struct {
	thresholds []Threshold
}

// NewEvaluator creates a new threshold evaluator.
func NewEvaluator(thresholds []Threshold) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// Evaluate checks all thresholds against the provided benchmark result.
func (e *Evaluator) Evaluate(res bench.Result) []Result {
	if len(e.thresholds) == 0 {
		return nil
	}

	results := make([]Result, 0, len(e.thresholds))
	for _, t := range e.thresholds {
		results = append(results, e.evaluateOne(t, res))
	}
	return results
}

func (e *Evaluator) evaluateOne(t Threshold, res bench.Result) Result {
	actual, err := extractMetricValue(t, res)
	if err != nil {
		return Result{
			Threshold: t,
			Actual:    0,
			Pass:      false,
			Message:   fmt.Sprintf("error: %v", err),
		}
	}

	pass := compareValues(actual, t.Operator, t.Value)
	status := "✓"
	if !pass {
		status = "✗"
	}

	message := fmt.Sprintf("%s %s: %.2f %s %.2f", status, t.Raw, actual, t.Operator, t.Value)
	return Result{
		Threshold: t,
		Actual:    actual,
		Pass:      pass,
		Message:   message,
	}
}

// Parse parses a threshold string into a Threshold struct.
// Supported formats:
//   - "op_duration:p99 < 5"            (latency percentile in ms)
//   - "op_duration:mean < 2"           (mean latency in ms)
//   - "op_duration:stddev < 0.5"       (standard deviation in ms)
//   - "op_alloc:total < 1048576"       (total allocated bytes)
//   - "op_alloc:per_iteration < 4096"  (mean bytes per invocation)
func Parse(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Threshold{}, fmt.Errorf("empty threshold string")
	}

	pattern := regexp.MustCompile(`^([a-z_]+):([a-z0-9_]+)\s*([<>=!]+)\s*([0-9.]+)$`)
	matches := pattern.FindStringSubmatch(s)
	if matches == nil {
		return Threshold{}, fmt.Errorf("invalid threshold format: %q (expected metric:aggregate operator value, e.g. 'op_duration:p99 < 5')", s)
	}

	metric := matches[1]
	aggregate := matches[2]
	operator := matches[3]
	valueStr := matches[4]

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold value %q: %v", valueStr, err)
	}

	if err := validateSelector(metric, aggregate); err != nil {
		return Threshold{}, err
	}
	if !isValidOperator(operator) {
		return Threshold{}, fmt.Errorf("unsupported operator: %q (supported: <, <=, >, >=, ==)", operator)
	}

	return Threshold{
		Metric:    metric,
		Aggregate: aggregate,
		Operator:  operator,
		Value:     value,
		Raw:       s,
	}, nil
}

// ParseMultiple parses multiple threshold strings.
func ParseMultiple(thresholds []string) ([]Threshold, error) {
	if len(thresholds) == 0 {
		return nil, nil
	}

	result := make([]Threshold, 0, len(thresholds))
	var errs []string

	for i, s := range thresholds {
		t, err := Parse(s)
		if err != nil {
			errs = append(errs, fmt.Sprintf("threshold[%d]: %v", i, err))
			continue
		}
		result = append(result, t)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("threshold parsing errors: %s", strings.Join(errs, "; "))
	}

	return result, nil
}

var durationAggregates = []string{"min", "max", "mean", "avg", "stddev", "total", "p50", "p90", "p95", "p99"}

var allocAggregates = []string{"total", "per_iteration"}

func validateSelector(metric, aggregate string) error {
	switch metric {
	case "op_duration":
		for _, v := range durationAggregates {
			if aggregate == v {
				return nil
			}
		}
		return fmt.Errorf("unsupported aggregate %q for op_duration (supported: %s)", aggregate, strings.Join(durationAggregates, ", "))
	case "op_alloc":
		for _, v := range allocAggregates {
			if aggregate == v {
				return nil
			}
		}
		return fmt.Errorf("unsupported aggregate %q for op_alloc (supported: %s)", aggregate, strings.Join(allocAggregates, ", "))
	default:
		return fmt.Errorf("unsupported metric: %q (supported: op_duration, op_alloc)", metric)
	}
}

func isValidOperator(operator string) bool {
	switch operator {
	case "<", "<=", ">", ">=", "==":
		return true
	}
	return false
}

func extractMetricValue(t Threshold, res bench.Result) (float64, error) {
	switch t.Metric {
	case "op_duration":
		switch t.Aggregate {
		case "min":
			return res.MinMs, nil
		case "max":
			return res.MaxMs, nil
		case "mean", "avg":
			return res.MeanMs, nil
		case "stddev":
			return res.StdDevMs, nil
		case "total":
			return res.TotalMs, nil
		case "p50":
			return res.P50Ms, nil
		case "p90":
			return res.P90Ms, nil
		case "p95":
			// Approximate p95 from p90 and p99.
			return (res.P90Ms + res.P99Ms) / 2, nil
		case "p99":
			return res.P99Ms, nil
		}
	case "op_alloc":
		switch t.Aggregate {
		case "total":
			return float64(res.TotalAllocatedBytes), nil
		case "per_iteration":
			return res.AllocatedPerIteration(), nil
		}
	}
	return 0, fmt.Errorf("unknown metric selector %s:%s", t.Metric, t.Aggregate)
}

func compareValues(actual float64, operator string, expected float64) bool {
	// Handle floating point comparison with small epsilon.
	epsilon := 1e-9

	switch operator {
	case "<":
		return actual < expected
	case "<=":
		return actual <= expected || math.Abs(actual-expected) < epsilon
	case ">":
		return actual > expected
	case ">=":
		return actual >= expected || math.Abs(actual-expected) < epsilon
	case "==":
		return math.Abs(actual-expected) < epsilon
	default:
		return false
	}
}
