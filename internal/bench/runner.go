package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/probekit/probekit/internal/stats"
)

// Result captures the outcome of one benchmark run. It is an immutable
// snapshot owned by the caller that requested the run.
type Result struct {
	RequestType string `json:"request_type"`
	HandlerType string `json:"handler_type"`
	Iterations  int    `json:"iterations"`

	TotalTime         time.Duration `json:"-"`
	MinTime           time.Duration `json:"-"`
	MaxTime           time.Duration `json:"-"`
	MeanTime          time.Duration `json:"-"`
	StandardDeviation time.Duration `json:"-"`
	P50Time           time.Duration `json:"-"`
	P90Time           time.Duration `json:"-"`
	P99Time           time.Duration `json:"-"`

	TotalAllocatedBytes uint64    `json:"total_allocated_bytes"`
	Timestamp           time.Time `json:"timestamp"`

	// JSON-friendly millisecond fields.
	TotalMs  float64 `json:"total_ms"`
	MinMs    float64 `json:"min_ms"`
	MaxMs    float64 `json:"max_ms"`
	MeanMs   float64 `json:"mean_ms"`
	StdDevMs float64 `json:"stddev_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P90Ms    float64 `json:"p90_ms"`
	P99Ms    float64 `json:"p99_ms"`
}

// AllocatedPerIteration returns the mean allocation per measured invocation.
func (r Result) AllocatedPerIteration() float64 {
	if r.Iterations == 0 {
		return 0
	}
	return float64(r.TotalAllocatedBytes) / float64(r.Iterations)
}

func (r *Result) computeDerived() {
	ms := func(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
	r.TotalMs = ms(r.TotalTime)
	r.MinMs = ms(r.MinTime)
	r.MaxMs = ms(r.MaxTime)
	r.MeanMs = ms(r.MeanTime)
	r.StdDevMs = ms(r.StandardDeviation)
	r.P50Ms = ms(r.P50Time)
	r.P90Ms = ms(r.P90Time)
	r.P99Ms = ms(r.P99Time)
}

// Runner drives sequential benchmark invocations of an Operation.
// Iterations are never run in parallel; overlapping invocations would
// corrupt the timing samples.
type Runner struct {
	opt Options
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt}
}

// Iterations returns the normalized iteration count the runner will execute.
func (r *Runner) Iterations() int { return r.opt.Iterations }

// Run invokes op exactly Iterations times, capturing wall-clock duration per
// invocation and a before/after memory snapshot, and reduces the samples into
// a Result.
//
// Cancellation is checked before each iteration; a signaled context aborts the
// run with the context's error and discards any partial samples. An error from
// op itself is returned unchanged, with no partial Result.
func (r *Runner) Run(ctx context.Context, op Operation) (Result, error) {
	if op == nil {
		return Result{}, fmt.Errorf("benchmark operation must not be nil")
	}
	if r.opt.Iterations <= 0 {
		return Result{}, fmt.Errorf("iterations must be positive, got %d", r.opt.Iterations)
	}

	limiter := r.opt.LimiterFactory(r.opt.Pace)

	for i := 0; i < r.opt.Warmup; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if err := op.Invoke(ctx); err != nil {
			return Result{}, err
		}
	}

	started := time.Now()
	// Forced collection gives a deterministic baseline; the post-run snapshot
	// stays unforced to reflect steady-state allocation pressure.
	before := r.opt.Sampler.AllocatedBytes(true)

	samples := make([]time.Duration, 0, r.opt.Iterations)
	hist := stats.NewHistogram()
	for i := 0; i < r.opt.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if err := limiter.Wait(ctx); err != nil {
			return Result{}, err
		}
		begin := time.Now()
		if err := op.Invoke(ctx); err != nil {
			return Result{}, err
		}
		elapsed := time.Since(begin)
		samples = append(samples, elapsed)
		hist.Record(elapsed)
	}

	after := r.opt.Sampler.AllocatedBytes(false)
	var allocated uint64
	if after > before {
		allocated = after - before
	}

	sum := stats.Reduce(samples)
	res := Result{
		RequestType:         r.opt.RequestType,
		HandlerType:         r.opt.HandlerType,
		Iterations:          r.opt.Iterations,
		TotalTime:           sum.Total,
		MinTime:             sum.Min,
		MaxTime:             sum.Max,
		MeanTime:            sum.Mean,
		StandardDeviation:   sum.StdDev,
		P50Time:             hist.Quantile(50),
		P90Time:             hist.Quantile(90),
		P99Time:             hist.Quantile(99),
		TotalAllocatedBytes: allocated,
		Timestamp:           started,
	}
	res.computeDerived()
	return res, nil
}
