package bench

import (
	"context"

	"golang.org/x/time/rate"
)

// DefaultIterations is used when Options.Iterations is left at zero.
const DefaultIterations = 100

// Operation abstracts one measurable unit of work.
// Implementations should return an error for failed invocations.
type Operation interface {
	Invoke(ctx context.Context) error
}

// OperationFunc adapts a plain function to Operation.
type OperationFunc func(ctx context.Context) error

func (f OperationFunc) Invoke(ctx context.Context) error { return f(ctx) }

// Returning adapts a value-producing function to Operation. The value is
// awaited and discarded; only timing and the error are observed, so a single
// runner covers both response-bearing and void operations.
func Returning[T any](fn func(ctx context.Context) (T, error)) Operation {
	return OperationFunc(func(ctx context.Context) error {
		_, err := fn(ctx)
		return err
	})
}

// Options configure a benchmark run.
type Options struct {
	RequestType string // label for the measured request type
	HandlerType string // label for the handler under measurement
	Iterations  int    // measured invocations (0 means DefaultIterations)
	Warmup      int    // unmeasured invocations before sampling starts
	Pace        int    // invocations per second pacing (0 means unpaced)

	Sampler        MemorySampler                // memory snapshot provider (default RuntimeSampler)
	LimiterFactory func(pace int) *rate.Limiter // optional injection for tests
}

func (o *Options) normalize() {
	if o.Iterations == 0 {
		o.Iterations = DefaultIterations
	}
	if o.Warmup < 0 {
		o.Warmup = 0
	}
	if o.Pace < 0 {
		o.Pace = 0
	}
	if o.Sampler == nil {
		o.Sampler = RuntimeSampler{}
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(pace int) *rate.Limiter {
			if pace <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst of 1 keeps sequential iterations evenly spaced.
			return rate.NewLimiter(rate.Limit(pace), 1)
		}
	}
}
