// Package bench provides the core benchmark execution engine for probekit.
//
// The bench package drives N sequential invocations of a caller-supplied
// operation, captures wall-clock duration per invocation and a before/after
// memory snapshot, and reduces the samples into a [Result].
//
// # Basic Usage
//
// Create a runner with options and an operation implementation:
//
//	r := bench.New(bench.Options{
//		RequestType: "CreateOrder",
//		HandlerType: "CreateOrderHandler",
//		Iterations:  1000,
//	})
//	result, err := r.Run(ctx, op)
//
// # Operation Interface
//
// The [Operation] interface defines what a runner measures:
//
//	type Operation interface {
//		Invoke(ctx context.Context) error
//	}
//
// Use [OperationFunc] for plain functions and [Returning] for operations that
// produce a value; a single runner covers both forms.
//
// # Cancellation
//
// Cancellation is cooperative: the runner checks the context before each
// iteration and aborts with the context's error, discarding partial samples.
// A signal mid-invocation is only honored once the in-flight operation itself
// returns control.
//
// # Memory Measurement
//
// Memory accounting is best-effort. The pre-run snapshot forces a full
// collection to establish a deterministic baseline; the post-run snapshot is
// unforced. A negative delta is clamped to zero.
package bench
