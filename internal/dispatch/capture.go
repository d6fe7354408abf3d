// Package dispatch wraps a request dispatcher with trace instrumentation.
package dispatch

import (
	"context"
	"fmt"
)

// Dispatcher executes a request and returns its response. It is treated as an
// opaque capability; its call is the sole side-effecting operation whose
// latency gets measured. Command-style requests may return a nil response.
type Dispatcher interface {
	Send(ctx context.Context, request any) (any, error)
}

// TraceHandle is an opaque token identifying one in-flight trace. A Tracer
// may return nil when tracing is disabled; the handle is passed through but
// never inspected.
type TraceHandle any

// Tracer records the lifecycle of one traced dispatch.
type Tracer interface {
	StartTrace(ctx context.Context, request any) TraceHandle
	RecordException(handle TraceHandle, err error)
	CompleteTrace(handle TraceHandle, success bool)
}

// NopTracer discards all trace activity.
type NopTracer struct{}

func (NopTracer) StartTrace(context.Context, any) TraceHandle { return nil }
func (NopTracer) RecordException(TraceHandle, error)          {}
func (NopTracer) CompleteTrace(TraceHandle, bool)             {}

// Capture pairs a Dispatcher with a Tracer so that every dispatch is traced
// with a fixed call ordering. It has no state of its own.
type Capture struct {
	dispatcher Dispatcher
	tracer     Tracer
}

// NewCapture wraps the given dispatcher. A nil tracer is replaced with
// NopTracer.
func NewCapture(d Dispatcher, t Tracer) (*Capture, error) {
	if d == nil {
		return nil, fmt.Errorf("dispatcher must not be nil")
	}
	if t == nil {
		t = NopTracer{}
	}
	return &Capture{dispatcher: d, tracer: t}, nil
}

// Send dispatches one request under a trace. On success the trace completes
// successfully; on failure the error is recorded on the trace, the trace
// completes as failed, and the original error is returned unchanged. The
// trace handle from StartTrace is returned in both cases.
func (c *Capture) Send(ctx context.Context, request any) (any, TraceHandle, error) {
	handle := c.tracer.StartTrace(ctx, request)
	response, err := c.dispatcher.Send(ctx, request)
	if err != nil {
		c.tracer.RecordException(handle, err)
		c.tracer.CompleteTrace(handle, false)
		return nil, handle, err
	}
	c.tracer.CompleteTrace(handle, true)
	return response, handle, nil
}
