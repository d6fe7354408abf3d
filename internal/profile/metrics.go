package profile

import (
	"fmt"
	"time"
)

// OperationMetrics describes one measured unit of work recorded into a
// Session. Values are copied on append and never shared after that.
type OperationMetrics struct {
	Name        string        `json:"name"`
	Duration    time.Duration `json:"duration_ns"`
	MemoryUsed  int64         `json:"memory_used"`
	Allocations int64         `json:"allocations"`
}

func (m OperationMetrics) validate() error {
	if m.Name == "" {
		return fmt.Errorf("operation metrics name must not be empty")
	}
	if m.Duration < 0 {
		return fmt.Errorf("operation metrics duration must not be negative, got %s", m.Duration)
	}
	if m.Allocations < 0 {
		return fmt.Errorf("operation metrics allocations must not be negative, got %d", m.Allocations)
	}
	return nil
}
