package bench

import "runtime"

// MemorySampler reports the number of heap bytes currently allocated.
// When force is true the sampler runs a full garbage collection first so the
// reading reflects live data rather than collectable garbage.
type MemorySampler interface {
	AllocatedBytes(force bool) uint64
}

// RuntimeSampler reads allocation figures from the Go runtime.
type RuntimeSampler struct{}

func (RuntimeSampler) AllocatedBytes(force bool) uint64 {
	if force {
		runtime.GC()
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc
}
