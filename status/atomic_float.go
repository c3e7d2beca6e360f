package status

import (
	"math"
	"sync/atomic"
)

// AtomicFloat holds a gauge such as rhythm.last_error_ms
// It is written from the loop goroutine and read by the debug line on the frame ticker
type AtomicFloat struct {
	bits atomic.Uint64
}

// Set replaces the gauge value
func (f *AtomicFloat) Set(val float64) {
	f.bits.Store(math.Float64bits(val))
}

// Get returns the last value set, 0 before any Set
func (f *AtomicFloat) Get() float64 {
	return math.Float64frombits(f.bits.Load())
}
