package Trees

import (
	"github.com/pkg/errors"
)

// Allocator accounts for node storage. Alloc is called before a fresh node slot is added to a tree's arena
// and may refuse it; Free is called when a slot's storage is given back.
type Allocator interface {
	Alloc(bytes uintptr) error
	Free(bytes uintptr)
}

type unbounded struct{}

func (unbounded) Alloc(uintptr) error { return nil }
func (unbounded) Free(uintptr)        {}

// Unbounded never refuses and keeps no records.
var Unbounded Allocator = unbounded{}

// ErrBudgetExhausted is returned by MeteredAllocator.Alloc when the request would exceed Limit.
var ErrBudgetExhausted = errors.New("allocator budget exhausted")

// MeteredAllocator records node storage traffic and optionally enforces a limit on live bytes.
// The zero value has no limit. It's not safe for concurrent use.
type MeteredAllocator struct {
	Limit      uintptr // 0 means no limit
	AllocCalls uint64  // successful Alloc calls
	Refused    uint64  // Alloc calls that returned an error
	FreeCalls  uint64
	TotalBytes uint64 // sum of all successful Alloc requests
	LiveBytes  uintptr
	PeakBytes  uintptr
}

func (m *MeteredAllocator) Alloc(bytes uintptr) error {
	if m.Limit != 0 && m.LiveBytes+bytes > m.Limit {
		m.Refused++
		return errors.WithMessagef(ErrBudgetExhausted, "live %d + %d > limit %d", m.LiveBytes, bytes, m.Limit)
	}
	m.AllocCalls++
	m.TotalBytes += uint64(bytes)
	if m.LiveBytes += bytes; m.LiveBytes > m.PeakBytes {
		m.PeakBytes = m.LiveBytes
	}
	return nil
}

func (m *MeteredAllocator) Free(bytes uintptr) {
	m.FreeCalls++
	m.LiveBytes -= bytes
}

// Reset the counters. Limit and LiveBytes are kept since the storage is still held, and the peak restarts from
// the live bytes.
func (m *MeteredAllocator) Reset() {
	*m = MeteredAllocator{Limit: m.Limit, LiveBytes: m.LiveBytes, PeakBytes: m.LiveBytes}
}
