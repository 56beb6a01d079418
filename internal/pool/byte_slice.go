// Package pool keeps scratch byte slices around between encoding
// detections so that short lived decode buffers are not reallocated
// for every document.
package pool

import "sync"

const defaultCapacity = 64

type ByteSlicePool struct {
	pool sync.Pool
}

var byteSlice = &ByteSlicePool{}

// ByteSlice returns the process wide byte slice pool.
func ByteSlice() *ByteSlicePool {
	return byteSlice
}

// Get returns an empty slice with at least the default capacity.
func (p *ByteSlicePool) Get() []byte {
	return p.GetCapacity(defaultCapacity)
}

// GetCapacity returns an empty slice with at least n bytes of capacity.
func (p *ByteSlicePool) GetCapacity(n int) []byte {
	if v, ok := p.pool.Get().(*[]byte); ok && cap(*v) >= n {
		return (*v)[:0]
	}
	return make([]byte, 0, max(n, defaultCapacity))
}

// Put hands b back to the pool. b must not be used afterwards.
func (p *ByteSlicePool) Put(b []byte) {
	b = b[:0]
	p.pool.Put(&b)
}
