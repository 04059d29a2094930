package pools

import (
	"sync"
	"sync/atomic"
)

// Buffer tiers for encoded responses
const (
	SmallBufferSize = 2 * 1024
	LargeBufferSize = 32 * 1024
)

// BufferPool hands out zero-length byte slices for encoding responses.
// Buffers that grew past LargeBufferSize are dropped on Put.
type BufferPool struct {
	small sync.Pool
	large sync.Pool

	gets   atomic.Uint64
	misses atomic.Uint64
}

// NewBufferPool creates a new buffer pool
func NewBufferPool() *BufferPool {
	bp := &BufferPool{}
	bp.small.New = func() any {
		bp.misses.Add(1)
		buf := make([]byte, 0, SmallBufferSize)
		return &buf
	}
	bp.large.New = func() any {
		bp.misses.Add(1)
		buf := make([]byte, 0, LargeBufferSize)
		return &buf
	}
	return bp
}

// Get returns a buffer whose capacity fits estimatedSize when possible
func (bp *BufferPool) Get(estimatedSize int) *[]byte {
	bp.gets.Add(1)
	if estimatedSize <= SmallBufferSize {
		return bp.small.Get().(*[]byte)
	}
	return bp.large.Get().(*[]byte)
}

// Put returns a buffer to the pool
func (bp *BufferPool) Put(buf *[]byte) {
	if buf == nil {
		return
	}
	*buf = (*buf)[:0]

	switch c := cap(*buf); {
	case c > LargeBufferSize:
		// oversized, let the GC have it
	case c >= LargeBufferSize:
		bp.large.Put(buf)
	default:
		bp.small.Put(buf)
	}
}

// BufferStats contains buffer pool statistics
type BufferStats struct {
	Gets    uint64
	Misses  uint64
	HitRate float64
}

// Stats returns buffer pool statistics
func (bp *BufferPool) Stats() BufferStats {
	gets := bp.gets.Load()
	misses := bp.misses.Load()
	hitRate := 0.0
	if gets > 0 && gets >= misses {
		hitRate = float64(gets-misses) / float64(gets)
	}
	return BufferStats{Gets: gets, Misses: misses, HitRate: hitRate}
}
