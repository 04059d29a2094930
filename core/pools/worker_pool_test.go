package pools

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool_Basic(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var wg sync.WaitGroup
	var counter atomic.Int64

	for i := 0; i < 100; i++ {
		wg.Add(1)
		if !pool.Submit(func() {
			defer wg.Done()
			counter.Add(1)
		}) {
			t.Fatal("Submit returned false on an open pool")
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if counter.Load() != 100 {
			t.Errorf("Expected 100 tasks completed, got %d", counter.Load())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Test timeout")
	}
}

func TestWorkerPool_PanicKeepsWorkerAlive(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Close()

	pool.Submit(func() { panic("boom") })

	ran := make(chan struct{})
	pool.Submit(func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("Worker did not survive a panicking task")
	}

	if pool.Stats().TasksPanicked != 1 {
		t.Errorf("Expected 1 panicked task, got %d", pool.Stats().TasksPanicked)
	}
}

func TestWorkerPool_InlineWhenFull(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Close()

	block := make(chan struct{})
	started := make(chan struct{})
	pool.Submit(func() {
		close(started)
		<-block
	})
	<-started

	// fill the only queue
	for i := 0; i < queueSize; i++ {
		pool.Submit(func() {})
	}

	ranInline := false
	pool.Submit(func() { ranInline = true })
	if !ranInline {
		t.Error("Expected task to run inline when all queues are full")
	}
	if pool.Stats().TasksInline != 1 {
		t.Errorf("Expected 1 inline task, got %d", pool.Stats().TasksInline)
	}

	close(block)
}

func TestWorkerPool_Close(t *testing.T) {
	pool := NewWorkerPool(2)

	var counter atomic.Int64
	for i := 0; i < 10; i++ {
		pool.Submit(func() { counter.Add(1) })
	}
	pool.Close()

	if counter.Load() != 10 {
		t.Errorf("Expected queued tasks to finish before Close returns, got %d", counter.Load())
	}
	if pool.Submit(func() {}) {
		t.Error("Submit on a closed pool should return false")
	}

	// second close is a no-op
	pool.Close()
}

func BenchmarkWorkerPool_Submit(b *testing.B) {
	pool := NewWorkerPool(8)
	defer pool.Close()

	var wg sync.WaitGroup
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		wg.Add(1)
		pool.Submit(func() {
			_ = 1 + 1
			wg.Done()
		})
	}
	wg.Wait()
}
