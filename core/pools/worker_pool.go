package pools

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Task represents a unit of work
type Task func()

// WorkerPool is a work-stealing goroutine pool.
// A task that panics is recovered so the worker survives; callers that
// care about the panic value must recover inside the task themselves.
type WorkerPool struct {
	numWorkers int
	queues     []chan Task
	closed     atomic.Bool
	closeMu    sync.RWMutex
	wg         sync.WaitGroup

	next atomic.Uint64

	// Statistics
	stats struct {
		tasksSubmitted atomic.Uint64
		tasksCompleted atomic.Uint64
		tasksInline    atomic.Uint64
		tasksPanicked  atomic.Uint64
		stealsSuccess  atomic.Uint64
	}
}

// queueSize is the buffered capacity of each worker's queue
const queueSize = 256

// NewWorkerPool creates a pool with numWorkers goroutines.
// numWorkers <= 0 means runtime.NumCPU().
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	p := &WorkerPool{
		numWorkers: numWorkers,
		queues:     make([]chan Task, numWorkers),
	}
	for i := range p.queues {
		p.queues[i] = make(chan Task, queueSize)
	}

	p.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go p.work(i)
	}

	return p
}

// Submit queues task round-robin. When both the chosen queue and its
// neighbour are full the task runs inline on the caller's goroutine.
// Submit returns false only if the pool is closed; the task is not run.
func (p *WorkerPool) Submit(task Task) bool {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()

	if p.closed.Load() {
		return false
	}
	p.stats.tasksSubmitted.Add(1)

	idx := int(p.next.Add(1) % uint64(p.numWorkers))
	for attempt := 0; attempt < 2; attempt++ {
		select {
		case p.queues[idx] <- task:
			return true
		default:
			idx = (idx + 1) % p.numWorkers
		}
	}

	p.stats.tasksInline.Add(1)
	p.run(task)
	return true
}

// work is the main loop of worker id
func (p *WorkerPool) work(id int) {
	defer p.wg.Done()
	own := p.queues[id]

	for {
		select {
		case task, ok := <-own:
			if !ok {
				return
			}
			p.run(task)
			continue
		default:
		}

		if p.steal(id) {
			continue
		}

		task, ok := <-own
		if !ok {
			return
		}
		p.run(task)
	}
}

// steal runs one task taken from another worker's queue
func (p *WorkerPool) steal(id int) bool {
	for i := 1; i < p.numWorkers; i++ {
		victim := p.queues[(id+i)%p.numWorkers]
		select {
		case task, ok := <-victim:
			if ok {
				p.stats.stealsSuccess.Add(1)
				p.run(task)
				return true
			}
		default:
		}
	}
	return false
}

func (p *WorkerPool) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.stats.tasksPanicked.Add(1)
		}
		p.stats.tasksCompleted.Add(1)
	}()
	task()
}

// Close stops accepting tasks, lets queued tasks finish and waits for
// the workers to exit
func (p *WorkerPool) Close() {
	p.closeMu.Lock()
	if !p.closed.CompareAndSwap(false, true) {
		p.closeMu.Unlock()
		return
	}
	for _, q := range p.queues {
		close(q)
	}
	p.closeMu.Unlock()

	p.wg.Wait()
}

// Stats returns pool statistics
func (p *WorkerPool) Stats() WorkerPoolStats {
	submitted := p.stats.tasksSubmitted.Load()
	completed := p.stats.tasksCompleted.Load()
	pending := uint64(0)
	if submitted > completed {
		pending = submitted - completed
	}
	return WorkerPoolStats{
		NumWorkers:     p.numWorkers,
		TasksSubmitted: submitted,
		TasksCompleted: completed,
		TasksPending:   pending,
		TasksInline:    p.stats.tasksInline.Load(),
		TasksPanicked:  p.stats.tasksPanicked.Load(),
		StealsSuccess:  p.stats.stealsSuccess.Load(),
	}
}

// WorkerPoolStats contains pool statistics
type WorkerPoolStats struct {
	NumWorkers     int
	TasksSubmitted uint64
	TasksCompleted uint64
	TasksPending   uint64
	TasksInline    uint64
	TasksPanicked  uint64
	StealsSuccess  uint64
}
