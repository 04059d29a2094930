// Package executor runs matched handlers away from the accept loop and
// reports their outcome back to the connection handler.
package executor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/searchktools/hidouki/core/http"
	"github.com/searchktools/hidouki/core/pools"
)

// ErrNoResponse is reported when a handler returns neither a response nor an error
var ErrNoResponse = errors.New("handler returned no response")

// PanicError wraps a value recovered from a panicking handler
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic: %v", e.Value)
}

// Executor runs a handler and waits for its result
type Executor interface {
	Execute(ctx context.Context, h http.Handler, req *http.Request) (*http.Response, error)
}

// Inline runs handlers on the caller's goroutine
type Inline struct{}

func (Inline) Execute(ctx context.Context, h http.Handler, req *http.Request) (*http.Response, error) {
	return invoke(ctx, h, req)
}

// Pool runs each handler as a task on a worker pool and blocks until it
// finishes. The result does not depend on which worker ran it.
type Pool struct {
	pool *pools.WorkerPool
}

// NewPool creates an executor backed by a pool of numWorkers goroutines
func NewPool(numWorkers int) *Pool {
	return &Pool{pool: pools.NewWorkerPool(numWorkers)}
}

type result struct {
	resp *http.Response
	err  error
}

func (p *Pool) Execute(ctx context.Context, h http.Handler, req *http.Request) (*http.Response, error) {
	done := make(chan result, 1)
	task := func() {
		resp, err := invoke(ctx, h, req)
		done <- result{resp: resp, err: err}
	}

	if !p.pool.Submit(task) {
		// pool closed, still honour the request
		task()
	}

	r := <-done
	return r.resp, r.err
}

// Stats exposes the underlying worker pool statistics
func (p *Pool) Stats() pools.WorkerPoolStats {
	return p.pool.Stats()
}

// Close stops the worker pool after queued handlers finish
func (p *Pool) Close() {
	p.pool.Close()
}

// invoke calls h, converting a panic or a nil response into an error
func invoke(ctx context.Context, h http.Handler, req *http.Request) (resp *http.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	resp, err = h(ctx, req)
	if err == nil && resp == nil {
		err = ErrNoResponse
	}
	return resp, err
}
