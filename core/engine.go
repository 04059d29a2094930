package core

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/searchktools/hidouki/core/executor"
	"github.com/searchktools/hidouki/core/http"
	"github.com/searchktools/hidouki/core/pools"
	"github.com/searchktools/hidouki/core/router"
)

// Engine accepts connections on one address and serves exactly one request
// per connection through a routing table that is frozen when serving starts.
//
// Connections are handled one at a time: the next Accept happens only after
// the previous response has been written and the connection closed. Nothing
// bounds how long a client may take to send its request.
type Engine struct {
	addr   string
	logger *slog.Logger

	mu     sync.Mutex
	routes *router.Builder
	ln     net.Listener
	closed bool

	table    *router.Table
	executor executor.Executor
	ownsExec bool
	workers  int
	buffers  *pools.BufferPool

	counters counters
}

// Bytes read and discarded after the response so that closing a connection
// with unread request data does not reset it
const (
	lingerBytes   = 256 << 10
	lingerTimeout = 500 * time.Millisecond
)

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger; the default is slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithExecutor replaces the default worker pool executor
func WithExecutor(ex executor.Executor) Option {
	return func(e *Engine) { e.executor = ex }
}

// WithWorkers sizes the default worker pool; n <= 0 means one per CPU
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// New creates an engine that will listen on addr
func New(addr string, opts ...Option) *Engine {
	e := &Engine{
		addr:    addr,
		logger:  slog.Default(),
		routes:  router.NewBuilder(),
		buffers: pools.NewBufferPool(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.executor == nil {
		e.executor = executor.NewPool(e.workers)
		e.ownsExec = true
	}
	return e
}

// Addr returns the configured bind address
func (e *Engine) Addr() string { return e.addr }

// Handle registers h for method and path. A later registration of the same
// pair replaces the earlier one. Registrations made after serving started
// are not seen by the running server.
func (e *Engine) Handle(method http.Method, path string, h http.Handler) {
	e.mu.Lock()
	e.routes.Add(method, path, h)
	e.mu.Unlock()
}

// GET registers a GET route
func (e *Engine) GET(path string, h http.Handler) { e.Handle(http.MethodGet, path, h) }

// POST registers a POST route
func (e *Engine) POST(path string, h http.Handler) { e.Handle(http.MethodPost, path, h) }

// PUT registers a PUT route
func (e *Engine) PUT(path string, h http.Handler) { e.Handle(http.MethodPut, path, h) }

// DELETE registers a DELETE route
func (e *Engine) DELETE(path string, h http.Handler) { e.Handle(http.MethodDelete, path, h) }

// PATCH registers a PATCH route
func (e *Engine) PATCH(path string, h http.Handler) { e.Handle(http.MethodPatch, path, h) }

// HEAD registers a HEAD route
func (e *Engine) HEAD(path string, h http.Handler) { e.Handle(http.MethodHead, path, h) }

// OPTIONS registers an OPTIONS route
func (e *Engine) OPTIONS(path string, h http.Handler) { e.Handle(http.MethodOptions, path, h) }

// Routes registers every route in order and returns e for chaining
func (e *Engine) Routes(routes ...Route) *Engine {
	for _, r := range routes {
		e.Handle(r.Method(), r.Path(), r.Handle)
	}
	return e
}

// Run binds the configured address and serves until the listener is closed.
// A bind failure is returned as a KindBind *Error.
func (e *Engine) Run() error {
	lc := net.ListenConfig{Control: controlSocket}
	ln, err := lc.Listen(context.Background(), "tcp", e.addr)
	if err != nil {
		return &Error{Kind: KindBind, Op: "listen " + e.addr, Err: err}
	}
	return e.Serve(ln)
}

// Serve runs the accept loop on ln. Accept errors are logged and the loop
// continues; Serve returns nil once ln has been closed, or at once if Close
// was called before serving started.
func (e *Engine) Serve(ln net.Listener) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		ln.Close()
		return nil
	}
	e.ln = ln
	e.table = e.routes.Build()
	e.mu.Unlock()
	defer ln.Close()

	e.logger.Info("server listening", "addr", ln.Addr().String(), "routes", e.table.Len())
	for _, r := range e.table.Routes() {
		e.logger.Debug("route registered", "method", r.Method, "path", r.Path)
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				e.logger.Info("listener closed", "addr", ln.Addr().String())
				return nil
			}
			e.counters.acceptErrors.Add(1)
			e.logger.Error("accept failed", "kind", KindAccept, "error", err)
			continue
		}

		e.counters.accepted.Add(1)
		e.serveConn(conn)
	}
}

// Close closes the listener, which makes Serve return, and stops the
// default worker pool
func (e *Engine) Close() error {
	e.mu.Lock()
	ln := e.ln
	e.closed = true
	e.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
		if errors.Is(err, net.ErrClosed) {
			err = nil
		}
	}
	if p, ok := e.executor.(*executor.Pool); ok && e.ownsExec {
		p.Close()
	}
	return err
}

// serveConn runs one request/response cycle and closes conn
func (e *Engine) serveConn(conn net.Conn) {
	defer conn.Close()

	peer := conn.RemoteAddr().String()
	log := e.logger.With("conn_id", uuid.NewString(), "peer", peer)
	log.Info("accepting connection")

	resp := e.respond(conn, peer, log)

	buf := e.buffers.Get(len(resp.Body) + 256)
	*buf = http.AppendResponse(*buf, resp)
	_, err := conn.Write(*buf)
	e.buffers.Put(buf)

	if err != nil {
		e.counters.writeErrors.Add(1)
		log.Error("failed to send response", "kind", KindWrite, "status", resp.Status, "error", err)
		return
	}
	e.counters.served.Add(1)
	log.Debug("response sent", "status", resp.Status, "bytes", len(resp.Body))
	linger(conn)
}

// linger half-closes conn and drains what the client still sends, up to a
// bound, so the final Close does not discard unread data with a reset
func linger(conn net.Conn) {
	cw, ok := conn.(interface{ CloseWrite() error })
	if !ok || cw.CloseWrite() != nil {
		return
	}
	conn.SetReadDeadline(time.Now().Add(lingerTimeout))
	io.CopyN(io.Discard, conn, lingerBytes)
}

// respond decodes a request from conn and produces the response to send
func (e *Engine) respond(conn net.Conn, peer string, log *slog.Logger) *http.Response {
	req, err := http.ReadRequest(bufio.NewReader(conn))
	if err != nil {
		e.counters.decodeErrors.Add(1)
		log.Warn("failed to decode request", "kind", KindMalformedRequest, "error", err)
		return failure(err)
	}
	req.RemoteAddr = peer
	log = log.With("method", req.Method, "path", req.Path)

	h, ok := e.table.Lookup(req.Method, req.Path)
	if !ok {
		e.counters.notFound.Add(1)
		log.Info("request not routed", "kind", KindNoRoute, "error", ErrNoRoute)
		return http.Empty(http.StatusNotFound)
	}

	resp, err := e.executor.Execute(context.Background(), h, req)
	if err != nil {
		e.counters.handlerErrors.Add(1)
		var pe *executor.PanicError
		if errors.As(err, &pe) {
			log.Error("handler panicked", "kind", KindHandler, "error", err, "stack", string(pe.Stack))
		} else {
			log.Warn("handler failed", "kind", KindHandler, "error", err)
		}
		return failure(err)
	}
	if resp == nil {
		e.counters.handlerErrors.Add(1)
		log.Error("executor returned no response", "kind", KindHandler, "error", executor.ErrNoResponse)
		return failure(executor.ErrNoResponse)
	}
	return resp
}

// failure builds the 500 response carrying err's text as its body
func failure(err error) *http.Response {
	return http.Text(http.StatusInternalServerError, err.Error())
}
