/*
Package hidouki provides a minimal HTTP/1.1 server library for Go.

A server binds one TCP address, accepts a connection, decodes a single
request, dispatches it through a routing table that is frozen when serving
starts, writes the handler's response and closes the connection. Then it
accepts the next one.

Features

  - Content-Length framed request bodies, decoded as UTF-8 text
  - Exact (path, method) routing, last registration wins
  - Handlers run on a work-stealing worker pool, panics become 500s
  - A pure response encoder: only the headers you set go on the wire
  - Response builders for text, JSON, protobuf and gzip bodies
  - Structured logging with log/slog, configuration with viper

Not supported: TLS, HTTP/2, chunked transfer encoding, keep-alive, path
parameters or wildcards, middleware, read or write timeouts.

Quick Start

package main

import (
    "context"

    "github.com/searchktools/hidouki/core"
    "github.com/searchktools/hidouki/core/http"
)

func main() {
    engine := core.New(":8080")

    engine.GET("/hello", func(ctx context.Context, req *http.Request) (*http.Response, error) {
        return http.Text(200, "Hello, World!"), nil
    })

    if err := engine.Run(); err != nil {
        panic(err)
    }
}

Modules

  - app: Application lifecycle, logger construction and signal handling
  - config: Configuration loading (defaults, file, HIDOUKI_* environment)
  - core: Engine, accept loop and per-connection request/response cycle
  - core/http: Request/response model, wire decoder and encoder, builders
  - core/router: Immutable routing table
  - core/executor: Handler execution on a worker pool
  - core/pools: Worker pool and encode buffer pool

Limitations

The server handles one connection at a time and never times out a read.
A client that stops sending mid-request stalls the whole server, and the
header block may grow without bound until its terminator arrives.
*/
package hidouki
