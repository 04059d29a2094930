package core

import (
	"context"

	"github.com/searchktools/hidouki/core/http"
)

// Route is a handler bound to a fixed method and path. Types generated by
// route-declaration tooling implement it and are registered with Engine.Routes.
type Route interface {
	Method() http.Method
	Path() string
	Handle(ctx context.Context, req *http.Request) (*http.Response, error)
}

type route struct {
	method  http.Method
	path    string
	handler http.Handler
}

// NewRoute binds h to method and path
func NewRoute(method http.Method, path string, h http.Handler) Route {
	return route{method: method, path: path, handler: h}
}

func (r route) Method() http.Method { return r.method }
func (r route) Path() string        { return r.path }

func (r route) Handle(ctx context.Context, req *http.Request) (*http.Response, error) {
	return r.handler(ctx, req)
}
