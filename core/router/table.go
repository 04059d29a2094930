package router

import (
	"sort"

	"github.com/searchktools/hidouki/core/http"
)

// Builder collects routes before serving starts
type Builder struct {
	routes map[string]map[http.Method]http.Handler // path -> method -> handler
}

// NewBuilder creates an empty route builder
func NewBuilder() *Builder {
	return &Builder{
		routes: make(map[string]map[http.Method]http.Handler),
	}
}

// Add registers handler for method and path. Registering the same pair
// again replaces the previous handler.
func (b *Builder) Add(method http.Method, path string, handler http.Handler) {
	methods, ok := b.routes[path]
	if !ok {
		methods = make(map[http.Method]http.Handler, 1)
		b.routes[path] = methods
	}
	methods[method] = handler
}

// Build returns an immutable snapshot of the registered routes.
// Later calls to Add do not affect tables already built.
func (b *Builder) Build() *Table {
	t := &Table{
		routes: make(map[string]map[http.Method]http.Handler, len(b.routes)),
	}
	for path, methods := range b.routes {
		cp := make(map[http.Method]http.Handler, len(methods))
		for m, h := range methods {
			cp[m] = h
		}
		t.routes[path] = cp
	}
	return t
}

// Table is a read-only routing table, safe for concurrent lookups
type Table struct {
	routes map[string]map[http.Method]http.Handler
}

// Lookup finds the handler for an exact path and method.
// An unknown path and a known path with an unregistered method both
// report false.
func (t *Table) Lookup(method http.Method, path string) (http.Handler, bool) {
	methods, ok := t.routes[path]
	if !ok {
		return nil, false
	}
	h, ok := methods[method]
	return h, ok
}

// Len returns the number of (path, method) pairs
func (t *Table) Len() int {
	n := 0
	for _, methods := range t.routes {
		n += len(methods)
	}
	return n
}

// RouteInfo describes one registered route
type RouteInfo struct {
	Method http.Method
	Path   string
}

// Routes lists the registered routes ordered by path, then method
func (t *Table) Routes() []RouteInfo {
	infos := make([]RouteInfo, 0, t.Len())
	for path, methods := range t.routes {
		for m := range methods {
			infos = append(infos, RouteInfo{Method: m, Path: path})
		}
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Path != infos[j].Path {
			return infos[i].Path < infos[j].Path
		}
		return infos[i].Method < infos[j].Method
	})
	return infos
}
