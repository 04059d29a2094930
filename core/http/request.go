package http

import "context"

// Method is an HTTP request method token
type Method string

// Well-known request methods
const (
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodConnect Method = "CONNECT"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
	MethodPatch   Method = "PATCH"
)

func (m Method) String() string { return string(m) }

// Version is the protocol version of a decoded request
type Version int

const (
	Version10 Version = iota + 1
	Version11
)

func (v Version) String() string {
	switch v {
	case Version10:
		return "HTTP/1.0"
	case Version11:
		return "HTTP/1.1"
	default:
		return "HTTP/?"
	}
}

// parseVersion maps a request-line protocol string onto a supported Version
func parseVersion(proto string) (Version, bool) {
	switch proto {
	case "HTTP/1.1":
		return Version11, true
	case "HTTP/1.0":
		return Version10, true
	default:
		return 0, false
	}
}

// Request is a fully decoded HTTP request.
//
// Path is the raw request target exactly as it appeared on the request line.
// Body holds the Content-Length delimited payload as UTF-8 text and is empty
// when the request carried no Content-Length header.
type Request struct {
	Method  Method
	Path    string
	Version Version
	Header  Header
	Body    string

	// RemoteAddr is filled in by the server, never by the decoder
	RemoteAddr string
}

// Handler produces a Response or a failure for a request.
// A non-nil error is reported to the client as a 500 with err.Error() as body.
type Handler func(ctx context.Context, req *Request) (*Response, error)
