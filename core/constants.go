package core

import (
	"errors"
	"fmt"
)

// Kind classifies the failures the server can run into
type Kind int

const (
	KindBind Kind = iota + 1
	KindAccept
	KindMalformedRequest
	KindHandler
	KindNoRoute
	KindWrite
)

func (k Kind) String() string {
	switch k {
	case KindBind:
		return "bind"
	case KindAccept:
		return "accept"
	case KindMalformedRequest:
		return "malformed_request"
	case KindHandler:
		return "handler"
	case KindNoRoute:
		return "no_route"
	case KindWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Error is a server failure tagged with its Kind.
// Only KindBind errors are ever returned to the caller of Run; the rest are
// logged and answered on the connection they happened on.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is an *Error of kind k
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// ErrNoRoute is logged when no route matches a request
var ErrNoRoute = errors.New("no route matched")
