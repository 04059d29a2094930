package http

import "strings"

// Common header names
const (
	HeaderContentType     = "Content-Type"
	HeaderContentLength   = "Content-Length"
	HeaderContentEncoding = "Content-Encoding"
	HeaderConnection      = "Connection"
	HeaderHost            = "Host"
)

// HeaderField is a single name/value pair as it appeared on the wire
type HeaderField struct {
	Name  string
	Value string
}

// Header is an ordered list of header fields. Duplicates are kept and
// insertion order is preserved; lookups compare names case-insensitively.
type Header []HeaderField

// Add appends a field
func (h *Header) Add(name, value string) {
	*h = append(*h, HeaderField{Name: name, Value: value})
}

// Set replaces every field named name with a single field holding value.
// The replacement takes the position of the first existing field, or is
// appended when none exists.
func (h *Header) Set(name, value string) {
	out := (*h)[:0]
	replaced := false
	for _, f := range *h {
		if !strings.EqualFold(f.Name, name) {
			out = append(out, f)
			continue
		}
		if !replaced {
			out = append(out, HeaderField{Name: name, Value: value})
			replaced = true
		}
	}
	if !replaced {
		out = append(out, HeaderField{Name: name, Value: value})
	}
	*h = out
}

// Get returns the value of the first field named name
func (h Header) Get(name string) string {
	v, _ := h.Lookup(name)
	return v
}

// Lookup is like Get but also reports whether the field was present
func (h Header) Lookup(name string) (string, bool) {
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// Values returns all values of fields named name, in order
func (h Header) Values(name string) []string {
	var vals []string
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			vals = append(vals, f.Value)
		}
	}
	return vals
}

// Del removes every field named name
func (h *Header) Del(name string) {
	out := (*h)[:0]
	for _, f := range *h {
		if !strings.EqualFold(f.Name, name) {
			out = append(out, f)
		}
	}
	*h = out
}

// Len returns the number of fields
func (h Header) Len() int { return len(h) }
