package http

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/http/httpguts"
)

// MaxHeaders is the number of header fields the parser accepts per request
const MaxHeaders = 16

var headerTerminator = []byte("\r\n\r\n")

var (
	ErrHeaderIncomplete = errors.New("connection closed before end of header block")
	ErrTooManyHeaders   = errors.New("too many headers")
	ErrInvalidBody      = errors.New("request body is not valid UTF-8")
)

// DecodeError reports a request that could not be decoded from the wire.
// Its message is sent back to the client verbatim.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return "malformed http request: " + e.Reason
	}
	if e.Reason == "" {
		return "malformed http request: " + e.Err.Error()
	}
	return "malformed http request: " + e.Reason + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

func malformed(reason string, err error) error {
	return &DecodeError{Reason: reason, Err: err}
}

// ReadRequest decodes one request from r.
//
// The header block is read line by line until it ends with CRLFCRLF. The body
// is read only when a Content-Length header is present, and exactly that many
// bytes are consumed from r. There is no limit on the header block size and no
// deadline; both are the caller's concern.
func ReadRequest(r *bufio.Reader) (*Request, error) {
	head, err := readHead(r)
	if err != nil {
		return nil, err
	}

	req, err := parseHead(head)
	if err != nil {
		return nil, err
	}

	cl, ok := req.Header.Lookup(HeaderContentLength)
	if !ok {
		return req, nil
	}

	n, err := strconv.ParseUint(cl, 10, 63)
	if err != nil {
		return nil, malformed("invalid Content-Length "+strconv.Quote(cl), nil)
	}

	// grow with the data actually received rather than trusting n up front
	body, err := io.ReadAll(io.LimitReader(r, int64(n)))
	if err != nil {
		return nil, malformed("read body", err)
	}
	if uint64(len(body)) != n {
		return nil, malformed("short body", io.ErrUnexpectedEOF)
	}
	if !utf8.Valid(body) {
		return nil, malformed("", ErrInvalidBody)
	}
	req.Body = string(body)

	return req, nil
}

// readHead accumulates lines until the buffer ends with the header terminator
func readHead(r *bufio.Reader) ([]byte, error) {
	var buf []byte
	for {
		line, err := r.ReadSlice('\n')
		buf = append(buf, line...)
		if bytes.HasSuffix(buf, headerTerminator) {
			return buf, nil
		}

		switch {
		case err == nil:
		case errors.Is(err, bufio.ErrBufferFull):
			// line longer than the reader's buffer, keep accumulating
		case errors.Is(err, io.EOF):
			return nil, malformed("", ErrHeaderIncomplete)
		default:
			return nil, malformed("read header", err)
		}
	}
}

// parseHead parses the request line and header fields of a complete head
func parseHead(head []byte) (*Request, error) {
	// drop the final empty line
	head = head[:len(head)-2]

	lineEnd := bytes.IndexByte(head, '\n')
	if lineEnd <= 0 || head[lineEnd-1] != '\r' {
		return nil, malformed("missing request line", nil)
	}

	req := &Request{}
	if err := parseRequestLine(req, string(head[:lineEnd-1])); err != nil {
		return nil, err
	}

	rest := head[lineEnd+1:]
	for len(rest) > 0 {
		end := bytes.Index(rest, []byte("\r\n"))
		if end < 0 {
			return nil, malformed("header line without CRLF", nil)
		}
		line := string(rest[:end])
		rest = rest[end+2:]

		if req.Header.Len() == MaxHeaders {
			return nil, malformed("", ErrTooManyHeaders)
		}
		name, value, err := parseHeaderLine(line)
		if err != nil {
			return nil, err
		}
		req.Header.Add(name, value)
	}

	return req, nil
}

func parseRequestLine(req *Request, line string) error {
	method, rest, ok := strings.Cut(line, " ")
	if !ok {
		return malformed(fmt.Sprintf("bad request line %q", line), nil)
	}
	target, proto, ok := strings.Cut(rest, " ")
	if !ok {
		return malformed(fmt.Sprintf("bad request line %q", line), nil)
	}

	if !httpguts.ValidHeaderFieldName(method) {
		return malformed(fmt.Sprintf("invalid method %q", method), nil)
	}
	if !validTarget(target) {
		return malformed(fmt.Sprintf("invalid request target %q", target), nil)
	}
	version, ok := parseVersion(proto)
	if !ok {
		return malformed(fmt.Sprintf("unsupported protocol version %q", proto), nil)
	}

	req.Method = Method(method)
	req.Path = target
	req.Version = version
	return nil
}

func validTarget(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if c := s[i]; c <= ' ' || c == 0x7f {
			return false
		}
	}
	return true
}

func parseHeaderLine(line string) (string, string, error) {
	name, value, ok := strings.Cut(line, ":")
	if !ok {
		return "", "", malformed(fmt.Sprintf("header line without colon %q", line), nil)
	}
	if !httpguts.ValidHeaderFieldName(name) {
		return "", "", malformed(fmt.Sprintf("invalid header name %q", name), nil)
	}
	value = strings.Trim(value, " \t")
	if !httpguts.ValidHeaderFieldValue(value) {
		return "", "", malformed(fmt.Sprintf("invalid value for header %q", name), nil)
	}
	return name, value, nil
}
