package http

import (
	"io"
	"strconv"
)

// Response is what a handler hands back to the server.
//
// The encoder writes Header exactly as stored, so a response that should
// carry Content-Length, Content-Type or Connection must set them itself.
// The builders in this package do that.
type Response struct {
	Status int
	Header Header
	Body   []byte
}

// AppendResponse appends the wire form of resp to dst
func AppendResponse(dst []byte, resp *Response) []byte {
	dst = append(dst, "HTTP/1.1 "...)
	dst = appendInt(dst, resp.Status)
	dst = append(dst, ' ')
	dst = append(dst, StatusText(resp.Status)...)
	dst = append(dst, "\r\n"...)

	for _, f := range resp.Header {
		dst = append(dst, f.Name...)
		dst = append(dst, ": "...)
		dst = append(dst, f.Value...)
		dst = append(dst, "\r\n"...)
	}
	dst = append(dst, "\r\n"...)

	return append(dst, resp.Body...)
}

// WriteResponse encodes resp and writes it to w in a single Write call
func WriteResponse(w io.Writer, resp *Response) error {
	_, err := w.Write(AppendResponse(make([]byte, 0, encodedSize(resp)), resp))
	return err
}

// encodedSize estimates the encoded length of resp
func encodedSize(resp *Response) int {
	n := len("HTTP/1.1 000 \r\n\r\n") + len(StatusText(resp.Status))
	for _, f := range resp.Header {
		n += len(f.Name) + len(f.Value) + 4
	}
	return n + len(resp.Body)
}

// appendInt appends an integer to a byte slice
func appendInt(b []byte, i int) []byte {
	return strconv.AppendInt(b, int64(i), 10)
}
