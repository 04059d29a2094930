package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/klauspost/compress/gzip"
	"google.golang.org/protobuf/proto"
)

// Content types set by the builders
const (
	ContentTypeText     = "text/plain"
	ContentTypeJSON     = "application/json"
	ContentTypeProtobuf = "application/x-protobuf"
	ContentTypeOctet    = "application/octet-stream"
)

// Data builds a response carrying body with the given content type.
// Content-Length and Connection: close are set explicitly since the
// encoder never adds headers on its own.
func Data(code int, contentType string, body []byte) *Response {
	resp := &Response{Status: code, Body: body}
	resp.Header.Add(HeaderContentLength, strconv.Itoa(len(body)))
	if contentType != "" {
		resp.Header.Add(HeaderContentType, contentType)
	}
	resp.Header.Add(HeaderConnection, "close")
	return resp
}

// Text builds a text/plain response
func Text(code int, s string) *Response {
	return Data(code, ContentTypeText, []byte(s))
}

// Bytes builds an application/octet-stream response
func Bytes(code int, data []byte) *Response {
	return Data(code, ContentTypeOctet, data)
}

// Empty builds a response with no body and no Content-Type
func Empty(code int) *Response {
	return Data(code, "", nil)
}

// JSON builds an application/json response from v
func JSON(code int, v any) (*Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return Data(code, ContentTypeJSON, data), nil
}

// Protobuf builds an application/x-protobuf response from msg
func Protobuf(code int, msg proto.Message) (*Response, error) {
	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("protobuf marshal: %w", err)
	}
	return Data(code, ContentTypeProtobuf, data), nil
}

// Gzip compresses resp.Body in place and updates Content-Encoding and
// Content-Length to match. It does not look at the request's Accept-Encoding.
func Gzip(resp *Response) (*Response, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(resp.Body); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}

	resp.Body = buf.Bytes()
	resp.Header.Set(HeaderContentEncoding, "gzip")
	resp.Header.Set(HeaderContentLength, strconv.Itoa(len(resp.Body)))
	return resp, nil
}
