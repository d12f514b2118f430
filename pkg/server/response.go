package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// Response is the mutable reply a handler fills in. It starts as an empty
// 200.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

func newResponse() *Response {
	return &Response{
		StatusCode: http.StatusOK,
		Headers:    make(map[string]string),
	}
}

func (r *Response) SetHeader(key, value string) {
	r.Headers[key] = value
}

// JSON marshals v into the body and sets the content type.
func (r *Response) JSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	r.Headers["Content-Type"] = "application/json"
	r.Body = data

	return nil
}

// Text sets a plaintext body.
func (r *Response) Text(s string) {
	if _, ok := r.Headers["Content-Type"]; !ok {
		r.Headers["Content-Type"] = "text/plain; charset=utf-8"
	}

	r.Body = []byte(s)
}

// serialize produces the full wire form: status line, headers (sorted for
// determinism), Content-Length, Connection: close, then the body. The result
// is written to the connection in one send.
func (r *Response) serialize() []byte {
	var b strings.Builder

	statusText := http.StatusText(r.StatusCode)
	if statusText == "" {
		statusText = "Unknown"
	}

	b.WriteString("HTTP/1.1 " + strconv.Itoa(r.StatusCode) + " " + statusText + "\r\n")

	keys := make([]string, 0, len(r.Headers))
	for k := range r.Headers {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		b.WriteString(k + ": " + r.Headers[k] + "\r\n")
	}

	b.WriteString("Content-Length: " + strconv.Itoa(len(r.Body)) + "\r\n")
	b.WriteString("Connection: close\r\n")
	b.WriteString("\r\n")
	b.Write(r.Body)

	return []byte(b.String())
}
