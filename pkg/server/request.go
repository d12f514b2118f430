package server

import (
	"strings"
)

// maxRequestSize is the single read buffer. Requests whose bytes exceed it
// are not supported; there is no multi-read body handling.
const maxRequestSize = 8192

// Request is one parsed inbound HTTP request.
type Request struct {
	ID         string
	Method     string
	Path       string
	Proto      string
	Headers    map[string]string // keys lowercased
	Body       []byte
	RemoteAddr string
}

// Header returns a header value by case-insensitive name.
func (r *Request) Header(name string) string {
	return r.Headers[strings.ToLower(name)]
}

// parseRequest parses the request line, colon-delimited header lines, and
// whatever bytes remain as the body.
func parseRequest(raw []byte) (*Request, error) {
	if len(raw) == 0 {
		return nil, errEmptyRequest
	}

	head := string(raw)

	var body []byte

	if i := strings.Index(head, "\r\n\r\n"); i >= 0 {
		body = raw[i+4:]
		head = head[:i]
	} else if i := strings.Index(head, "\n\n"); i >= 0 {
		body = raw[i+2:]
		head = head[:i]
	}

	lines := strings.Split(head, "\n")

	fields := strings.Fields(strings.TrimRight(lines[0], "\r"))
	if len(fields) < 2 {
		return nil, errMalformedRequest
	}

	req := &Request{
		Method:  fields[0],
		Path:    fields[1],
		Headers: make(map[string]string),
		Body:    body,
	}

	if len(fields) >= 3 {
		req.Proto = fields[2]
	}

	// Routing is exact-match on the path; drop any query string.
	if i := strings.Index(req.Path, "?"); i >= 0 {
		req.Path = req.Path[:i]
	}

	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, errMalformedHeader
		}

		req.Headers[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	return req, nil
}
