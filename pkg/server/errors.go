package server

import "errors"

var (
	errNotFound         = errors.New("not found")
	errMethodNotAllowed = errors.New("method not allowed")
	errEmptyRequest     = errors.New("empty request")
	errMalformedRequest = errors.New("malformed request line")
	errMalformedHeader  = errors.New("malformed header line")
)
