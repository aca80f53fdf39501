package status

import "errors"

var (
	// ErrUpstreamUnavailable is returned when a page could not be fetched after all attempts
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvalidInput is returned when a request is rejected before any fetch is attempted
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotDocument is returned when the upstream body is not a text document
	ErrNotDocument = errors.New("response is not an html document")
)
