package fetch

import "errors"

// Sentinel errors for fetch operations.
var (
	// ErrFetch indicates the request failed or returned a non-2xx status.
	ErrFetch = errors.New("fetch: request failed")

	// ErrMalformedResponse indicates the response carried no usable value.
	ErrMalformedResponse = errors.New("fetch: malformed response")
)
