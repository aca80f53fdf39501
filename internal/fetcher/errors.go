package fetcher

import "fmt"

// HTTPStatusError is a single attempt that returned a non-2xx status.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// BlockedError is a single attempt that returned a block or captcha page.
type BlockedError struct {
	URL    string
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("GET %s: blocked (%s)", e.URL, e.Reason)
}
