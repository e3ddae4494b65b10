package httputil

import (
	"net/http"
	"time"
)

// DefaultTimeout is generous because the ASOS service is slow for some
// stations near the top of the hour.
const DefaultTimeout = 300 * time.Second

// NewClient returns an HTTP client with the given timeout, or DefaultTimeout
// when timeout is zero.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
	}
}
