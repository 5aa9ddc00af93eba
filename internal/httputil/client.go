package httputil

import (
	"net/http"
	"time"
)

const DefaultTimeout = 30 * time.Second

const UserAgent = "CityExplorer/1.0"

// NewClient returns an HTTP client bounded by timeout, or DefaultTimeout when
// timeout is zero.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
	}
}
