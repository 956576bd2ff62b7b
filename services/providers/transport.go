package providers

import (
	"net/http"
	"time"
)

// NewHTTPClient returns a client that waits at most timeout for response
// headers. Reading the body is bounded only by the request context, so a
// long stream is never cut off while tokens keep arriving.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout
	return &http.Client{Transport: transport}
}
