// Package transport sends rendered request descriptions and returns the raw response.
package transport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jo-hoe/go-custom-uploader/app/request"
)

// Response is what came back from the remote side, whatever the status code.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// Truncated is set when Body was cut off at the transport's size limit.
	Truncated  bool
}

// Transport sends a request description. An error is returned only when no response was received.
type Transport interface {
	Send(ctx context.Context, d *request.Description) (*Response, error)
}

// TransportError is a network, timeout or protocol failure. It never carries the request body.
type TransportError struct {
	Method string
	URL    string
	// StatusCode is set when the failure happened after the status line was received.
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s failed after status %d: %s", e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
