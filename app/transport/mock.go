package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/jo-hoe/go-custom-uploader/app/request"
)

// Mock is a Transport spy that records every call and answers with a fixed response.
type Mock struct {
	ReturnErrorsOnly bool
	StatusCode       int
	Header           http.Header
	Body             string
	// Respond overrides the fixed response when set.
	Respond func(d *request.Description) (*Response, error)

	mu       sync.Mutex
	Calls    int
	Requests []*request.Description
}

func (m *Mock) Send(ctx context.Context, d *request.Description) (*Response, error) {
	m.mu.Lock()
	m.Calls++
	m.Requests = append(m.Requests, d)
	m.mu.Unlock()

	if m.ReturnErrorsOnly {
		return nil, &TransportError{Method: d.Method, URL: d.URL, Err: fmt.Errorf("dummy error")}
	}
	if m.Respond != nil {
		return m.Respond(d)
	}
	status := m.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	header := m.Header
	if header == nil {
		header = make(http.Header)
	}
	return &Response{StatusCode: status, Header: header, Body: []byte(m.Body)}, nil
}

// CallCount returns the number of Send calls so far.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}
