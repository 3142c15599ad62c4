package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/jo-hoe/go-custom-uploader/app/request"
)

// DefaultMaxResponseSize caps how much of a response body is read.
const DefaultMaxResponseSize = 32 << 20

// HTTPTransport sends descriptions with a net/http client.
type HTTPTransport struct {
	client          *http.Client
	maxResponseSize int64
}

// NewHTTPTransport wraps client. A nil client uses http.DefaultClient.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{
		client:          client,
		maxResponseSize: DefaultMaxResponseSize,
	}
}

func (t *HTTPTransport) Send(ctx context.Context, d *request.Description) (*Response, error) {
	fail := func(status int, err error) (*Response, error) {
		return nil, &TransportError{Method: d.Method, URL: d.URL, StatusCode: status, Err: err}
	}

	body, contentType, err := newBodyEncoder(d.BodyKind).Encode(d)
	if err != nil {
		return fail(0, err)
	}
	req, err := http.NewRequestWithContext(ctx, d.Method, d.URL, body)
	if err != nil {
		return fail(0, err)
	}
	req.Header = d.Headers.Clone()
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	switch {
	case d.BodyKind == request.BodyMultipart:
		// the boundary is only known here
		req.Header.Set("Content-Type", contentType)
	case contentType != "" && req.Header.Get("Content-Type") == "":
		req.Header.Set("Content-Type", contentType)
	}

	client := t.client
	if d.KeepRedirect {
		noFollow := *t.client
		noFollow.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
		client = &noFollow
	}

	slog.Debug("sending request", "method", d.Method, "url", d.URL, "body_kind", d.BodyKind)
	resp, err := client.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Error("error closing response body", "error", cerr)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, t.maxResponseSize+1))
	if err != nil {
		return fail(resp.StatusCode, err)
	}
	truncated := int64(len(data)) > t.maxResponseSize
	if truncated {
		data = data[:t.maxResponseSize]
		slog.Warn("response truncated", "method", d.Method, "url", d.URL, "status", resp.StatusCode, "limit", t.maxResponseSize)
	}
	slog.Debug("received response", "method", d.Method, "url", d.URL, "status", resp.StatusCode, "bytes", len(data))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		Truncated:  truncated,
	}, nil
}

// IsTimeout reports whether err was caused by a deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
