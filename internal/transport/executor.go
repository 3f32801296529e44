// Package transport provides the HTTP request capability consumed by the API client.
package transport

import (
	"context"
	"io"
)

//go:generate mockgen -source=executor.go -destination=../mocks/transport/mock_executor.go -package=mock_transport

// Executor performs HTTP requests.
// HTTP error statuses are returned in the response; an error is returned only when
// the request could not be performed at all (DNS, connection refused, timeouts).
type Executor interface {
	Execute(ctx context.Context, request Request) (*Response, error)
	Stream(ctx context.Context, request Request) (*StreamResponse, error)
}

type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

type Response struct {
	Status int
	Text   string
}

// StreamResponse carries an unread response body. The caller must close Body.
type StreamResponse struct {
	Status int
	Body   io.ReadCloser
}
