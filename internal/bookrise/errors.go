package bookrise

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a required parameter is missing.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound is returned when a book id is absent from the freshly fetched book list.
	ErrNotFound = errors.New("not found")
	// ErrMalformedResponse is returned when a body expected to be JSON cannot be parsed.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrEmptyResponse is returned when a non-streaming chat answer has no body.
	ErrEmptyResponse = errors.New("empty response")
)

// APIError is a non-2xx response from the service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// ChatError wraps any failure that happened while talking to the chat backend.
type ChatError struct {
	Cause error
}

func (e *ChatError) Error() string {
	return fmt.Sprintf("chat failed: %v", e.Cause)
}

func (e *ChatError) Unwrap() error {
	return e.Cause
}
