package bookrise

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/at-ishikawa/bookrise/internal/transport"
)

// Normalize turns a raw response into the parsed JSON body or a typed error.
// A nil body with a nil error means the call succeeded without content.
func Normalize(response *transport.Response) (json.RawMessage, error) {
	if response.Status == http.StatusNoContent {
		return nil, nil
	}

	if response.Status < 200 || response.Status >= 300 {
		return nil, &APIError{
			Status:  response.Status,
			Message: errorMessage(response),
		}
	}

	text := strings.TrimSpace(response.Text)
	if text == "" {
		slog.Default().Warn("Empty response body on a successful status",
			"status", response.Status)
		return nil, nil
	}

	if !json.Valid([]byte(text)) {
		return nil, fmt.Errorf("status %d, body %q: %w", response.Status, truncate(text, 200), ErrMalformedResponse)
	}
	return json.RawMessage(text), nil
}

func errorMessage(response *transport.Response) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal([]byte(response.Text), &body); err == nil && len(body.Detail) > 0 && string(body.Detail) != "null" {
		var detail string
		if err := json.Unmarshal(body.Detail, &detail); err == nil {
			return detail
		}
		return string(body.Detail)
	}
	if response.Text != "" {
		return response.Text
	}
	return http.StatusText(response.Status)
}

// decode normalizes a response and unmarshals its body into T.
// ok is false when the body was empty.
func decode[T any](response *transport.Response) (result T, ok bool, err error) {
	body, err := Normalize(response)
	if err != nil {
		return result, false, err
	}
	if body == nil || string(body) == "null" {
		return result, false, nil
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return result, false, fmt.Errorf("json.Unmarshal > %v: %w", err, ErrMalformedResponse)
	}
	return result, true, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
