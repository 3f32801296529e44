package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"resty.dev/v3"
)

type RestyExecutor struct {
	httpClient *resty.Client
}

func NewRestyExecutor(timeout time.Duration) *RestyExecutor {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &RestyExecutor{
		httpClient: client,
	}
}

// SetTimeout changes the timeout of subsequent requests. Zero disables it.
func (executor *RestyExecutor) SetTimeout(timeout time.Duration) {
	executor.httpClient.SetTimeout(timeout)
}

func (executor *RestyExecutor) Close() error {
	return executor.httpClient.Close()
}

func (executor *RestyExecutor) newRequest(ctx context.Context, request Request) *resty.Request {
	r := executor.httpClient.R().
		SetContext(ctx).
		SetHeaders(request.Headers)
	if request.Body != nil {
		r.SetBody(bytes.NewReader(request.Body))
	}
	return r
}

// Execute implements Executor.
func (executor *RestyExecutor) Execute(ctx context.Context, request Request) (*Response, error) {
	response, err := executor.newRequest(ctx, request).Execute(request.Method, request.URL)
	if err != nil {
		return nil, fmt.Errorf("resty.Execute(%s %s) > %w", request.Method, request.URL, err)
	}
	return &Response{
		Status: response.StatusCode(),
		Text:   response.String(),
	}, nil
}

// Stream implements Executor. The response body is handed over unread.
func (executor *RestyExecutor) Stream(ctx context.Context, request Request) (*StreamResponse, error) {
	response, err := executor.newRequest(ctx, request).
		SetDoNotParseResponse(true).
		Execute(request.Method, request.URL)
	if err != nil {
		return nil, fmt.Errorf("resty.Execute(%s %s) > %w", request.Method, request.URL, err)
	}

	var body io.ReadCloser = io.NopCloser(bytes.NewReader(nil))
	if response.RawResponse != nil && response.RawResponse.Body != nil {
		body = response.RawResponse.Body
	}
	return &StreamResponse{
		Status: response.StatusCode(),
		Body:   body,
	}, nil
}
