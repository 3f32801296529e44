package transport_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_transport "github.com/at-ishikawa/bookrise/internal/mocks/transport"
	"github.com/at-ishikawa/bookrise/internal/transport"
)

func TestRestyExecutor_Execute(t *testing.T) {
	tests := []struct {
		name              string
		request           transport.Request
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)
		want              *transport.Response
	}{
		{
			name: "GET returns status and body",
			request: transport.Request{
				Method:  http.MethodGet,
				Headers: map[string]string{"Authorization": "Bearer token"},
			},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`[{"id":"b1"}]`))
			},
			want: &transport.Response{Status: http.StatusOK, Text: `[{"id":"b1"}]`},
		},
		{
			name: "POST sends the body",
			request: transport.Request{
				Method:  http.MethodPost,
				Headers: map[string]string{"Content-Type": "application/json"},
				Body:    []byte(`{"message":"hi"}`),
			},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.Equal(t, `{"message":"hi"}`, string(body))
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{}`))
			},
			want: &transport.Response{Status: http.StatusCreated, Text: `{}`},
		},
		{
			name:    "error status is returned, not raised",
			request: transport.Request{Method: http.MethodGet},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"detail":"missing"}`))
			},
			want: &transport.Response{Status: http.StatusNotFound, Text: `{"detail":"missing"}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			executor := transport.NewRestyExecutor(5 * time.Second)
			defer func() {
				_ = executor.Close()
			}()

			request := tt.request
			request.URL = server.URL + "/api/books"
			got, err := executor.Execute(context.Background(), request)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRestyExecutor_Execute_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	executor := transport.NewRestyExecutor(time.Second)
	_, err := executor.Execute(context.Background(), transport.Request{Method: http.MethodGet, URL: url})
	assert.Error(t, err)
}

func TestRestyExecutor_Stream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("data: {\"content\":\"Hel\"}\n\ndata: [DONE]\n\n"))
	}))
	defer server.Close()

	executor := transport.NewRestyExecutor(5 * time.Second)
	got, err := executor.Stream(context.Background(), transport.Request{Method: http.MethodPost, URL: server.URL})
	require.NoError(t, err)
	defer func() {
		_ = got.Body.Close()
	}()

	assert.Equal(t, http.StatusOK, got.Status)
	body, err := io.ReadAll(got.Body)
	require.NoError(t, err)
	assert.Equal(t, "data: {\"content\":\"Hel\"}\n\ndata: [DONE]\n\n", string(body))
}

func TestRetryingExecutor_Execute(t *testing.T) {
	request := transport.Request{Method: http.MethodGet, URL: "http://example.com/api/books"}

	tests := []struct {
		name          string
		retryAttempts uint
		setup         func(next *mock_transport.MockExecutor)
		want          *transport.Response
		wantErr       bool
	}{
		{
			name:          "no retries configured passes through",
			retryAttempts: 0,
			setup: func(next *mock_transport.MockExecutor) {
				next.EXPECT().Execute(gomock.Any(), request).Return(&transport.Response{Status: http.StatusBadGateway}, nil)
			},
			want: &transport.Response{Status: http.StatusBadGateway},
		},
		{
			name:          "transport failure is retried",
			retryAttempts: 2,
			setup: func(next *mock_transport.MockExecutor) {
				gomock.InOrder(
					next.EXPECT().Execute(gomock.Any(), request).Return(nil, errors.New("connection refused")),
					next.EXPECT().Execute(gomock.Any(), request).Return(&transport.Response{Status: http.StatusOK, Text: "[]"}, nil),
				)
			},
			want: &transport.Response{Status: http.StatusOK, Text: "[]"},
		},
		{
			name:          "5xx is retried and the last response is returned",
			retryAttempts: 1,
			setup: func(next *mock_transport.MockExecutor) {
				next.EXPECT().Execute(gomock.Any(), request).Return(&transport.Response{Status: http.StatusServiceUnavailable}, nil).Times(2)
			},
			want: &transport.Response{Status: http.StatusServiceUnavailable},
		},
		{
			name:          "4xx is not retried",
			retryAttempts: 3,
			setup: func(next *mock_transport.MockExecutor) {
				next.EXPECT().Execute(gomock.Any(), request).Return(&transport.Response{Status: http.StatusUnauthorized}, nil).Times(1)
			},
			want: &transport.Response{Status: http.StatusUnauthorized},
		},
		{
			name:          "transport failures exhaust attempts",
			retryAttempts: 1,
			setup: func(next *mock_transport.MockExecutor) {
				next.EXPECT().Execute(gomock.Any(), request).Return(nil, errors.New("i/o timeout")).Times(2)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			next := mock_transport.NewMockExecutor(ctrl)
			tt.setup(next)

			executor := transport.NewRetryingExecutor(next, tt.retryAttempts, time.Millisecond)
			got, err := executor.Execute(context.Background(), request)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRetryingExecutor_Stream(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mock_transport.NewMockExecutor(ctrl)
	request := transport.Request{Method: http.MethodPost, URL: "http://example.com/chat"}

	gomock.InOrder(
		next.EXPECT().Stream(gomock.Any(), request).Return(&transport.StreamResponse{
			Status: http.StatusTooManyRequests,
			Body:   io.NopCloser(strings.NewReader("slow down")),
		}, nil),
		next.EXPECT().Stream(gomock.Any(), request).Return(&transport.StreamResponse{
			Status: http.StatusOK,
			Body:   io.NopCloser(strings.NewReader("data: [DONE]\n")),
		}, nil),
	)

	executor := transport.NewRetryingExecutor(next, 2, time.Millisecond)
	got, err := executor.Stream(context.Background(), request)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, got.Status)
}

func TestRateLimitedExecutor(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mock_transport.NewMockExecutor(ctrl)
	request := transport.Request{Method: http.MethodGet, URL: "http://example.com/api/books"}
	next.EXPECT().Execute(gomock.Any(), request).Return(&transport.Response{Status: http.StatusOK}, nil)

	executor := transport.NewRateLimitedExecutor(next, 100)
	got, err := executor.Execute(context.Background(), request)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, got.Status)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = executor.Execute(ctx, request)
	assert.Error(t, err)
}
