package session_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/bookrise/internal/bookrise"
	"github.com/at-ishikawa/bookrise/internal/config"
	mock_library "github.com/at-ishikawa/bookrise/internal/mocks/library"
	mock_transport "github.com/at-ishikawa/bookrise/internal/mocks/transport"
	"github.com/at-ishikawa/bookrise/internal/notesync"
	"github.com/at-ishikawa/bookrise/internal/session"
	"github.com/at-ishikawa/bookrise/internal/transport"
	"github.com/at-ishikawa/bookrise/internal/vault"
)

func testConfig() *config.Config {
	return &config.Config{
		Settings: config.SettingsConfig{APIKey: "key-1", SyncFolder: "BookRise"},
		API:      config.APIConfig{BaseURL: "https://api.example.com", TimeoutSeconds: 5},
	}
}

// remote answers like the BookRise API and records the requests it received.
type remote struct {
	mu       sync.Mutex
	requests []transport.Request
}

func (r *remote) handle(_ context.Context, request transport.Request) (*transport.Response, error) {
	r.mu.Lock()
	r.requests = append(r.requests, request)
	r.mu.Unlock()

	switch {
	case request.Method == http.MethodGet && request.URL == "https://api.example.com/api/books",
		request.Method == http.MethodGet && request.URL == "https://other.example.com/api/books":
		return &transport.Response{Status: http.StatusOK, Text: `[{"id":"b1","title":"Dune"}]`}, nil
	case request.Method == http.MethodGet && request.URL == "https://api.example.com/api/highlights?book_id=b1":
		return &transport.Response{Status: http.StatusOK, Text: `[{"id":"h1","book_id":"b1","text_content":"Fear is the mind-killer."}]`}, nil
	}
	return &transport.Response{Status: http.StatusNotFound, Text: `{"detail":"not found"}`}, nil
}

func (r *remote) last() transport.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[len(r.requests)-1]
}

func newSession(t *testing.T, cfg *config.Config, options ...session.Option) (*session.Session, *remote, afero.Fs) {
	t.Helper()
	ctrl := gomock.NewController(t)
	executor := mock_transport.NewMockExecutor(ctrl)
	r := &remote{}
	executor.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(r.handle).AnyTimes()

	fs := afero.NewMemMapFs()
	s, err := session.New(cfg, vault.NewAferoStore(fs), append([]session.Option{session.WithExecutor(executor)}, options...)...)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, s.Close())
	})
	return s, r, fs
}

func TestSession_MissingAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.Settings.APIKey = ""
	s, r, _ := newSession(t, cfg)
	ctx := context.Background()

	_, err := s.ListBooks(ctx)
	assert.ErrorIs(t, err, session.ErrMissingAPIKey)
	_, err = s.ListHighlights(ctx, "b1")
	assert.ErrorIs(t, err, session.ErrMissingAPIKey)
	_, err = s.Chat(ctx, bookrise.ChatRequest{BookID: "b1", Prompt: "hi"}, nil)
	assert.ErrorIs(t, err, session.ErrMissingAPIKey)
	_, err = s.Sync(ctx, s.SyncSettings())
	assert.ErrorIs(t, err, session.ErrMissingAPIKey)
	assert.Empty(t, r.requests)
}

func TestSession_Apply(t *testing.T) {
	s, r, _ := newSession(t, testConfig())
	ctx := context.Background()

	_, err := s.ListBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer key-1", r.last().Headers["Authorization"])

	next := testConfig()
	next.Settings.APIKey = "key-2"
	next.API.BaseURL = "https://other.example.com/"
	require.NoError(t, s.Apply(next))

	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []bookrise.Book{{ID: "b1", Title: "Dune"}}, books)
	assert.Equal(t, "https://other.example.com/api/books", r.last().URL)
	assert.Equal(t, "Bearer key-2", r.last().Headers["Authorization"])
	assert.Equal(t, "key-2", s.Config().Settings.APIKey)

	next.Settings.APIKey = "mutated after apply"
	assert.Equal(t, "key-2", s.Config().Settings.APIKey)

	assert.Error(t, s.Apply(nil))
}

func TestSession_Apply_Invalid(t *testing.T) {
	errInvalid := errors.New("invalid configuration")
	s, _, _ := newSession(t, testConfig(), session.WithValidator(func(cfg *config.Config) error {
		if cfg.Settings.SyncFolder == "" {
			return errInvalid
		}
		return nil
	}))

	next := testConfig()
	next.Settings.SyncFolder = ""
	assert.ErrorIs(t, s.Apply(next), errInvalid)
	assert.Equal(t, "BookRise", s.Config().Settings.SyncFolder)
}

func TestSession_SyncSettings(t *testing.T) {
	tests := []struct {
		name         string
		perHighlight bool
		want         notesync.Settings
	}{
		{name: "aggregate", want: notesync.Settings{Folder: "BookRise", Mode: notesync.ModeAggregate}},
		{name: "per highlight", perHighlight: true, want: notesync.Settings{Folder: "BookRise", Mode: notesync.ModePerHighlight}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Settings.CreateNotePerHighlight = tt.perHighlight
			s, _, _ := newSession(t, cfg)
			assert.Equal(t, tt.want, s.SyncSettings())
		})
	}
}

func TestSession_Sync(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mock_library.NewMockBookRepository(ctrl)
	cache.EXPECT().ReplaceAll(gomock.Any(), []bookrise.Book{{ID: "b1", Title: "Dune"}}).Return(nil)

	s, _, fs := newSession(t, testConfig(), session.WithBookCache(cache))

	report, err := s.Sync(context.Background(), s.SyncSettings())
	require.NoError(t, err)
	assert.Equal(t, notesync.Report{Total: 1, Succeeded: 1}, report)

	content, err := afero.ReadFile(fs, "BookRise/Dune/Dune.md")
	require.NoError(t, err)
	assert.Contains(t, string(content), "- Fear is the mind-killer. ^hl-h1\n")
}

func TestSession_BookCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mock_library.NewMockBookRepository(ctrl)
	s, _, _ := newSession(t, testConfig(), session.WithBookCache(cache))
	ctx := context.Background()

	cache.EXPECT().ReplaceAll(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 1)

	cache.EXPECT().FindAll(gomock.Any()).Return([]bookrise.Book{{ID: "b9", Title: "Cached"}}, nil)
	cached, err := s.CachedBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []bookrise.Book{{ID: "b9", Title: "Cached"}}, cached)

	cache.EXPECT().FindAll(gomock.Any()).Return(nil, errors.New("broken"))
	_, err = s.CachedBooks(ctx)
	assert.Error(t, err)
}

func TestSession_CachedBooks_NoCache(t *testing.T) {
	s, _, _ := newSession(t, testConfig())
	books, err := s.CachedBooks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestSession_TransportChain(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := mock_transport.NewMockExecutor(ctrl)
	gomock.InOrder(
		executor.EXPECT().Execute(gomock.Any(), gomock.Any()).
			Return(&transport.Response{Status: http.StatusServiceUnavailable}, nil),
		executor.EXPECT().Execute(gomock.Any(), gomock.Any()).
			Return(&transport.Response{Status: http.StatusOK, Text: `[]`}, nil),
	)

	cfg := testConfig()
	cfg.API.RetryAttempts = 1
	cfg.API.RequestsPerSecond = 100
	s, err := session.New(cfg, vault.NewAferoStore(afero.NewMemMapFs()), session.WithExecutor(executor))
	require.NoError(t, err)

	books, err := s.ListBooks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestSession_ConcurrentApply(t *testing.T) {
	s, _, _ := newSession(t, testConfig())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.ListBooks(ctx)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Apply(testConfig()))
		}()
	}
	wg.Wait()
}

func TestNew_DefaultExecutor(t *testing.T) {
	s, err := session.New(testConfig(), vault.NewAferoStore(afero.NewMemMapFs()))
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}
