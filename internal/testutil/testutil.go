// Package testutil provides shared test helpers for creating config files and a fake BookRise API.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// FakeAPIKey is the key accepted by NewFakeRemote.
const FakeAPIKey = "fake-key-for-testing"

// SetupTestConfig creates a minimal config file and the vault directory for testing.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir, baseURL string) string {
	t.Helper()

	vaultDir := filepath.Join(tmpDir, "vault")
	require.NoError(t, os.MkdirAll(vaultDir, 0755))

	configContent := fmt.Sprintf(`settings:
  sync_folder: BookRise
api:
  base_url: %s
  timeout_seconds: 5
vault:
  directory: %s
cache:
  file: %s
`,
		baseURL,
		vaultDir,
		filepath.Join(tmpDir, "cache", "books.yml"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// SetupTestConfigWithAPIKey creates a config file with FakeAPIKey for tests
// that call the remote API.
func SetupTestConfigWithAPIKey(t *testing.T, tmpDir, baseURL string) string {
	t.Helper()
	cfgPath := SetupTestConfig(t, tmpDir, baseURL)

	content, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	content = []byte(strings.Replace(string(content), "settings:\n", "settings:\n  api_key: "+FakeAPIKey+"\n", 1))
	require.NoError(t, os.WriteFile(cfgPath, content, 0644))
	return cfgPath
}

// NewFakeRemote starts a server answering like the BookRise API with one book, b1 "Dune",
// which has a single highlight h1. Chat answers stream "Hel" and "lo" when the request asks for a stream.
func NewFakeRemote(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/books", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"b1","title":"Dune","author":"Frank Herbert","percent_read":0.5}]`)
	})
	mux.HandleFunc("GET /api/highlights", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("book_id") != "b1" {
			_, _ = io.WriteString(w, `[]`)
			return
		}
		_, _ = io.WriteString(w, `[{"id":"h1","book_id":"b1","text_content":"Fear is the mind-killer.","page":12}]`)
	})
	mux.HandleFunc("POST /chat", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"stream":true`) {
			_, _ = io.WriteString(w, `{"answer":"Hello","cited_paragraph_ids":["p1"],"cited_chapters":[3]}`)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: {\"content\":\"Hel\"}\n\ndata: {\"content\":\"lo\"}\n\ndata: [DONE]\n\n")
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+FakeAPIKey {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"invalid api key"}`)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}
