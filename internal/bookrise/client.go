package bookrise

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/at-ishikawa/bookrise/internal/eventstream"
	"github.com/at-ishikawa/bookrise/internal/transport"
)

const (
	booksPath      = "/api/books"
	highlightsPath = "/api/highlights"
	chatPath       = "/chat"
)

type ClientConfig struct {
	BaseURL string
	// ChatURL is the root of the chat backend. It defaults to BaseURL.
	ChatURL string
	APIKey  string
}

type Client struct {
	executor transport.Executor
	baseURL  string
	chatURL  string
	apiKey   string
}

func NewClient(executor transport.Executor, config ClientConfig) *Client {
	chatURL := config.ChatURL
	if chatURL == "" {
		chatURL = config.BaseURL
	}
	return &Client{
		executor: executor,
		baseURL:  strings.TrimRight(config.BaseURL, "/"),
		chatURL:  strings.TrimRight(chatURL, "/"),
		apiKey:   config.APIKey,
	}
}

func (client *Client) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + client.apiKey,
		"Content-Type":  "application/json",
		"Accept":        "application/json",
	}
}

func (client *Client) get(ctx context.Context, path string, query url.Values) (*transport.Response, error) {
	target := client.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	response, err := client.executor.Execute(ctx, transport.Request{
		Method:  http.MethodGet,
		URL:     target,
		Headers: client.headers(),
	})
	if err != nil {
		return nil, fmt.Errorf("executor.Execute(GET %s) > %w", path, err)
	}
	return response, nil
}

// ListBooks fetches the whole book collection in one response.
func (client *Client) ListBooks(ctx context.Context) ([]Book, error) {
	response, err := client.get(ctx, booksPath, nil)
	if err != nil {
		return nil, err
	}
	books, ok, err := decode[[]Book](response)
	if err != nil {
		return nil, fmt.Errorf("decode(books) > %w", err)
	}
	if !ok {
		return []Book{}, nil
	}
	return books, nil
}

// FindBook resolves bookID against a freshly fetched book list.
func (client *Client) FindBook(ctx context.Context, bookID string) (*Book, error) {
	if bookID == "" {
		return nil, fmt.Errorf("book id is required: %w", ErrInvalidArgument)
	}
	books, err := client.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range books {
		if books[i].ID == bookID {
			return &books[i], nil
		}
	}
	return nil, fmt.Errorf("book %q: %w", bookID, ErrNotFound)
}

func (client *Client) ListHighlights(ctx context.Context, bookID string) ([]Highlight, error) {
	if bookID == "" {
		return nil, fmt.Errorf("book id is required: %w", ErrInvalidArgument)
	}
	response, err := client.get(ctx, highlightsPath, url.Values{"book_id": []string{bookID}})
	if err != nil {
		return nil, err
	}
	highlights, ok, err := decode[[]Highlight](response)
	if err != nil {
		return nil, fmt.Errorf("decode(highlights of %s) > %w", bookID, err)
	}
	if !ok {
		return []Highlight{}, nil
	}
	return highlights, nil
}

// Chat asks a question about a book.
// With a nil onChunk the answer is fetched in one response; otherwise it is streamed
// and onChunk receives the text as it arrives. Text already delivered to onChunk is
// not retracted when the stream fails.
func (client *Client) Chat(ctx context.Context, request ChatRequest, onChunk ChunkHandler) (*ChatResponse, error) {
	if request.BookID == "" {
		return nil, fmt.Errorf("book id is required: %w", ErrInvalidArgument)
	}
	if request.Prompt == "" {
		return nil, fmt.Errorf("prompt is required: %w", ErrInvalidArgument)
	}

	book, err := client.FindBook(ctx, request.BookID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, &ChatError{Cause: err}
	}

	contextIDs := request.ContextIDs
	if contextIDs == nil {
		contextIDs = []string{}
	}
	body, err := json.Marshal(chatRequestBody{
		BookID:      book.ID,
		Message:     request.Prompt,
		ContextIDs:  contextIDs,
		AssistantID: book.AssistantID,
		Stream:      onChunk != nil,
	})
	if err != nil {
		return nil, &ChatError{Cause: fmt.Errorf("json.Marshal > %w", err)}
	}

	if onChunk == nil {
		return client.chat(ctx, body)
	}
	return client.chatStream(ctx, body, onChunk)
}

func (client *Client) chat(ctx context.Context, body []byte) (*ChatResponse, error) {
	response, err := client.executor.Execute(ctx, transport.Request{
		Method:  http.MethodPost,
		URL:     client.chatURL + chatPath,
		Headers: client.headers(),
		Body:    body,
	})
	if err != nil {
		return nil, &ChatError{Cause: fmt.Errorf("executor.Execute(POST %s) > %w", chatPath, err)}
	}

	chatResponse, ok, err := decode[ChatResponse](response)
	if err != nil {
		return nil, &ChatError{Cause: err}
	}
	if !ok {
		return nil, &ChatError{Cause: ErrEmptyResponse}
	}
	return &chatResponse, nil
}

func (client *Client) chatStream(ctx context.Context, body []byte, onChunk ChunkHandler) (*ChatResponse, error) {
	headers := client.headers()
	headers["Accept"] = "text/event-stream"

	response, err := client.executor.Stream(ctx, transport.Request{
		Method:  http.MethodPost,
		URL:     client.chatURL + chatPath,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		return nil, &ChatError{Cause: fmt.Errorf("executor.Stream(POST %s) > %w", chatPath, err)}
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.Status < 200 || response.Status >= 300 {
		text, err := io.ReadAll(response.Body)
		if err != nil {
			return nil, &ChatError{Cause: &eventstream.StreamError{Err: err}}
		}
		_, err = Normalize(&transport.Response{Status: response.Status, Text: string(text)})
		return nil, &ChatError{Cause: err}
	}

	result, err := eventstream.Decode(response.Body, onChunk)
	if err != nil {
		return nil, &ChatError{Cause: err}
	}
	return &ChatResponse{
		Answer:            result.Answer,
		CitedParagraphIDs: result.CitedParagraphIDs,
		CitedChapters:     result.CitedChapters,
	}, nil
}
