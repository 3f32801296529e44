// Package bookrise is the client of the BookRise annotation service.
package bookrise

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/at-ishikawa/bookrise/internal/eventstream"
)

// Book is a read-only mirror of a remote book.
type Book struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Author      string   `json:"author,omitempty" yaml:"author,omitempty"`
	ISBN        string   `json:"isbn,omitempty" yaml:"isbn,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	PercentRead *float64 `json:"percent_read,omitempty" yaml:"percent_read,omitempty"` // in [0, 1]
	AssistantID string   `json:"assistant_id,omitempty" yaml:"assistant_id,omitempty"`
}

// Highlight is a user-captured excerpt or annotation belonging to exactly one book.
type Highlight struct {
	ID          string     `json:"id"`
	BookID      string     `json:"book_id"`
	TextContent string     `json:"text_content,omitempty"`
	Note        string     `json:"note,omitempty"`
	Page        *int       `json:"page,omitempty"`
	Location    string     `json:"location,omitempty"`
	Color       string     `json:"color,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

type ChatRequest struct {
	BookID     string
	Prompt     string
	ContextIDs []string
}

type ChatResponse struct {
	Answer            string   `json:"answer"`
	CitedParagraphIDs []string `json:"cited_paragraph_ids"`
	CitedChapters     []int    `json:"cited_chapters"`
}

// UnmarshalJSON requires a string answer. Citation fields of an unexpected type are
// skipped instead of failing the whole response.
func (r *ChatResponse) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var answer string
	if raw, ok := fields["answer"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &answer); err != nil {
			return fmt.Errorf("answer is not a string: %w", err)
		}
	}
	*r = ChatResponse{
		Answer:            answer,
		CitedParagraphIDs: eventstream.ParagraphIDs(fields["cited_paragraph_ids"]),
		CitedChapters:     eventstream.Chapters(fields["cited_chapters"]),
	}
	return nil
}

// ChunkHandler receives incremental answer text while a chat answer streams.
type ChunkHandler func(chunk string)

type chatRequestBody struct {
	BookID      string   `json:"book_id"`
	Message     string   `json:"message"`
	ContextIDs  []string `json:"context_ids"`
	AssistantID string   `json:"assistant_id,omitempty"`
	Stream      bool     `json:"stream,omitempty"`
}
