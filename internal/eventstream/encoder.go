package eventstream

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// Encoder writes frames that Decode can read back.
type Encoder struct {
	w io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) writeData(data string) error {
	if _, err := fmt.Fprintf(e.w, "%s %s\n\n", dataPrefix, data); err != nil {
		return fmt.Errorf("fmt.Fprintf > %w", err)
	}
	return nil
}

func (e *Encoder) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("json.Marshal > %w", err)
	}
	return e.writeData(string(data))
}

func (e *Encoder) WriteChunk(text string) error {
	return e.writeJSON(map[string]string{"content": text})
}

func (e *Encoder) WriteCitations(chapters []int, paragraphIDs []string) error {
	if len(chapters) == 0 && len(paragraphIDs) == 0 {
		return nil
	}
	return e.writeJSON(struct {
		CitedChapters     []int    `json:"cited_chapters,omitempty"`
		CitedParagraphIDs []string `json:"cited_paragraph_ids,omitempty"`
	}{
		CitedChapters:     chapters,
		CitedParagraphIDs: paragraphIDs,
	})
}

// WriteError sends an error frame. Decoders treat it as metadata, never as answer text.
func (e *Encoder) WriteError(message string) error {
	return e.writeJSON(map[string]string{"error": message})
}

func (e *Encoder) WriteDone() error {
	return e.writeData(doneMarker)
}
