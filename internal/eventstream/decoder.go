// Package eventstream decodes and encodes the line-oriented event stream used by streaming chat answers.
package eventstream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

const (
	dataPrefix = "data:"
	doneMarker = "[DONE]"
)

// Result is the aggregate of a fully consumed stream.
type Result struct {
	Answer            string
	CitedParagraphIDs []string
	CitedChapters     []int
}

// StreamError reports a read failure in the middle of a stream.
// Chunks delivered before the failure are not retracted.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("event stream interrupted: %v", e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// payload is one decoded data line.
type payload struct {
	text              string
	hasText           bool
	citedChapters     []int
	citedParagraphIDs []string
}

// decodePayload tries the known payload shapes in priority order:
// content, answer, delta, then a bare JSON string.
// A payload that is not JSON is returned as literal text. Citation fields are read
// independently, so a mistyped citation never hides the text of its line.
func decodePayload(data string) payload {
	raw := []byte(data)

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return payload{text: str, hasText: true}
	}
	if !json.Valid(raw) {
		slog.Default().Debug("event stream payload is not JSON, emitting as text",
			"payload", data)
		return payload{text: data, hasText: true}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		// Numbers, arrays and booleans carry nothing to emit.
		return payload{}
	}

	p := payload{
		citedChapters:     Chapters(fields["cited_chapters"]),
		citedParagraphIDs: ParagraphIDs(fields["cited_paragraph_ids"]),
	}
	if text, ok := stringField(fields["content"]); ok {
		p.text, p.hasText = text, true
	} else if text, ok := stringField(fields["answer"]); ok {
		p.text, p.hasText = text, true
	} else if delta, ok := fields["delta"]; ok {
		p.text, p.hasText = deltaText(delta)
	}
	return p
}

// deltaText accepts either a string delta or an OpenAI style {"content": "..."} delta.
func deltaText(raw json.RawMessage) (string, bool) {
	if str, ok := stringField(raw); ok {
		return str, true
	}
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(raw, &nested); err != nil {
		return "", false
	}
	return stringField(nested["content"])
}

// Decode reads r until end of stream. onChunk is called synchronously, in stream order,
// once for every line carrying non-empty text, before the next line is read.
func Decode(r io.Reader, onChunk func(string)) (Result, error) {
	reader := bufio.NewReader(r)

	var answer strings.Builder
	chapters := make(map[int]struct{})
	var paragraphIDs []string
	seenParagraphs := make(map[string]struct{})

	result := func() Result {
		res := Result{
			Answer:            answer.String(),
			CitedParagraphIDs: paragraphIDs,
		}
		if len(chapters) > 0 {
			res.CitedChapters = make([]int, 0, len(chapters))
			for chapter := range chapters {
				res.CitedChapters = append(res.CitedChapters, chapter)
			}
			sort.Ints(res.CitedChapters)
		}
		return res
	}

	for {
		line, readErr := reader.ReadString('\n')
		// A line cut short by a failed read is incomplete and never decoded.
		if line != "" && (readErr == nil || errors.Is(readErr, io.EOF)) {
			data, ok := dataLine(line)
			if ok && data != doneMarker {
				p := decodePayload(data)
				if p.hasText && p.text != "" {
					answer.WriteString(p.text)
					if onChunk != nil {
						onChunk(p.text)
					}
				}
				for _, chapter := range p.citedChapters {
					chapters[chapter] = struct{}{}
				}
				for _, id := range p.citedParagraphIDs {
					if _, ok := seenParagraphs[id]; ok {
						continue
					}
					seenParagraphs[id] = struct{}{}
					paragraphIDs = append(paragraphIDs, id)
				}
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return result(), nil
			}
			return result(), &StreamError{Err: readErr}
		}
	}
}

func dataLine(line string) (string, bool) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, dataPrefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, dataPrefix)), true
}
