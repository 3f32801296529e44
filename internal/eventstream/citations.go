package eventstream

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

func isAbsent(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}

// stringField returns raw as a string when it is a JSON string.
func stringField(raw json.RawMessage) (string, bool) {
	if isAbsent(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func elements(field string, raw json.RawMessage) []json.RawMessage {
	if isAbsent(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		slog.Default().Warn("Skipped a citation field that is not an array",
			"field", field,
			"value", string(raw))
		return nil
	}
	return items
}

// Chapters reads a cited_chapters value. Integral numbers and numeric strings are kept
// in their original order; any other element is logged and skipped.
func Chapters(raw json.RawMessage) []int {
	var chapters []int
	for _, item := range elements("cited_chapters", raw) {
		if chapter, ok := chapterOf(item); ok {
			chapters = append(chapters, chapter)
			continue
		}
		slog.Default().Warn("Skipped a cited chapter that is not an integer", "value", string(item))
	}
	return chapters
}

func chapterOf(item json.RawMessage) (int, bool) {
	if isAbsent(item) {
		return 0, false
	}
	var number float64
	if err := json.Unmarshal(item, &number); err != nil {
		s, ok := stringField(item)
		if !ok {
			return 0, false
		}
		if number, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0, false
		}
	}
	if number != math.Trunc(number) || math.Abs(number) > math.MaxInt32 {
		return 0, false
	}
	return int(number), true
}

// ParagraphIDs reads a cited_paragraph_ids value. Strings are kept as they are and
// numbers by their JSON text; any other element is logged and skipped.
func ParagraphIDs(raw json.RawMessage) []string {
	var ids []string
	for _, item := range elements("cited_paragraph_ids", raw) {
		if s, ok := stringField(item); ok {
			ids = append(ids, s)
			continue
		}
		var number json.Number
		if err := json.Unmarshal(item, &number); err == nil && number != "" {
			ids = append(ids, number.String())
			continue
		}
		slog.Default().Warn("Skipped a cited paragraph id that is neither a string nor a number", "value", string(item))
	}
	return ids
}
