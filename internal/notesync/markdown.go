package notesync

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/bookrise/internal/bookrise"
)

type bookFrontmatter struct {
	Title       string   `yaml:"title"`
	ID          string   `yaml:"id"`
	Author      string   `yaml:"author,omitempty"`
	ISBN        string   `yaml:"isbn,omitempty"`
	PercentRead *float64 `yaml:"percent_read,omitempty"`
	Tags        []string `yaml:"tags"`
}

type highlightFrontmatter struct {
	Book        string   `yaml:"book"`
	BookID      string   `yaml:"book_id"`
	HighlightID string   `yaml:"highlight_id"`
	Color       string   `yaml:"color,omitempty"`
	Page        *int     `yaml:"page,omitempty"`
	Location    string   `yaml:"location,omitempty"`
	CreatedAt   string   `yaml:"created_at,omitempty"`
	Tags        []string `yaml:"tags"`
}

func renderFrontmatter(v any) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return "", fmt.Errorf("yaml.Encode > %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("yaml.Close > %w", err)
	}
	return "---\n" + buf.String() + "---\n", nil
}

// sortedTags returns the deduplicated tags in a stable order.
func sortedTags(tags ...string) []string {
	set := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.TrimPrefix(tag, "#"))
		if tag == "" {
			continue
		}
		if _, ok := set[tag]; ok {
			continue
		}
		set[tag] = struct{}{}
		result = append(result, tag)
	}
	sort.Strings(result)
	return result
}

func bookTags(book bookrise.Book) []string {
	tags := append([]string{provenanceTag}, book.Tags...)
	if slug := Slug(book.Author); slug != "" {
		tags = append(tags, "author/"+slug)
	}
	return sortedTags(tags...)
}

func bookFrontmatterOf(book bookrise.Book) (string, error) {
	return renderFrontmatter(bookFrontmatter{
		Title:       book.Title,
		ID:          book.ID,
		Author:      book.Author,
		ISBN:        book.ISBN,
		PercentRead: book.PercentRead,
		Tags:        bookTags(book),
	})
}

func bookHeader(book bookrise.Book) string {
	var sb strings.Builder
	sb.WriteString("# " + displayTitle(book) + "\n\n")
	if book.Author != "" {
		sb.WriteString("**Author:** " + book.Author + "\n")
	}
	if book.PercentRead != nil {
		sb.WriteString(fmt.Sprintf("**Progress:** %d%%\n", int(*book.PercentRead*100+0.5)))
	}
	if book.Author != "" || book.PercentRead != nil {
		sb.WriteString("\n")
	}
	return sb.String()
}

func normalizeNewlines(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
}

func indent(s, prefix string) string {
	return strings.ReplaceAll(s, "\n", "\n"+prefix)
}

// highlightMetadata lists the present fields in the order page, location, color.
func highlightMetadata(h bookrise.Highlight) string {
	var parts []string
	if h.Page != nil {
		parts = append(parts, "page "+strconv.Itoa(*h.Page))
	}
	if h.Location != "" {
		parts = append(parts, "location "+h.Location)
	}
	if h.Color != "" {
		parts = append(parts, "color "+h.Color)
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// formatListItem renders a highlight as one list item of the aggregate note.
func formatListItem(h bookrise.Highlight, newRandomID func() string) string {
	text := normalizeNewlines(h.TextContent)
	note := normalizeNewlines(h.Note)

	primary := text
	if primary == "" {
		primary = note
	}
	if primary == "" {
		primary = "_(empty highlight)_"
	}

	var sb strings.Builder
	sb.WriteString("- ")
	sb.WriteString(indent(primary, "  "))
	sb.WriteString(highlightMetadata(h))
	sb.WriteString(" ^")
	sb.WriteString(blockID(h.ID, newRandomID))
	sb.WriteString("\n")
	if text != "" && note != "" {
		sb.WriteString("  - Note: ")
		sb.WriteString(indent(note, "    "))
		sb.WriteString("\n")
	}
	return sb.String()
}

func colorTag(color string) string {
	if slug := Slug(strings.ToLower(color)); slug != "" {
		return "color/" + slug
	}
	return ""
}

func formatHighlightNote(h bookrise.Highlight, book bookrise.Book, bookNoteLink, title string) (string, error) {
	var createdAt string
	if h.CreatedAt != nil {
		createdAt = h.CreatedAt.UTC().Format(time.RFC3339)
	}
	frontmatter, err := renderFrontmatter(highlightFrontmatter{
		Book:        "[[" + bookNoteLink + "]]",
		BookID:      book.ID,
		HighlightID: h.ID,
		Color:       h.Color,
		Page:        h.Page,
		Location:    h.Location,
		CreatedAt:   createdAt,
		Tags:        sortedTags(provenanceTag, highlightTag, colorTag(h.Color)),
	})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(frontmatter)
	sb.WriteString("\n# " + title + "\n\n")

	text := normalizeNewlines(h.TextContent)
	note := normalizeNewlines(h.Note)
	if text != "" {
		sb.WriteString("> " + indent(text, "> ") + "\n\n")
	}
	if note != "" {
		sb.WriteString("**Note:** " + note + "\n\n")
	}
	if text == "" && note == "" {
		sb.WriteString("_(empty highlight)_\n\n")
	}
	sb.WriteString("Source: [[" + bookNoteLink + "|" + displayTitle(book) + "]]\n")
	return sb.String(), nil
}
