package notesync

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

const (
	untitled          = "Untitled"
	shortTitleWords   = 6
	shortIDLength     = 8
	highlightsFolder  = "_Highlights"
	provenanceTag     = "bookrise"
	highlightTag      = "bookrise/highlight"
	defaultShortTitle = "Highlight"
)

var (
	// Characters that are invalid in file names on common file systems, plus
	// characters that break wiki links inside a vault.
	forbiddenNameChars = regexp.MustCompile(`[\\/:*?"<>|#^\[\]\x00-\x1f\x7f]`)
	whitespaceRuns     = regexp.MustCompile(`\s+`)
	nonAlphanumeric    = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	nonBlockIDChars    = regexp.MustCompile(`[^A-Za-z0-9-]`)
)

// SanitizeName turns a title into a file or folder name.
func SanitizeName(name string) string {
	name = norm.NFC.String(name)
	name = whitespaceRuns.ReplaceAllString(name, " ")
	name = forbiddenNameChars.ReplaceAllString(name, "-")
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return untitled
	}
	return name
}

// Slug replaces every run of non-alphanumeric characters with an underscore.
func Slug(s string) string {
	return strings.Trim(nonAlphanumeric.ReplaceAllString(norm.NFC.String(s), "_"), "_")
}

// ShortTitle is the first few words of a highlight's text, or of its note when it has no text.
func ShortTitle(text, note string) string {
	source := text
	if strings.TrimSpace(source) == "" {
		source = note
	}
	words := strings.Fields(source)
	if len(words) == 0 {
		return defaultShortTitle
	}
	if len(words) > shortTitleWords {
		return strings.Join(words[:shortTitleWords], " ") + "..."
	}
	return strings.Join(words, " ")
}

func shortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}

func randomShortID() string {
	return uuid.New().String()[:shortIDLength]
}

// blockID derives a stable block reference from a highlight id.
// newRandomID is only used when the id has no usable characters.
func blockID(highlightID string, newRandomID func() string) string {
	id := shortID(nonBlockIDChars.ReplaceAllString(highlightID, ""))
	if id == "" {
		id = newRandomID()
	}
	return "hl-" + id
}
