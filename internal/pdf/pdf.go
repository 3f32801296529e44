// Package pdf renders generated notes as PDF documents.
package pdf

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/mandolyte/mdtopdf"
	"github.com/spf13/afero"

	"github.com/at-ishikawa/bookrise/internal/vault"
)

var (
	aliasedLinkPattern = regexp.MustCompile(`\[\[[^\]|]+\|([^\]]+)\]\]`)
	linkPattern        = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
	blockRefPattern    = regexp.MustCompile(`(?m) \^[A-Za-z0-9-]+$`)
)

// StripFrontmatter removes a leading YAML frontmatter block.
func StripFrontmatter(content string) string {
	if !strings.HasPrefix(content, "---\n") {
		return content
	}
	rest := content[len("---\n"):]
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		return content
	}
	return strings.TrimLeft(rest[end+len("\n---\n"):], "\n")
}

// plainMarkdown replaces vault specific syntax with its display text.
func plainMarkdown(content string) string {
	content = StripFrontmatter(content)
	content = aliasedLinkPattern.ReplaceAllString(content, "$1")
	content = linkPattern.ReplaceAllStringFunc(content, func(link string) string {
		return path.Base(strings.TrimSuffix(strings.TrimPrefix(link, "[["), "]]"))
	})
	return blockRefPattern.ReplaceAllString(content, "")
}

// ExportNote renders the markdown note at notePath next to it as a PDF and
// returns the vault path of the PDF.
func ExportNote(store *vault.AferoStore, notePath string) (string, error) {
	if !strings.HasSuffix(notePath, ".md") {
		return "", fmt.Errorf("input file must have .md extension: %s", notePath)
	}

	content, err := store.ReadFile(notePath)
	if err != nil {
		return "", fmt.Errorf("store.ReadFile(%s) > %w", notePath, err)
	}

	// mdtopdf only writes to the OS file system.
	tmpDir, err := os.MkdirTemp("", "bookrise-pdf-")
	if err != nil {
		return "", fmt.Errorf("os.MkdirTemp() > %w", err)
	}
	defer func() {
		_ = os.RemoveAll(tmpDir)
	}()
	tmpPath := tmpDir + string(os.PathSeparator) + "note.pdf"

	renderer := mdtopdf.NewPdfRenderer("P", "A4", tmpPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process([]byte(plainMarkdown(string(content)))); err != nil {
		return "", fmt.Errorf("renderer.Process() > %w", err)
	}

	rendered, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", fmt.Errorf("os.ReadFile(%s) > %w", tmpPath, err)
	}
	pdfPath := strings.TrimSuffix(notePath, ".md") + ".pdf"
	if err := afero.WriteFile(store.Fs(), pdfPath, rendered, 0o644); err != nil {
		return "", fmt.Errorf("afero.WriteFile(%s) > %w", pdfPath, err)
	}
	return pdfPath, nil
}
