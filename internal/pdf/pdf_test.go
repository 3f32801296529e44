package pdf

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/bookrise/internal/vault"
)

const note = `---
title: Dune
id: b1
tags:
  - bookrise
---

# Dune

## Highlights

- Fear is the mind-killer. (page 12) ^hl-h1
- [[BookRise/Dune/_Highlights/Fear h1|Fear]]
- See [[BookRise/Dune/Dune]]
`

func TestPlainMarkdown(t *testing.T) {
	assert.Equal(t, `# Dune

## Highlights

- Fear is the mind-killer. (page 12)
- Fear
- See Dune
`, plainMarkdown(note))
}

func TestStripFrontmatter(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "frontmatter", content: "---\na: b\n---\n\nbody\n", want: "body\n"},
		{name: "no frontmatter", content: "# title\n", want: "# title\n"},
		{name: "unterminated", content: "---\na: b\n", want: "---\na: b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFrontmatter(tt.content))
		})
	}
}

func TestExportNote(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "BookRise/Dune/Dune.md", []byte(note), 0o644))
	store := vault.NewAferoStore(fs)

	got, err := ExportNote(store, "BookRise/Dune/Dune.md")
	require.NoError(t, err)
	assert.Equal(t, "BookRise/Dune/Dune.pdf", got)

	content, err := afero.ReadFile(fs, got)
	require.NoError(t, err)
	assert.True(t, len(content) > 4 && string(content[:4]) == "%PDF")

	_, err = ExportNote(store, "BookRise/Dune/Missing.md")
	assert.Error(t, err)
	_, err = ExportNote(store, "BookRise/Dune/Dune.txt")
	assert.Error(t, err)
}
