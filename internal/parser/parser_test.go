package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPagesUnreadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o644))

	pages, err := ExtractPages(path)
	assert.Error(t, err)
	assert.Empty(t, pages)

	pages, err = ExtractPages(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
	assert.Empty(t, pages)
}

func TestParseFileText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("first line\nsecond line\n"), 0o644))

	pages, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "notes.txt", pages[0].Source)
	assert.Equal(t, 1, pages[0].Page)
	assert.Contains(t, pages[0].Text, "second line")
}

func TestParseFileBlankText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.txt")
	require.NoError(t, os.WriteFile(path, []byte(" \n\t\n"), 0o644))

	pages, err := ParseFile(path)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestParseFileUnsupported(t *testing.T) {
	_, err := ParseFile("image.png")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.False(t, IsSupported("image.png"))
	assert.True(t, IsSupported("Report.PDF"))
}

func TestSheetText(t *testing.T) {
	assert.Equal(t, "", sheetText("Empty", [][]string{{"", ""}}))
	assert.Equal(t, "## Sheet: Q1\na\tb\nc\n", sheetText("Q1", [][]string{{"a", "b"}, {}, {"c", ""}}))
}
