package helper

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUUID(t *testing.T) {
	a, b := GenerateUUID(), GenerateUUID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
	assert.True(t, IsUUID(a))
	assert.False(t, IsUUID("flow-session"))
	assert.False(t, IsUUID(""))
}

func TestPrettyPrint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrettyPrint(&buf, map[string]int{"page": 3}))
	assert.Equal(t, "{\n  \"page\": 3\n}\n", buf.String())

	assert.Error(t, PrettyPrint(&buf, make(chan int)))
}

func TestSaveFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	path, err := SaveFile(dir, "../../escape/report.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.pdf"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(b))
}

func TestSaveFileOntoItself(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0o644))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := SaveFile(dir, "report.pdf", f)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(b))
}
