package chromemdb

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-role-chat/internal/models"
)

// letterEmbedding is a normalised letter histogram, enough to rank lexical overlap.
func letterEmbedding(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' && unicode.IsLetter(r) {
			v[r-'a']++
		}
	}
	var norm float64
	for _, x := range v {
		norm += float64(x * x)
	}
	if norm == 0 {
		v[0] = 1
		return v, nil
	}
	n := float32(math.Sqrt(norm))
	for i := range v {
		v[i] /= n
	}
	return v, nil
}

func sampleChunks() []models.Chunk {
	return []models.Chunk{
		{Content: "apples and apple pie", Source: "fruit.pdf", Page: 2, ChunkID: 1},
		{Content: "zebra zoo quiz", Source: "zoo.pdf", Page: 5, ChunkID: 3},
	}
}

func TestSearchBeforeRebuild(t *testing.T) {
	m, err := NewVectorDBManager("", "test", letterEmbedding)
	require.NoError(t, err)

	_, err = m.Search(context.Background(), "apple", 4)
	assert.ErrorIs(t, err, ErrIndexNotFound)
	assert.Equal(t, 0, m.Count())
}

func TestRebuildAndSearch(t *testing.T) {
	ctx := context.Background()
	m, err := NewVectorDBManager("", "test", letterEmbedding)
	require.NoError(t, err)
	require.NoError(t, m.Rebuild(ctx, sampleChunks()))

	// k larger than the collection is clamped
	got, err := m.Search(ctx, "apple pie", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, sampleChunks()[0], got[0])
}

func TestRebuildReplacesPreviousBatch(t *testing.T) {
	ctx := context.Background()
	m, err := NewVectorDBManager("", "test", letterEmbedding)
	require.NoError(t, err)
	require.NoError(t, m.Rebuild(ctx, sampleChunks()))

	next := []models.Chunk{{Content: "brand new text", Source: "new.pdf", Page: 1, ChunkID: 1}}
	require.NoError(t, m.Rebuild(ctx, next))
	assert.Equal(t, 1, m.Count())

	got, err := m.Search(ctx, "apple", 4)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new.pdf", got[0].Source)
}

func TestFailedRebuildKeepsPreviousIndex(t *testing.T) {
	ctx := context.Background()
	down := false
	embed := func(ctx context.Context, text string) ([]float32, error) {
		if down && text == "brand new text" {
			return nil, errors.New("model down")
		}
		return letterEmbedding(ctx, text)
	}

	m, err := NewVectorDBManager(filepath.Join(t.TempDir(), "vectordb"), "test", embed)
	require.NoError(t, err)
	require.NoError(t, m.Rebuild(ctx, sampleChunks()))

	down = true
	next := []models.Chunk{
		{Content: "zebra again", Source: "new.pdf", Page: 1, ChunkID: 1},
		{Content: "brand new text", Source: "new.pdf", Page: 1, ChunkID: 2},
	}
	assert.ErrorContains(t, m.Rebuild(ctx, next), "model down")
	assert.Equal(t, 2, m.Count())

	got, err := m.Search(ctx, "apple pie", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fruit.pdf", got[0].Source)
}

func TestPersistentIndexSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "vectordb")

	m, err := NewVectorDBManager(dir, "test", letterEmbedding)
	require.NoError(t, err)
	require.NoError(t, m.Rebuild(ctx, sampleChunks()))

	reopened, err := NewVectorDBManager(dir, "test", letterEmbedding)
	require.NoError(t, err)
	got, err := reopened.Search(ctx, "zebra", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "zoo.pdf", got[0].Source)
	assert.Equal(t, 5, got[0].Page)
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	key := strings.Repeat("k", 32)
	backup := filepath.Join(t.TempDir(), "backup.gob.enc")

	m, err := NewVectorDBManager("", "test", letterEmbedding)
	require.NoError(t, err)
	assert.Error(t, m.Export(backup, ""))
	require.NoError(t, m.Rebuild(ctx, sampleChunks()))
	require.NoError(t, m.Export(backup, key))

	restored, err := NewVectorDBManager("", "test", letterEmbedding)
	require.NoError(t, err)
	require.NoError(t, restored.Import(backup, key))
	assert.Equal(t, 2, restored.Count())
}

func TestCreateMetadata(t *testing.T) {
	md := CreateMetadata(models.Chunk{Source: "a.pdf", Page: 12, ChunkID: 4})
	assert.Equal(t, map[string]string{"source": "a.pdf", "page": "12", "chunk_id": "4"}, md)
}
