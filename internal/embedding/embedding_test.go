package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-role-chat/internal/config"
	"pdf-role-chat/internal/models"
)

type lengthEmbedder struct {
	err   error
	short bool
}

func (e lengthEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, []float32{float32(len(t))})
	}
	if e.short {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (e lengthEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text))}, e.err
}

func TestGenerateEmbeddingsKeepsChunkOrder(t *testing.T) {
	chunks := []models.Chunk{
		{Content: "a", Source: "x.pdf", Page: 1, ChunkID: 1},
		{Content: "bbb", Source: "x.pdf", Page: 2, ChunkID: 1},
	}

	out, err := GenerateEmbeddings(context.Background(), lengthEmbedder{}, chunks)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, chunks[1], out[1].Chunk)
	assert.Equal(t, []float32{3}, out[1].Embedding)
}

func TestGenerateEmbeddingsErrors(t *testing.T) {
	chunks := []models.Chunk{{Content: "a"}, {Content: "b"}}

	_, err := GenerateEmbeddings(context.Background(), lengthEmbedder{err: errors.New("down")}, chunks)
	assert.Error(t, err)

	_, err = GenerateEmbeddings(context.Background(), lengthEmbedder{short: true}, chunks)
	assert.Error(t, err)

	out, err := GenerateEmbeddings(context.Background(), lengthEmbedder{}, nil)
	assert.NoError(t, err)
	assert.Nil(t, out)
}

func TestEmbeddingFunc(t *testing.T) {
	f := EmbeddingFunc(lengthEmbedder{})
	v, err := f(context.Background(), "four")
	require.NoError(t, err)
	assert.Equal(t, []float32{4}, v)
}

func TestNewEmbedderProviders(t *testing.T) {
	_, err := NewEmbedder(&config.LLMConfig{Provider: config.ProviderOllama, BaseURL: "http://localhost:11434", Model: "nomic-embed-text"})
	require.NoError(t, err)

	_, err = NewEmbedder(&config.LLMConfig{Provider: config.ProviderOpenAI, BaseURL: "https://openrouter.ai/api/v1", Key: "sk-test", Model: "text-embedding-3-small"})
	require.NoError(t, err)

	_, err = NewEmbedder(&config.LLMConfig{Provider: "bedrock"})
	assert.Error(t, err)
}
