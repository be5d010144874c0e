package rag

import (
	"context"

	"github.com/tmc/langchaingo/schema"

	"pdf-role-chat/internal/models"
)

const defaultTopK = 4

// Index is the vector store the assistant retrieves from. Both the chromem
// and the pgvector backends implement it.
type Index interface {
	Rebuild(ctx context.Context, chunks []models.Chunk) error
	Search(ctx context.Context, query string, k int) ([]models.Chunk, error)
}

// Retriever exposes an Index as a langchaingo retriever.
type Retriever struct {
	index Index
	k     int
}

var _ schema.Retriever = Retriever{}

func NewRetriever(index Index, k int) Retriever {
	if k <= 0 {
		k = defaultTopK
	}
	return Retriever{index: index, k: k}
}

func (r Retriever) GetRelevantDocuments(ctx context.Context, query string) ([]schema.Document, error) {
	chunks, err := r.index.Search(ctx, query, r.k)
	if err != nil {
		return nil, err
	}
	docs := make([]schema.Document, 0, len(chunks))
	for _, c := range chunks {
		docs = append(docs, ToDocument(c))
	}
	return docs, nil
}

func ToDocument(c models.Chunk) schema.Document {
	return schema.Document{
		PageContent: c.Content,
		Metadata: map[string]any{
			models.MetaSource:  c.Source,
			models.MetaPage:    c.Page,
			models.MetaChunkID: c.ChunkID,
		},
	}
}

func FromDocument(d schema.Document) models.Chunk {
	c := models.Chunk{Content: d.PageContent}
	c.Source, _ = d.Metadata[models.MetaSource].(string)
	c.Page, _ = d.Metadata[models.MetaPage].(int)
	c.ChunkID, _ = d.Metadata[models.MetaChunkID].(int)
	return c
}
