package parser

import (
	"fmt"

	"github.com/tmc/langchaingo/textsplitter"

	"pdf-role-chat/internal/models"
)

const (
	defaultChunkSize    = 1000 // characters
	defaultChunkOverlap = 150  // characters
)

// Chunker splits page text with a recursive character splitter. Pages are
// split independently so a chunk never spans two pages.
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
	size     int
	overlap  int
}

func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = defaultChunkOverlap
		if overlap >= size {
			overlap = size / 10
		}
	}

	return &Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
		),
		size:    size,
		overlap: overlap,
	}
}

// ChunkPages returns the chunks of every page in order. ChunkID restarts at 1
// on each page.
func (c *Chunker) ChunkPages(pages []models.PageRecord) ([]models.Chunk, error) {
	var chunks []models.Chunk
	for _, page := range pages {
		parts, err := c.splitter.SplitText(page.Text)
		if err != nil {
			return nil, fmt.Errorf("split %s page %d: %w", page.Source, page.Page, err)
		}

		id := 0
		for _, part := range parts {
			if part == "" {
				continue
			}
			id++
			chunks = append(chunks, models.Chunk{
				Content: part,
				Source:  page.Source,
				Page:    page.Page,
				ChunkID: id,
			})
		}
	}
	return chunks, nil
}

func (c *Chunker) Size() int    { return c.size }
func (c *Chunker) Overlap() int { return c.overlap }
