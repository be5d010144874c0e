package chromemdb

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"pdf-role-chat/internal/models"
)

// ErrIndexNotFound is returned when searching before any batch was indexed.
var ErrIndexNotFound = models.ErrIndexNotFound

const compress = false

// VectorDBManager keeps the chunk index in a persistent chromem-go database.
// The collection is rebuilt wholesale for every upload batch.
type VectorDBManager struct {
	db             *chromem.DB
	collectionName string
	embed          chromem.EmbeddingFunc
	dbPath         string
}

// NewVectorDBManager opens (or creates) the database directory at dbPath.
// An empty dbPath keeps the index in memory.
func NewVectorDBManager(dbPath, collectionName string, embed chromem.EmbeddingFunc) (*VectorDBManager, error) {
	var db *chromem.DB
	if dbPath == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to open vector database %s: %w", dbPath, err)
		}
	}

	return &VectorDBManager{
		db:             db,
		collectionName: collectionName,
		embed:          embed,
		dbPath:         dbPath,
	}, nil
}

// Rebuild indexes chunks from scratch. Embeddings are computed before the
// old collection is dropped, so a failing embedder leaves the previous index
// in place.
func (m *VectorDBManager) Rebuild(ctx context.Context, chunks []models.Chunk) error {
	docs := make([]chromem.Document, 0, len(chunks))
	for _, chunk := range chunks {
		vec, err := m.embed(ctx, chunk.Content)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %s: %w", chunk.ID(), err)
		}
		docs = append(docs, chromem.Document{
			ID:        chunk.ID(),
			Content:   chunk.Content,
			Metadata:  CreateMetadata(chunk),
			Embedding: vec,
		})
	}

	if err := m.db.DeleteCollection(m.collectionName); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	c, err := m.db.CreateCollection(m.collectionName, nil, m.embed)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	if len(docs) == 0 {
		return nil
	}

	log.Info().Int("documents", len(docs)).Str("collection", m.collectionName).Msg("Adding documents to vector database")
	if err := c.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

// Search returns up to k chunks most similar to query.
func (m *VectorDBManager) Search(ctx context.Context, query string, k int) ([]models.Chunk, error) {
	if query == "" {
		return nil, fmt.Errorf("query must be provided")
	}
	c := m.db.GetCollection(m.collectionName, m.embed)
	if c == nil || c.Count() == 0 {
		return nil, ErrIndexNotFound
	}
	k = min(k, c.Count())
	if k <= 0 {
		k = 1
	}

	results, err := c.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	chunks := make([]models.Chunk, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, chunkFromResult(r))
	}
	return chunks, nil
}

func (m *VectorDBManager) Count() int {
	c := m.db.GetCollection(m.collectionName, m.embed)
	if c == nil {
		return 0
	}
	return c.Count()
}

// Export writes an encrypted backup of the collection. The key must be 32 bytes.
func (m *VectorDBManager) Export(filePath, encryptionKey string) error {
	if encryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}
	if m.db.GetCollection(m.collectionName, m.embed) == nil {
		return ErrIndexNotFound
	}

	log.Debug().Str("collection", m.collectionName).Str("file", filePath).Bool("compress", compress).Msg("Exporting collection")
	if err := m.db.ExportToFile(filePath, compress, encryptionKey, m.collectionName); err != nil {
		return fmt.Errorf("failed to export database: %w", err)
	}
	return nil
}

// Import replaces the collection with the one stored in a backup file.
func (m *VectorDBManager) Import(filePath, encryptionKey string) error {
	if err := m.db.ImportFromFile(filePath, encryptionKey, m.collectionName); err != nil {
		return fmt.Errorf("failed to import database: %w", err)
	}
	return nil
}

// CreateMetadata maps chunk provenance to chromem string metadata.
func CreateMetadata(c models.Chunk) map[string]string {
	return map[string]string{
		models.MetaSource:  c.Source,
		models.MetaPage:    strconv.Itoa(c.Page),
		models.MetaChunkID: strconv.Itoa(c.ChunkID),
	}
}

func chunkFromResult(r chromem.Result) models.Chunk {
	page, _ := strconv.Atoi(r.Metadata[models.MetaPage])
	chunkID, _ := strconv.Atoi(r.Metadata[models.MetaChunkID])
	return models.Chunk{
		Content: r.Content,
		Source:  r.Metadata[models.MetaSource],
		Page:    page,
		ChunkID: chunkID,
	}
}
