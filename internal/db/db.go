package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"pdf-role-chat/internal/config"
	"pdf-role-chat/internal/embedding"
	"pdf-role-chat/internal/models"
)

// ErrIndexNotFound is returned when the chunks table is empty.
var ErrIndexNotFound = models.ErrIndexNotFound

const insertBatchSize = 100

type ChunkRecord struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`
	ID            int64           `bun:"id,pk,autoincrement"`
	Content       string          `bun:"content,notnull"`
	Source        string          `bun:"source,notnull"`
	Page          int             `bun:"page,notnull"`
	ChunkID       int             `bun:"chunk_id,notnull"`
	Embedding     pgvector.Vector `bun:"embedding,notnull,type:vector"`
}

// Store is the Postgres/pgvector implementation of the chunk index.
type Store struct {
	db       *bun.DB
	embedder embeddings.Embedder
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

func ConnectDB(cfg *config.DatabaseConfig) *sql.DB {
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
}

// NewStore connects, prepares the schema and returns a ready store.
func NewStore(ctx context.Context, cfg *config.DatabaseConfig, embedder embeddings.Embedder) (*Store, error) {
	db := NewDB(ConnectDB(cfg), cfg.Debug)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := InitDB(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, embedder: embedder}, nil
}

func InitDB(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}
	if _, err := db.NewCreateTable().Model((*ChunkRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create chunks table: %w", err)
	}
	return nil
}

// Rebuild truncates the table and stores the embedded batch in one transaction.
func (s *Store) Rebuild(ctx context.Context, chunks []models.Chunk) error {
	embedded, err := embedding.GenerateEmbeddings(ctx, s.embedder, chunks)
	if err != nil {
		return err
	}

	records := make([]ChunkRecord, 0, len(embedded))
	for _, e := range embedded {
		records = append(records, ChunkRecord{
			Content:   e.Chunk.Content,
			Source:    e.Chunk.Source,
			Page:      e.Chunk.Page,
			ChunkID:   e.Chunk.ChunkID,
			Embedding: pgvector.NewVector(e.Embedding),
		})
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewTruncateTable().Model((*ChunkRecord)(nil)).Exec(ctx); err != nil {
			return fmt.Errorf("truncate chunks: %w", err)
		}
		for start := 0; start < len(records); start += insertBatchSize {
			batch := records[start:min(start+insertBatchSize, len(records))]
			if _, err := tx.NewInsert().Model(&batch).Exec(ctx); err != nil {
				return fmt.Errorf("insert chunks: %w", err)
			}
		}
		log.Info().Int("documents", len(records)).Msg("Stored chunks in postgres")
		return nil
	})
}

// Search orders chunks by cosine distance to the embedded query.
func (s *Store) Search(ctx context.Context, query string, k int) ([]models.Chunk, error) {
	count, err := s.db.NewSelect().Model((*ChunkRecord)(nil)).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	if count == 0 {
		return nil, ErrIndexNotFound
	}

	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var records []ChunkRecord
	err = s.db.NewSelect().
		Model(&records).
		Column("content", "source", "page", "chunk_id").
		OrderExpr("embedding <=> ?", pgvector.NewVector(vec)).
		Limit(max(k, 1)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	chunks := make([]models.Chunk, 0, len(records))
	for _, r := range records {
		chunks = append(chunks, models.Chunk{Content: r.Content, Source: r.Source, Page: r.Page, ChunkID: r.ChunkID})
	}
	return chunks, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
