package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"docsum/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type DBStorer interface {
	SaveDocument(context.Context, *types.Document) error
	GetDocumentByFilename(context.Context, string) (*types.Document, error)
	GetChunksByDocID(context.Context, uuid.UUID) ([]types.Chunk, error)
	SearchChunks(ctx context.Context, docID uuid.UUID, embedding []float32, limit int) ([]types.Chunk, error)
	UpdateSummary(ctx context.Context, docID uuid.UUID, summary, classification, method string) error
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool: pool,
	}, nil
}

// SaveDocument upserts the document row by filename and replaces its chunks
// in the same transaction. A duplicate filename overwrites the previous
// upload; a failure leaves the previous state untouched.
func (p *PostgresStore) SaveDocument(ctx context.Context, doc *types.Document) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO documents
		(id, filename, title, mime_type, page_count, chunk_count, classification, summary, processing_method, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1)
		ON CONFLICT (filename) DO UPDATE SET
			title = EXCLUDED.title,
			mime_type = EXCLUDED.mime_type,
			page_count = EXCLUDED.page_count,
			chunk_count = EXCLUDED.chunk_count,
			classification = EXCLUDED.classification,
			summary = EXCLUDED.summary,
			processing_method = EXCLUDED.processing_method,
			updated_at = EXCLUDED.updated_at,
			version = documents.version + 1
		RETURNING id`
	var docID uuid.UUID
	if err := tx.QueryRow(ctx, query,
		doc.ID,
		doc.Filename,
		doc.Title,
		doc.MimeType,
		doc.PageCount,
		doc.ChunkCount,
		doc.Classification,
		doc.Summary,
		doc.ProcessingMethod,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&docID); err != nil {
		return err
	}
	doc.ID = docID

	if _, err := tx.Exec(ctx, "DELETE FROM chunks WHERE doc_id = $1", docID); err != nil {
		return err
	}

	for i := range doc.Chunks {
		c := &doc.Chunks[i]
		c.DocID = docID
		_, err := tx.Exec(ctx,
			`INSERT INTO chunks (id, doc_id, position, content, embedding) VALUES ($1, $2, $3, $4, $5)`,
			c.ID, c.DocID, c.Position, c.Content, pgvector.NewVector(c.Embedding),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (p *PostgresStore) GetDocumentByFilename(ctx context.Context, filename string) (*types.Document, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, filename, title, mime_type, page_count, chunk_count, classification, summary, processing_method, created_at, updated_at, version
		 FROM documents WHERE filename = $1`, filename)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, sql.ErrNoRows
	}

	doc := &types.Document{}
	if err := rows.Scan(
		&doc.ID,
		&doc.Filename,
		&doc.Title,
		&doc.MimeType,
		&doc.PageCount,
		&doc.ChunkCount,
		&doc.Classification,
		&doc.Summary,
		&doc.ProcessingMethod,
		&doc.CreatedAt,
		&doc.UpdatedAt,
		&doc.Version); err != nil {
		return nil, err
	}
	return doc, nil
}

// GetChunksByDocID returns all chunks of a document in position order, used
// as full context for small documents.
func (p *PostgresStore) GetChunksByDocID(ctx context.Context, docID uuid.UUID) ([]types.Chunk, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, doc_id, position, content FROM chunks WHERE doc_id = $1 ORDER BY position`, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []types.Chunk
	for rows.Next() {
		var chunk types.Chunk
		if err := rows.Scan(&chunk.ID, &chunk.DocID, &chunk.Position, &chunk.Content); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// SearchChunks returns the closest chunks of one document by cosine distance.
func (p *PostgresStore) SearchChunks(ctx context.Context, docID uuid.UUID, embedding []float32, limit int) ([]types.Chunk, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}

	vector := pgvector.NewVector(embedding)

	query := `
		SELECT c.id, c.doc_id, c.position, c.content,
		       c.embedding <=> $2 AS distance
		FROM chunks c
		WHERE c.doc_id = $1 AND c.embedding IS NOT NULL
		ORDER BY c.embedding <=> $2
		LIMIT $3
	`
	rows, err := p.pool.Query(ctx, query, docID, vector, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []types.Chunk
	for rows.Next() {
		var chunk types.Chunk
		if err := rows.Scan(
			&chunk.ID,
			&chunk.DocID,
			&chunk.Position,
			&chunk.Content,
			&chunk.Distance); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// UpdateSummary refreshes the summary fields of a document. chunk_count is
// owned by SaveDocument: it must keep matching the stored chunk rows.
func (p *PostgresStore) UpdateSummary(ctx context.Context, docID uuid.UUID, summary, classification, method string) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE documents SET summary = $2, classification = $3, processing_method = $4, updated_at = $5
		 WHERE id = $1`,
		docID, summary, classification, method, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (p *PostgresStore) createTables(ctx context.Context) error {
	query := `
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS documents (
		id UUID PRIMARY KEY,
		filename TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		mime_type TEXT NOT NULL,
		page_count INT NOT NULL DEFAULT 1,
		chunk_count INT NOT NULL DEFAULT 0,
		classification TEXT,
		summary TEXT,
		processing_method TEXT,
		created_at TIMESTAMP WITH TIME ZONE,
		updated_at TIMESTAMP WITH TIME ZONE,
		version INTEGER DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_documents_filename ON documents(filename);

	CREATE TABLE IF NOT EXISTS chunks (
		id UUID PRIMARY KEY,
		doc_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		position INT NOT NULL,
		content TEXT NOT NULL,
		embedding vector(768)
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_embedding ON chunks USING ivfflat (embedding vector_cosine_ops)
	WITH (lists = 100);

	CREATE INDEX IF NOT EXISTS idx_chunks_doc_id ON chunks(doc_id);
	`
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) Init(ctx context.Context) error {
	return p.createTables(ctx)
}

func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		log.Println("Postgres connection pool is closed")
	}
	return nil
}
