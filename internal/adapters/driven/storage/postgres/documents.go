package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"github.com/oceanum-labs/oceanrag/internal/core/domain"
)

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations, raised when a concurrent ingestion wins the dedup race.
const uniqueViolation = "23505"

// DocumentExists reports whether a document with the same filename and
// file size has already been ingested.
func (s *Store) DocumentExists(ctx context.Context, filename string, fileSize int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE filename = $1 AND file_size = $2)`,
		filename, fileSize,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check document existence: %w", err)
	}
	return exists, nil
}

// CreateDocumentWithChunks stores the document row and all of its chunks
// in one transaction and assigns doc.ID. A unique violation on
// (filename, file_size) maps to domain.ErrAlreadyExists so callers can
// treat the race as a duplicate skip.
func (s *Store) CreateDocumentWithChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO documents (filename, doc_type, organization, file_size, metadata)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, upload_date`,
		doc.Filename, doc.DocType, doc.Organization, doc.FileSize, doc.Metadata,
	).Scan(&doc.ID, &doc.UploadDate)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert document: %w", err)
	}

	batch := &pgx.Batch{}
	for _, chunk := range chunks {
		batch.Queue(
			`INSERT INTO chunks (id, doc_id, chunk_index, content, embedding, token_count, metadata)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			chunk.ID, doc.ID, chunk.Index, chunk.Content,
			pgvector.NewVector(chunk.Embedding), chunk.TokenCount, chunk.Metadata,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range chunks {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("insert chunk: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close chunk batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetChunks retrieves the stored chunks of a document ordered by chunk
// index.
func (s *Store) GetChunks(ctx context.Context, documentID int64) ([]domain.Chunk, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, doc_id, chunk_index, content, embedding, token_count, metadata, created_at
		 FROM chunks
		 WHERE doc_id = $1
		 ORDER BY chunk_index`,
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var chunk domain.Chunk
		var embedding pgvector.Vector
		if err := rows.Scan(
			&chunk.ID, &chunk.DocumentID, &chunk.Index, &chunk.Content,
			&embedding, &chunk.TokenCount, &chunk.Metadata, &chunk.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunk.Embedding = embedding.Slice()
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}

	if chunks == nil {
		return nil, domain.ErrNotFound
	}
	return chunks, nil
}

// DocumentSummary is a stored document without its chunk contents, as
// reported by status commands.
type DocumentSummary struct {
	ID           int64
	Filename     string
	DocType      string
	Organization string
	UploadDate   time.Time
	Chunks       int
}

// Stats summarises the state of the store.
type Stats struct {
	Documents       int64
	Chunks          int64
	EmbeddedChunks  int64
	RecentDocuments []DocumentSummary
}

// GetStats reports document and chunk counts plus the most recently
// ingested documents.
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.pool.QueryRow(ctx,
		`SELECT
			(SELECT count(*) FROM documents),
			(SELECT count(*) FROM chunks),
			(SELECT count(*) FROM chunks WHERE embedding IS NOT NULL)`,
	).Scan(&stats.Documents, &stats.Chunks, &stats.EmbeddedChunks)
	if err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT d.id, d.filename, COALESCE(d.doc_type, ''), COALESCE(d.organization, ''),
		        d.upload_date, count(c.id)
		 FROM documents d
		 LEFT JOIN chunks c ON c.doc_id = d.id
		 GROUP BY d.id
		 ORDER BY d.upload_date DESC, d.id DESC
		 LIMIT 10`,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var doc DocumentSummary
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.DocType, &doc.Organization,
			&doc.UploadDate, &doc.Chunks); err != nil {
			return nil, fmt.Errorf("scan document summary: %w", err)
		}
		stats.RecentDocuments = append(stats.RecentDocuments, doc)
	}
	return stats, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
