package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oceanum-labs/oceanrag/internal/logger"
)

// EnsureDatabase creates the target database if it does not exist, by
// connecting to the maintenance database with the same credentials.
func EnsureDatabase(ctx context.Context, cfg Config) error {
	maintenance := cfg
	maintenance.DBName = "postgres"

	conn, err := pgx.Connect(ctx, maintenance.connString())
	if err != nil {
		return fmt.Errorf("connect to maintenance database: %w", err)
	}
	defer conn.Close(ctx)

	var exists bool
	err = conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`, cfg.DBName,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check database existence: %w", err)
	}
	if exists {
		logger.Debug("database %s already exists", cfg.DBName)
		return nil
	}

	// CREATE DATABASE cannot take a bind parameter.
	if _, err := conn.Exec(ctx, fmt.Sprintf(`CREATE DATABASE %q`, cfg.DBName)); err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	logger.Info("created database %s", cfg.DBName)
	return nil
}

// Setup creates the pgvector extension, the documents and chunks tables
// and their indexes. It is idempotent.
//
// The unique index on (filename, file_size) is what makes duplicate
// detection linearizable: the slower of two concurrent ingestions of the
// same file fails its insert instead of writing a second copy.
func (s *Store) Setup(ctx context.Context) error {
	statements := []struct {
		desc string
		sql  string
	}{
		{"pgvector extension", `CREATE EXTENSION IF NOT EXISTS vector`},
		{"documents table", `
			CREATE TABLE IF NOT EXISTS documents (
				id BIGSERIAL PRIMARY KEY,
				filename VARCHAR(255) NOT NULL,
				doc_type VARCHAR(100),
				organization VARCHAR(255),
				upload_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				file_size BIGINT,
				metadata JSONB
			)`},
		{"chunks table", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS chunks (
				id UUID PRIMARY KEY,
				doc_id BIGINT REFERENCES documents(id) ON DELETE CASCADE,
				chunk_index INTEGER NOT NULL,
				content TEXT NOT NULL,
				embedding vector(%d),
				token_count INTEGER,
				metadata JSONB,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`, s.dimensions)},
		{"dedup index", `
			CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_dedup
			ON documents(filename, file_size)`},
		{"vector index", `
			CREATE INDEX IF NOT EXISTS chunks_embedding_idx
			ON chunks USING ivfflat (embedding vector_cosine_ops)
			WITH (lists = 100)`},
		{"doc_type index", `CREATE INDEX IF NOT EXISTS idx_documents_doc_type ON documents(doc_type)`},
		{"organization index", `CREATE INDEX IF NOT EXISTS idx_documents_organization ON documents(organization)`},
		{"chunk doc index", `CREATE INDEX IF NOT EXISTS idx_chunks_doc_id ON chunks(doc_id)`},
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt.sql); err != nil {
			return fmt.Errorf("create %s: %w", stmt.desc, err)
		}
		logger.Debug("created %s", stmt.desc)
	}

	logger.Info("database schema ready")
	return nil
}

// Reset drops the tables and recreates the schema from scratch. All
// ingested data is lost.
func (s *Store) Reset(ctx context.Context) error {
	// chunks first, it references documents
	drops := []string{
		`DROP TABLE IF EXISTS chunks CASCADE`,
		`DROP TABLE IF EXISTS documents CASCADE`,
	}
	for _, sql := range drops {
		if _, err := s.pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	logger.Info("dropped existing tables")

	return s.Setup(ctx)
}

// VectorExtensionInstalled reports whether the pgvector extension is
// available in the connected database.
func (s *Store) VectorExtensionInstalled(ctx context.Context) (bool, error) {
	var installed bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'vector')`,
	).Scan(&installed)
	if err != nil {
		return false, fmt.Errorf("check vector extension: %w", err)
	}
	return installed, nil
}
