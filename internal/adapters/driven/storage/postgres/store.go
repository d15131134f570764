// Package postgres provides a DocumentStore adapter backed by PostgreSQL
// with the pgvector extension.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/oceanum-labs/oceanrag/internal/core/ports/driven"
	"github.com/oceanum-labs/oceanrag/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultHost       = "localhost"
	DefaultPort       = 5432
	DefaultSSLMode    = "disable"
	DefaultDimensions = 1536
	DefaultMaxConns   = 10
	DefaultTimeout    = 30 * time.Second
)

// Config holds PostgreSQL connection settings.
type Config struct {
	// Host is the database host (default: localhost).
	Host string

	// Port is the database port (default: 5432).
	Port int

	// DBName is the target database (required).
	DBName string

	// User is the database user (required).
	User string

	// Password is the database password.
	Password string

	// SSLMode is the libpq sslmode value (default: disable).
	SSLMode string

	// Dimensions is the embedding vector size (default: 1536). It must
	// match the embedding model's output dimension.
	Dimensions int

	// MaxConns caps the connection pool size (default: 10).
	MaxConns int32

	// ConnectTimeout bounds connection establishment (default: 30s).
	ConnectTimeout time.Duration
}

// connString renders the config as a libpq keyword/value string.
func (c Config) connString() string {
	s := fmt.Sprintf("host=%s port=%d dbname=%s user=%s sslmode=%s",
		c.Host, c.Port, c.DBName, c.User, c.SSLMode)
	if c.Password != "" {
		s += fmt.Sprintf(" password=%s", c.Password)
	}
	if c.ConnectTimeout > 0 {
		s += fmt.Sprintf(" connect_timeout=%d", int(c.ConnectTimeout.Seconds()))
	}
	return s
}

// Store is a document store on PostgreSQL + pgvector. Each operation
// acquires a connection from the pool and releases it before returning.
type Store struct {
	pool       *pgxpool.Pool
	dimensions int
}

// New connects to PostgreSQL and returns a ready store. The pgvector
// types are registered on every pooled connection so embeddings can be
// bound and scanned natively.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DBName == "" {
		return nil, fmt.Errorf("postgres: database name is required")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("postgres: user is required")
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = DefaultSSLMode
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.MaxConns == 0 {
		cfg.MaxConns = DefaultMaxConns
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = DefaultTimeout
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.connString())
	if err != nil {
		return nil, fmt.Errorf("parse connection config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Debug("connected to postgres at %s:%d/%s", cfg.Host, cfg.Port, cfg.DBName)
	return &Store{pool: pool, dimensions: cfg.Dimensions}, nil
}

// Ping validates store connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
