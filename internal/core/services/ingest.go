package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/oceanum-labs/oceanrag/internal/chunker"
	"github.com/oceanum-labs/oceanrag/internal/core/domain"
	"github.com/oceanum-labs/oceanrag/internal/core/ports/driven"
	"github.com/oceanum-labs/oceanrag/internal/logger"
)

// DefaultEmbedBatchSize is how many chunks are embedded per provider call.
// Chosen well under the provider's maximum batch size.
const DefaultEmbedBatchSize = 100

// supportedExtensions lists the file types the ingestor accepts.
var supportedExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
	".md":  true,
}

// IngestStatus classifies the outcome of ingesting one file.
type IngestStatus string

// Ingestion outcomes.
const (
	// StatusIngested means the document and its chunks were stored.
	StatusIngested IngestStatus = "ingested"

	// StatusSkippedDuplicate means a document with the same filename and
	// size already exists; the call was an idempotent no-op.
	StatusSkippedDuplicate IngestStatus = "skipped_duplicate"

	// StatusSkippedUnsupported means the file extension is not handled.
	StatusSkippedUnsupported IngestStatus = "skipped_unsupported"

	// StatusFailed means ingestion of this file failed; directory
	// ingestion continues with the next file.
	StatusFailed IngestStatus = "failed"
)

// IngestResult reports the outcome for a single file.
type IngestResult struct {
	Filename string
	Status   IngestStatus
	Chunks   int
	Err      error
}

// Succeeded reports whether the file counts as successfully processed.
// Duplicate skips count as success, matching idempotent-ingestion semantics.
func (r IngestResult) Succeeded() bool {
	return r.Status == StatusIngested || r.Status == StatusSkippedDuplicate
}

// DirectorySummary tallies a directory ingestion.
type DirectorySummary struct {
	Attempted int
	Succeeded int
	Results   []IngestResult
}

// Ingestor orchestrates the ingestion pipeline: text extraction, metadata
// derivation, chunking, embedding and idempotent persistence.
type Ingestor struct {
	store     driven.DocumentStore
	embedder  driven.EmbeddingService
	pdf       driven.TextExtractor
	tokens    driven.TokenCounter
	splitter  *chunker.Splitter
	batchSize int
}

// IngestorOption configures the ingestor.
type IngestorOption func(*Ingestor)

// WithSplitter overrides the default chunk splitter.
func WithSplitter(s *chunker.Splitter) IngestorOption {
	return func(ing *Ingestor) {
		if s != nil {
			ing.splitter = s
		}
	}
}

// WithEmbedBatchSize overrides the embedding batch size.
func WithEmbedBatchSize(size int) IngestorOption {
	return func(ing *Ingestor) {
		if size > 0 {
			ing.batchSize = size
		}
	}
}

// NewIngestor creates an ingestor over the given store and capabilities.
func NewIngestor(
	store driven.DocumentStore,
	embedder driven.EmbeddingService,
	pdf driven.TextExtractor,
	tokens driven.TokenCounter,
	opts ...IngestorOption,
) *Ingestor {
	ing := &Ingestor{
		store:     store,
		embedder:  embedder,
		pdf:       pdf,
		tokens:    tokens,
		splitter:  chunker.New(),
		batchSize: DefaultEmbedBatchSize,
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// IngestFile ingests a single file. Re-ingesting a file with the same name
// and size is an idempotent no-op. Failures are returned in the result,
// never panicked or left half-written: the document row and its chunks are
// committed together or not at all.
func (ing *Ingestor) IngestFile(ctx context.Context, path, organization string) IngestResult {
	filename := filepath.Base(path)

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return IngestResult{
			Filename: filename,
			Status:   StatusSkippedUnsupported,
			Err:      fmt.Errorf("%w: %s", domain.ErrUnsupportedType, ext),
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return failed(filename, fmt.Errorf("stat file: %w", err))
	}
	fileSize := info.Size()

	exists, err := ing.store.DocumentExists(ctx, filename, fileSize)
	if err != nil {
		return failed(filename, fmt.Errorf("dedup check: %w", err))
	}
	if exists {
		logger.Info("document %s already exists, skipping", filename)
		return IngestResult{Filename: filename, Status: StatusSkippedDuplicate}
	}

	logger.Section("ingest " + filename)

	text, err := ing.extractText(ctx, path, ext)
	if err != nil {
		return failed(filename, err)
	}
	if strings.TrimSpace(text) == "" {
		return failed(filename, domain.ErrEmptyDocument)
	}

	meta := domain.ExtractFileMetadata(filename)
	doc := &domain.Document{
		Filename:     filename,
		DocType:      meta.DocType,
		Organization: organization,
		FileSize:     fileSize,
		Metadata:     meta.Map(),
	}

	segments := ing.splitter.Split(text)
	logger.Debug("split %s into %d chunks", filename, len(segments))

	embeddings, err := ing.embedBatches(ctx, segments)
	if err != nil {
		return failed(filename, err)
	}
	if len(embeddings) != len(segments) {
		return failed(filename, fmt.Errorf("%w: expected %d, got %d",
			domain.ErrEmbeddingCountMismatch, len(segments), len(embeddings)))
	}

	chunks := make([]domain.Chunk, len(segments))
	for i, segment := range segments {
		chunkMeta := meta.Map()
		chunkMeta["chunk_index"] = i
		chunkMeta["source_file"] = filename

		chunks[i] = domain.Chunk{
			ID:         uuid.New().String(),
			Index:      i,
			Content:    segment,
			Embedding:  embeddings[i],
			TokenCount: ing.tokens.Count(segment),
			Metadata:   chunkMeta,
		}
	}

	if err := ing.store.CreateDocumentWithChunks(ctx, doc, chunks); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Lost a race with a concurrent ingestion of the same file.
			return IngestResult{Filename: filename, Status: StatusSkippedDuplicate}
		}
		return failed(filename, fmt.Errorf("store document: %w", err))
	}

	logger.Info("ingested %s with %d chunks", filename, len(chunks))
	return IngestResult{Filename: filename, Status: StatusIngested, Chunks: len(chunks)}
}

// IngestDirectory ingests every supported file directly under dir, in
// lexical filename order. A per-file failure does not abort the batch.
func (ing *Ingestor) IngestDirectory(ctx context.Context, dir, organization string) (*DirectorySummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if supportedExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	summary := &DirectorySummary{Attempted: len(paths)}
	for _, path := range paths {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		result := ing.IngestFile(ctx, path, organization)
		if result.Err != nil {
			logger.Warn("ingest %s: %v", result.Filename, result.Err)
		}
		if result.Succeeded() {
			summary.Succeeded++
		}
		summary.Results = append(summary.Results, result)
	}

	logger.Info("ingestion complete: %d/%d files processed", summary.Succeeded, summary.Attempted)
	return summary, nil
}

// extractText routes by extension: PDFs through the extractor, plain text
// and markdown read directly.
func (ing *Ingestor) extractText(ctx context.Context, path, ext string) (string, error) {
	if ext == ".pdf" {
		text, err := ing.pdf.ExtractText(ctx, path)
		if err != nil {
			return "", fmt.Errorf("extract pdf: %w", err)
		}
		return text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return string(data), nil
}

// embedBatches embeds segments in fixed-size batches, preserving input
// order so batch i maps back to segments [i*batchSize, (i+1)*batchSize).
func (ing *Ingestor) embedBatches(ctx context.Context, segments []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(segments))
	for start := 0; start < len(segments); start += ing.batchSize {
		end := start + ing.batchSize
		if end > len(segments) {
			end = len(segments)
		}
		batch, err := ing.embedder.EmbedBatch(ctx, segments[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
		}
		embeddings = append(embeddings, batch...)
		logger.Debug("embedded chunks %d-%d", start+1, end)
	}
	return embeddings, nil
}

func failed(filename string, err error) IngestResult {
	return IngestResult{Filename: filename, Status: StatusFailed, Err: err}
}
