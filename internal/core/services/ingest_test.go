package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanum-labs/oceanrag/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestIngestor(store *fakeStore, embedder *fakeEmbedder) *Ingestor {
	return NewIngestor(store, embedder, &fakeExtractor{}, fakeCounter{})
}

func TestIngestFile_StoresDocumentAndChunks(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "baltic_seagrass_report.txt",
		strings.Repeat("Seagrass meadows sequester blue carbon. ", 60))

	store := newFakeStore()
	result := newTestIngestor(store, newFakeEmbedder()).
		IngestFile(context.Background(), path, "Ocean Institute")

	require.NoError(t, result.Err)
	assert.Equal(t, StatusIngested, result.Status)
	assert.True(t, result.Succeeded())

	require.Len(t, store.docs, 1)
	doc := store.docs[0]
	assert.Equal(t, int64(1), doc.ID)
	assert.Equal(t, "baltic_seagrass_report.txt", doc.Filename)
	assert.Equal(t, "Ocean Institute", doc.Organization)
	assert.Equal(t, "unknown", doc.DocType)
	assert.Equal(t, "Baltic Sea", doc.Metadata["geographic_focus"])
	assert.Equal(t, []string{"seagrass_restoration"}, doc.Metadata["topics"])

	chunks, err := store.GetChunks(context.Background(), doc.ID)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, result.Chunks, len(chunks))
}

func TestIngestFile_ChunkShape(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "annual_report.txt",
		strings.Repeat("Quarterly results improved across fisheries. ", 80))

	store := newFakeStore()
	embedder := newFakeEmbedder()
	result := newTestIngestor(store, embedder).
		IngestFile(context.Background(), path, "Org")
	require.NoError(t, result.Err)

	chunks, err := store.GetChunks(context.Background(), 1)
	require.NoError(t, err)

	seen := map[string]bool{}
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index, "indices must be contiguous from zero")
		assert.Falsef(t, seen[chunk.ID], "chunk ID %s reused", chunk.ID)
		seen[chunk.ID] = true

		assert.Len(t, chunk.Embedding, embedder.Dimensions())
		assert.Equal(t, len(chunk.Content)/4, chunk.TokenCount)
		assert.Equal(t, i, chunk.Metadata["chunk_index"])
		assert.Equal(t, "annual_report.txt", chunk.Metadata["source_file"])
		assert.Equal(t, "company_report", chunk.Metadata["doc_type"])
	}
}

func TestIngestFile_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "report.txt", "Plastic pollution trends in coastal waters.")

	store := newFakeStore()
	embedder := newFakeEmbedder()
	ing := newTestIngestor(store, embedder)

	first := ing.IngestFile(context.Background(), path, "Org")
	require.Equal(t, StatusIngested, first.Status)
	callsAfterFirst := embedder.batchCalls

	second := ing.IngestFile(context.Background(), path, "Org")
	assert.Equal(t, StatusSkippedDuplicate, second.Status)
	assert.True(t, second.Succeeded())
	assert.NoError(t, second.Err)

	// The duplicate must be skipped before any extraction or embedding work.
	assert.Equal(t, callsAfterFirst, embedder.batchCalls)
	assert.Len(t, store.docs, 1)
}

func TestIngestFile_DuplicateRaceMapsToSkip(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "report.txt", "Some content.")

	store := newFakeStore()
	store.createErr = domain.ErrAlreadyExists

	result := newTestIngestor(store, newFakeEmbedder()).
		IngestFile(context.Background(), path, "Org")
	assert.Equal(t, StatusSkippedDuplicate, result.Status)
	assert.NoError(t, result.Err)
}

func TestIngestFile_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "slides.pptx", "irrelevant")

	result := newTestIngestor(newFakeStore(), newFakeEmbedder()).
		IngestFile(context.Background(), path, "Org")
	assert.Equal(t, StatusSkippedUnsupported, result.Status)
	assert.ErrorIs(t, result.Err, domain.ErrUnsupportedType)
	assert.False(t, result.Succeeded())
}

func TestIngestFile_EmptyDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.txt", "   \n\t  ")

	store := newFakeStore()
	result := newTestIngestor(store, newFakeEmbedder()).
		IngestFile(context.Background(), path, "Org")
	assert.Equal(t, StatusFailed, result.Status)
	assert.ErrorIs(t, result.Err, domain.ErrEmptyDocument)
	assert.Empty(t, store.docs, "nothing may be written for an empty document")
}

func TestIngestFile_EmbeddingCountMismatchWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "report.txt",
		strings.Repeat("Coral reefs support marine biodiversity. ", 100))

	store := newFakeStore()
	embedder := newFakeEmbedder()
	embedder.shortBy = 1

	result := newTestIngestor(store, embedder).
		IngestFile(context.Background(), path, "Org")
	assert.Equal(t, StatusFailed, result.Status)
	assert.ErrorIs(t, result.Err, domain.ErrEmbeddingCountMismatch)
	assert.Empty(t, store.docs)
	assert.Empty(t, store.chunks)
}

func TestIngestFile_EmbeddingFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "report.txt", "Offshore wind expansion plans.")

	store := newFakeStore()
	embedder := newFakeEmbedder()
	embedder.batchErr = errors.New("rate limited")

	result := newTestIngestor(store, embedder).
		IngestFile(context.Background(), path, "Org")
	assert.Equal(t, StatusFailed, result.Status)
	require.Error(t, result.Err)
	assert.Empty(t, store.docs)
}

func TestIngestFile_BatchesLargeDocuments(t *testing.T) {
	dir := t.TempDir()
	// Enough text for well over 5 chunks at the default chunk size.
	path := writeFile(t, dir, "long_report.txt",
		strings.Repeat("Marine spatial planning balances competing uses of the sea. ", 200))

	embedder := newFakeEmbedder()
	store := newFakeStore()
	ing := NewIngestor(store, embedder, &fakeExtractor{}, fakeCounter{}, WithEmbedBatchSize(2))

	result := ing.IngestFile(context.Background(), path, "Org")
	require.NoError(t, result.Err)
	require.Greater(t, result.Chunks, 4)

	wantCalls := (result.Chunks + 1) / 2
	assert.Equal(t, wantCalls, embedder.batchCalls)
}

func TestIngestDirectory_ContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_good.txt", "Baltic herring stocks recovered this year.")
	writeFile(t, dir, "b_empty.txt", "")
	writeFile(t, dir, "c_good.md", "Mediterranean posidonia meadows mapped.")
	writeFile(t, dir, "ignored.json", "{}")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	store := newFakeStore()
	summary, err := newTestIngestor(store, newFakeEmbedder()).
		IngestDirectory(context.Background(), dir, "Org")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Attempted, "json file and subdirectory are not attempted")
	assert.Equal(t, 2, summary.Succeeded)
	require.Len(t, summary.Results, 3)

	// Lexical order.
	assert.Equal(t, "a_good.txt", summary.Results[0].Filename)
	assert.Equal(t, "b_empty.txt", summary.Results[1].Filename)
	assert.Equal(t, "c_good.md", summary.Results[2].Filename)

	assert.Equal(t, StatusIngested, summary.Results[0].Status)
	assert.Equal(t, StatusFailed, summary.Results[1].Status)
	assert.Equal(t, StatusIngested, summary.Results[2].Status)
	assert.Len(t, store.docs, 2)
}

func TestIngestDirectory_MissingDir(t *testing.T) {
	_, err := newTestIngestor(newFakeStore(), newFakeEmbedder()).
		IngestDirectory(context.Background(), "/nonexistent/dir", "Org")
	assert.Error(t, err)
}

func TestIngestDirectory_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "content")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := newTestIngestor(newFakeStore(), newFakeEmbedder()).
		IngestDirectory(ctx, dir, "Org")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Succeeded)
}
