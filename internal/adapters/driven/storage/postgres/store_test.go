package postgres

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanum-labs/oceanrag/internal/core/domain"
)

// testStore connects to the database described by OCEANRAG_TEST_DB_* env
// vars, or skips the test when none are set. These tests need a real
// PostgreSQL server with the pgvector extension available.
func testStore(t *testing.T) *Store {
	t.Helper()

	dbname := os.Getenv("OCEANRAG_TEST_DB_NAME")
	if dbname == "" {
		t.Skip("OCEANRAG_TEST_DB_NAME not set, skipping integration test")
	}

	port := 5432
	if p := os.Getenv("OCEANRAG_TEST_DB_PORT"); p != "" {
		parsed, err := strconv.Atoi(p)
		require.NoError(t, err)
		port = parsed
	}

	cfg := Config{
		Host:       os.Getenv("OCEANRAG_TEST_DB_HOST"),
		Port:       port,
		DBName:     dbname,
		User:       os.Getenv("OCEANRAG_TEST_DB_USER"),
		Password:   os.Getenv("OCEANRAG_TEST_DB_PASSWORD"),
		Dimensions: 4, // small vectors keep fixtures readable
	}
	if cfg.User == "" {
		cfg.User = "postgres"
	}

	store, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	require.NoError(t, store.Reset(context.Background()))
	return store
}

func testChunk(index int, content string, embedding []float32) domain.Chunk {
	return domain.Chunk{
		ID:         uuid.New().String(),
		Index:      index,
		Content:    content,
		Embedding:  embedding,
		TokenCount: len(content) / 4,
		Metadata:   map[string]any{"chunk_index": index},
	}
}

func TestStore_IngestAndSearchRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	doc := &domain.Document{
		Filename:     "baltic_seagrass_report.pdf",
		DocType:      "unknown",
		Organization: "Ocean Institute",
		FileSize:     2048,
		Metadata: map[string]any{
			"doc_type":         "unknown",
			"geographic_focus": "Baltic Sea",
			"topics":           []string{"seagrass_restoration"},
		},
	}
	chunks := []domain.Chunk{
		testChunk(0, "Seagrass meadows sequester carbon.", []float32{1, 0, 0, 0}),
		testChunk(1, "Restoration projects in the Baltic.", []float32{0, 1, 0, 0}),
	}

	require.NoError(t, store.CreateDocumentWithChunks(ctx, doc, chunks))
	assert.Positive(t, doc.ID)
	assert.False(t, doc.UploadDate.IsZero())

	exists, err := store.DocumentExists(ctx, "baltic_seagrass_report.pdf", 2048)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.DocumentExists(ctx, "baltic_seagrass_report.pdf", 4096)
	require.NoError(t, err)
	assert.False(t, exists, "same name but different size is a different document")

	stored, err := store.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, 0, stored[0].Index)
	assert.Equal(t, chunks[0].ID, stored[0].ID)
	assert.Equal(t, []float32{1, 0, 0, 0}, stored[0].Embedding)

	// A query vector equal to chunk 0's embedding ranks chunk 0 first
	// with similarity 1.
	results, err := store.SearchChunks(ctx, []float32{1, 0, 0, 0}, domain.SearchOptions{Limit: 5})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Seagrass meadows sequester carbon.", results[0].Content)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)
	assert.Equal(t, "Baltic Sea", results[0].Metadata["geographic_focus"])
}

func TestStore_DuplicateInsertReturnsAlreadyExists(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	doc := &domain.Document{Filename: "report.txt", FileSize: 100}
	require.NoError(t, store.CreateDocumentWithChunks(ctx, doc,
		[]domain.Chunk{testChunk(0, "content", []float32{1, 0, 0, 0})}))

	dup := &domain.Document{Filename: "report.txt", FileSize: 100}
	err := store.CreateDocumentWithChunks(ctx, dup,
		[]domain.Chunk{testChunk(0, "content", []float32{1, 0, 0, 0})})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestStore_SearchFilters(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	sustainability := &domain.Document{
		Filename: "esg_report.pdf", DocType: "sustainability_report", FileSize: 10,
		Metadata: map[string]any{"topics": []string{"blue_carbon"}},
	}
	annual := &domain.Document{
		Filename: "annual_report.pdf", DocType: "company_report", FileSize: 20,
		Metadata: map[string]any{"topics": []string{}},
	}
	require.NoError(t, store.CreateDocumentWithChunks(ctx, sustainability,
		[]domain.Chunk{testChunk(0, "esg content", []float32{1, 0, 0, 0})}))
	require.NoError(t, store.CreateDocumentWithChunks(ctx, annual,
		[]domain.Chunk{testChunk(0, "annual content", []float32{1, 0, 0, 0})}))

	results, err := store.SearchChunks(ctx, []float32{1, 0, 0, 0}, domain.SearchOptions{
		Limit:   5,
		Filters: domain.SearchFilters{DocType: "sustainability_report"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "esg_report.pdf", results[0].Filename)

	results, err = store.SearchChunks(ctx, []float32{1, 0, 0, 0}, domain.SearchOptions{
		Limit:   5,
		Filters: domain.SearchFilters{Topic: "blue_carbon"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "esg_report.pdf", results[0].Filename)
}

func TestStore_GetChunksMissingDocument(t *testing.T) {
	store := testStore(t)
	_, err := store.GetChunks(context.Background(), 99999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Stats(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	doc := &domain.Document{Filename: "report.txt", FileSize: 100}
	require.NoError(t, store.CreateDocumentWithChunks(ctx, doc, []domain.Chunk{
		testChunk(0, "first", []float32{1, 0, 0, 0}),
		testChunk(1, "second", []float32{0, 1, 0, 0}),
	}))

	stats, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Documents)
	assert.Equal(t, int64(2), stats.Chunks)
	assert.Equal(t, int64(2), stats.EmbeddedChunks)
	require.Len(t, stats.RecentDocuments, 1)
	assert.Equal(t, "report.txt", stats.RecentDocuments[0].Filename)
	assert.Equal(t, 2, stats.RecentDocuments[0].Chunks)
}
