package domain

import "time"

// Document represents an ingested source file with derived metadata.
// A document is uniquely identified for deduplication by (Filename, FileSize);
// once created its identity and size never change.
type Document struct {
	// ID is the store-assigned surrogate key, set on creation.
	ID int64

	// Filename is the base name of the source file.
	Filename string

	// DocType is the categorical document type derived from the filename.
	DocType string

	// Organization is the caller-supplied organisation tag. Optional.
	Organization string

	// UploadDate is when the document was ingested, set by the store.
	UploadDate time.Time

	// FileSize is the source file size in bytes, used for deduplication.
	FileSize int64

	// Metadata holds the derived tags: doc_type, geographic_focus, topics.
	Metadata map[string]any
}

// Chunk is a contiguous span of a document's extracted text together with
// its embedding. Chunks are created in a batch during ingestion and are
// immutable once stored; they are deleted only by cascade with their document.
type Chunk struct {
	// ID is the chunk identifier, assigned when the chunk is built.
	ID string

	// DocumentID links to the owning Document.
	DocumentID int64

	// Index is the zero-based position within the document's chunk
	// sequence. For a document with N chunks the indexes are exactly 0..N-1.
	Index int

	// Content is the text span.
	Content string

	// Embedding is the vector representation. Its length equals the
	// configured embedding dimension for every stored chunk.
	Embedding []float32

	// TokenCount is the exact token count of Content.
	TokenCount int

	// Metadata is the document metadata plus chunk_index and source_file.
	Metadata map[string]any

	// CreatedAt is when the chunk was stored.
	CreatedAt time.Time
}
