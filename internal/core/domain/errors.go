package domain

import "errors"

// Domain errors represent pipeline failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a document with the same filename and
	// file size has already been ingested.
	ErrAlreadyExists = errors.New("document already exists")

	// ErrUnsupportedType indicates a file extension the pipeline cannot
	// extract text from.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrEmptyDocument indicates extraction produced no text.
	// This is a recoverable per-file failure during directory ingestion.
	ErrEmptyDocument = errors.New("no text extracted")

	// ErrEmbeddingCountMismatch indicates the embedding provider returned
	// a different number of vectors than chunks submitted. Fatal for the
	// document being ingested; nothing is written for it.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")

	// ErrEmbeddingUnavailable indicates the embedding service call failed.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStoreUnavailable indicates the document store is unreachable or
	// a query against it failed.
	ErrStoreUnavailable = errors.New("document store unavailable")
)
