// Package domain contains the core business entities for the oceanrag
// pipeline: documents, chunks, search results and the filename metadata
// rules. It has no dependencies on adapters or external services.
package domain
