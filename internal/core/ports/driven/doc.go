// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the document store, the embedding and
// language-model capabilities, text extraction, token counting and the
// prompt template store.
package driven
