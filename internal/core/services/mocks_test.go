package services

import (
	"context"
	"sync"

	"github.com/oceanum-labs/oceanrag/internal/core/domain"
	"github.com/oceanum-labs/oceanrag/internal/core/ports/driven"
)

// fakeStore is an in-memory DocumentStore double recording everything
// written to it.
type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	docs   []domain.Document
	chunks map[int64][]domain.Chunk

	searchResults []domain.SearchResult

	existsErr error
	createErr error
	searchErr error

	searchedWith domain.SearchOptions
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, chunks: map[int64][]domain.Chunk{}}
}

func (s *fakeStore) DocumentExists(_ context.Context, filename string, fileSize int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existsErr != nil {
		return false, s.existsErr
	}
	for _, doc := range s.docs {
		if doc.Filename == filename && doc.FileSize == fileSize {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) CreateDocumentWithChunks(_ context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	for _, existing := range s.docs {
		if existing.Filename == doc.Filename && existing.FileSize == doc.FileSize {
			return domain.ErrAlreadyExists
		}
	}
	doc.ID = s.nextID
	s.nextID++
	s.docs = append(s.docs, *doc)

	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)
	for i := range stored {
		stored[i].DocumentID = doc.ID
	}
	s.chunks[doc.ID] = stored
	return nil
}

func (s *fakeStore) SearchChunks(_ context.Context, _ []float32, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchedWith = opts
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	results := s.searchResults
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

func (s *fakeStore) GetChunks(_ context.Context, documentID int64) ([]domain.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chunks, ok := s.chunks[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return chunks, nil
}

func (s *fakeStore) Ping(context.Context) error { return nil }

// fakeEmbedder returns deterministic vectors. shortBy trims that many
// vectors off batch responses to simulate a provider miscount.
type fakeEmbedder struct {
	dim      int
	embedErr error
	batchErr error
	shortBy  int

	batchCalls int
}

func newFakeEmbedder() *fakeEmbedder { return &fakeEmbedder{dim: 8} }

func (e *fakeEmbedder) vector() []float32 {
	v := make([]float32, e.dim)
	v[0] = 1
	return v
}

func (e *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	if e.embedErr != nil {
		return nil, e.embedErr
	}
	return e.vector(), nil
}

func (e *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.batchCalls++
	if e.batchErr != nil {
		return nil, e.batchErr
	}
	n := len(texts) - e.shortBy
	if n < 0 {
		n = 0
	}
	vectors := make([][]float32, n)
	for i := range vectors {
		vectors[i] = e.vector()
	}
	return vectors, nil
}

func (e *fakeEmbedder) Dimensions() int { return e.dim }

func (e *fakeEmbedder) ModelName() string { return "fake-embedding" }

func (e *fakeEmbedder) Ping(context.Context) error { return nil }

// fakeExtractor serves canned text keyed by path.
type fakeExtractor struct {
	texts map[string]string
	err   error
}

func (x *fakeExtractor) ExtractText(_ context.Context, path string) (string, error) {
	if x.err != nil {
		return "", x.err
	}
	return x.texts[path], nil
}

// fakeCounter approximates tokens as len/4, mirroring the budget heuristic.
type fakeCounter struct{}

func (fakeCounter) Count(text string) int { return len(text) / 4 }

// fakeLLM returns a canned answer and records the messages it was sent.
type fakeLLM struct {
	answer string
	usage  domain.Usage
	err    error

	gotMessages []driven.ChatMessage
	gotOpts     driven.ChatOptions
}

func (l *fakeLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (*driven.ChatResult, error) {
	l.gotMessages = messages
	l.gotOpts = opts
	if l.err != nil {
		return nil, l.err
	}
	return &driven.ChatResult{Content: l.answer, Usage: l.usage}, nil
}

func (l *fakeLLM) ModelName() string { return "fake-chat" }

func (l *fakeLLM) Ping(context.Context) error { return nil }

// fakePrompts serves a fixed template.
type fakePrompts struct{ template string }

func (p fakePrompts) Load() string {
	if p.template != "" {
		return p.template
	}
	return "Context:\n{context}\n\nQuestion: {question}\n\nAnswer:"
}
