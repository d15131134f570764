package cli

import (
	"context"
	"path/filepath"

	"github.com/oceanum-labs/oceanrag/internal/adapters/driven/storage/postgres"
	"github.com/oceanum-labs/oceanrag/internal/core/domain"
	"github.com/oceanum-labs/oceanrag/internal/core/services"
)

type mockIngestor struct {
	fileResult services.IngestResult
	summary    *services.DirectorySummary
	dirErr     error

	gotPath string
	gotDir  string
	gotOrg  string
}

func (m *mockIngestor) IngestFile(_ context.Context, path, organization string) services.IngestResult {
	m.gotPath = path
	m.gotOrg = organization
	result := m.fileResult
	if result.Filename == "" {
		result.Filename = filepath.Base(path)
	}
	return result
}

func (m *mockIngestor) IngestDirectory(_ context.Context, dir, organization string) (*services.DirectorySummary, error) {
	m.gotDir = dir
	m.gotOrg = organization
	if m.dirErr != nil {
		return nil, m.dirErr
	}
	if m.summary == nil {
		return &services.DirectorySummary{}, nil
	}
	return m.summary, nil
}

type mockWatcher struct {
	watchErr error

	gotDir string
	gotOrg string
	calls  int
}

func (m *mockWatcher) Watch(_ context.Context, dir, organization string) error {
	m.calls++
	m.gotDir = dir
	m.gotOrg = organization
	return m.watchErr
}

type mockRetriever struct {
	response *domain.QueryResponse
	gotQ     string
	gotOpts  domain.SearchOptions
}

func (m *mockRetriever) Query(_ context.Context, question string, opts domain.SearchOptions) *domain.QueryResponse {
	m.gotQ = question
	m.gotOpts = opts
	if m.response != nil {
		return m.response
	}
	return &domain.QueryResponse{
		Answer:  "mock answer",
		Sources: []domain.Source{},
		Metadata: domain.QueryMetadata{
			Question:       question,
			FiltersApplied: opts.Filters,
		},
	}
}

type mockAdmin struct {
	stats     *postgres.Stats
	setupErr  error
	resetErr  error
	pingErr   error
	installed bool

	setupCalls int
	resetCalls int
}

func (m *mockAdmin) Setup(context.Context) error {
	m.setupCalls++
	return m.setupErr
}

func (m *mockAdmin) Reset(context.Context) error {
	m.resetCalls++
	return m.resetErr
}

func (m *mockAdmin) GetStats(context.Context) (*postgres.Stats, error) {
	if m.stats != nil {
		return m.stats, nil
	}
	return &postgres.Stats{}, nil
}

func (m *mockAdmin) VectorExtensionInstalled(context.Context) (bool, error) {
	return m.installed, nil
}

func (m *mockAdmin) Ping(context.Context) error { return m.pingErr }

// setupTestServices swaps the package-level services for mocks and
// returns a cleanup restoring the previous wiring.
func setupTestServices() (*mockIngestor, *mockRetriever, *mockAdmin, func()) {
	oldIngestor, oldRetriever, oldAdmin, oldWatcher := ingestor, retriever, admin, watcher

	mi := &mockIngestor{}
	mr := &mockRetriever{}
	ma := &mockAdmin{installed: true}
	ingestor, retriever, admin, watcher = mi, mr, ma, &mockWatcher{}

	return mi, mr, ma, func() {
		ingestor, retriever, admin, watcher = oldIngestor, oldRetriever, oldAdmin, oldWatcher
	}
}
