package file

import (
	"os"
	"sync"

	"github.com/oceanum-labs/oceanrag/internal/core/ports/driven"
	"github.com/oceanum-labs/oceanrag/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// defaultPromptTemplate is used when the prompt file does not exist. The
// {context} and {question} placeholders are substituted at query time.
const defaultPromptTemplate = `You are an expert marine scientist and ocean sustainability specialist. Answer the user's question based on the provided context from ocean research documents.

Guidelines:
- Use only information from the provided context
- Be specific and cite sources when possible
- If the context doesn't contain relevant information, say so
- Focus on ocean sustainability, marine ecosystems, and environmental impacts
- Provide practical insights when available

Context:
{context}

Question: {question}

Answer:`

// PromptStore loads the answer-generation prompt template from a
// user-editable file, falling back to the embedded default when the file
// is missing or unreadable. The file is read once and cached.
type PromptStore struct {
	path string

	once     sync.Once
	template string
}

// NewPromptStore creates a prompt store reading from path.
func NewPromptStore(path string) *PromptStore {
	return &PromptStore{path: path}
}

// Load returns the prompt template.
func (s *PromptStore) Load() string {
	s.once.Do(func() {
		data, err := os.ReadFile(s.path)
		if err != nil {
			logger.Debug("prompt file %s not readable, using built-in template", s.path)
			s.template = defaultPromptTemplate
			return
		}
		s.template = string(data)
	})
	return s.template
}
