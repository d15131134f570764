package driven

import "context"

// TextExtractor converts a binary source file into raw text.
// Plain text and markdown files are read directly by the ingestor; this
// port covers formats that need real extraction, currently PDF.
type TextExtractor interface {
	// ExtractText returns the text content of the file at path.
	ExtractText(ctx context.Context, path string) (string, error)
}

// TokenCounter reports the exact token count of a text span, as persisted
// with each chunk. This is distinct from the coarse character heuristic
// used for context budgeting.
type TokenCounter interface {
	Count(text string) int
}

// PromptStore loads the answer-generation prompt template. The template
// contains {context} and {question} placeholders; when no template file is
// available the store falls back to a built-in default.
type PromptStore interface {
	Load() string
}
