// Package unipdf provides a PDF text extractor using the UniPDF library.
package unipdf

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"github.com/oceanum-labs/oceanrag/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

var licenseOnce sync.Once

// setLicense applies the metered UniDoc license key from the environment.
// Without a key UniPDF refuses to process documents.
func setLicense() error {
	var err error
	licenseOnce.Do(func() {
		key := os.Getenv("UNIDOC_LICENSE_KEY")
		if key == "" {
			return
		}
		err = license.SetMeteredKey(key)
	})
	return err
}

// Extractor extracts text from PDF files page by page.
type Extractor struct{}

// New creates a PDF extractor. The UNIDOC_LICENSE_KEY environment
// variable is consumed on first use.
func New() (*Extractor, error) {
	if err := setLicense(); err != nil {
		return nil, fmt.Errorf("set unidoc license: %w", err)
	}
	return &Extractor{}, nil
}

// ExtractText returns the concatenated text of every page in the PDF,
// with a blank line between pages. Extraction checks ctx between pages
// so large documents can be cancelled.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	reader, err := model.NewPdfReader(f)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("count pages: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page, err := reader.GetPage(i)
		if err != nil {
			return "", fmt.Errorf("get page %d: %w", i, err)
		}

		ex, err := extractor.New(page)
		if err != nil {
			return "", fmt.Errorf("create extractor for page %d: %w", i, err)
		}

		text, err := ex.ExtractText()
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	return sb.String(), nil
}
