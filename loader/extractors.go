package loader

import (
	"context"
	"os"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
)

// PDFExtractor extracts the text layer of a PDF, one page per line group.
// Scanned pages without a text layer yield empty text.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDF extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract returns the text of every page joined by newlines.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	pages, err := documentloaders.NewPDF(f, info.Size()).Load(ctx)
	if err != nil {
		return "", err
	}

	texts := make([]string, len(pages))
	for i, page := range pages {
		texts[i] = page.PageContent
	}
	return strings.Join(texts, "\n"), nil
}

// TextExtractor reads plain text and Markdown files verbatim.
type TextExtractor struct{}

// NewTextExtractor creates a text extractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Extract returns the file content.
func (e *TextExtractor) Extract(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	docs, err := documentloaders.NewText(f).Load(ctx)
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return "", nil
	}
	return docs[0].PageContent, nil
}
