// Package extract provides text extraction from uploaded document formats.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extractor extracts plain text from document files. It implements
// ports.Extractor.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Supported reports whether the extractor understands the file extension.
// ext should include the leading dot (e.g. ".pdf").
func (e *Extractor) Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".txt", ".md", ".rst", ".csv", ".json", ".pdf", ".docx", ".odt", ".rtf", "":
		return true
	default:
		return false
	}
}

// Extract reads the file at path and returns its text content.
// Plain text formats are returned as-is (UTF-8 validated); PDF and word
// processor formats are parsed. Unknown extensions are treated as plain text.
func (e *Extractor) Extract(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".pdf":
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading file: %w", err)
		}
		return extractPDF(content)
	case ".docx":
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading file: %w", err)
		}
		return extractDOCX(content)
	case ".odt", ".rtf":
		return extractOffice(path)
	default:
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading file: %w", err)
		}
		return extractPlain(content)
	}
}
