package ports

// Extractor defines the interface for pulling plain text out of a document
// file before chunking.
type Extractor interface {
	// Extract reads the file at path and returns its text content.
	Extract(path string) (string, error)

	// Supported reports whether the extractor understands the file extension.
	Supported(ext string) bool
}
