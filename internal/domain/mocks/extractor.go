// Package mocks provides mock implementations for testing.
package mocks

import "os"

// Extractor is a mock implementation of ports.Extractor that returns the raw
// file contents as text.
type Extractor struct {
	Err error
}

// Extract reads the file and returns its contents.
func (m *Extractor) Extract(path string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Supported always reports true.
func (m *Extractor) Supported(ext string) bool { return true }
