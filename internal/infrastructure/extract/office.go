package extract

import (
	"fmt"

	"github.com/lu4p/cat"
)

// extractOffice extracts text from .odt and .rtf files.
func extractOffice(path string) (string, error) {
	text, err := cat.File(path)
	if err != nil {
		return "", fmt.Errorf("extracting document text: %w", err)
	}
	return text, nil
}
