// Package services contains domain business logic.
package services

import "strings"

const (
	// DefaultChunkSize is the default chunk size in words.
	DefaultChunkSize = 512
	// DefaultChunkOverlap is the default overlap between chunks in words.
	DefaultChunkOverlap = 50
)

// ChunkText splits text into overlapping word-based windows. The last chunk
// may be shorter than chunkSize; overlap >= size degrades to a step of one.
func ChunkText(text string, chunkSize, chunkOverlap int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := chunkSize - chunkOverlap
	if step <= 0 {
		step = 1
	}

	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
		if end >= len(words) {
			break
		}
	}

	return chunks
}
