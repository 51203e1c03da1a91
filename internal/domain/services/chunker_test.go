package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		chunkSize    int
		chunkOverlap int
		expected     []string
	}{
		{
			name:         "empty text",
			text:         "",
			chunkSize:    4,
			chunkOverlap: 1,
			expected:     nil,
		},
		{
			name:         "whitespace only",
			text:         "  \n\t  ",
			chunkSize:    4,
			chunkOverlap: 1,
			expected:     nil,
		},
		{
			name:         "shorter than one chunk",
			text:         "one two three",
			chunkSize:    10,
			chunkOverlap: 2,
			expected:     []string{"one two three"},
		},
		{
			name:         "exact chunk size",
			text:         "a b c d",
			chunkSize:    4,
			chunkOverlap: 1,
			expected:     []string{"a b c d"},
		},
		{
			name:         "overlapping windows",
			text:         "a b c d e f",
			chunkSize:    4,
			chunkOverlap: 2,
			expected:     []string{"a b c d", "c d e f"},
		},
		{
			name:         "no overlap",
			text:         "a b c d e f",
			chunkSize:    2,
			chunkOverlap: 0,
			expected:     []string{"a b", "c d", "e f"},
		},
		{
			name:         "trailing partial chunk",
			text:         "a b c d e",
			chunkSize:    2,
			chunkOverlap: 0,
			expected:     []string{"a b", "c d", "e"},
		},
		{
			name:         "overlap equal to size degrades to step one",
			text:         "a b c",
			chunkSize:    2,
			chunkOverlap: 2,
			expected:     []string{"a b", "b c"},
		},
		{
			name:         "collapses internal whitespace",
			text:         "a\n\nb\t c",
			chunkSize:    10,
			chunkOverlap: 0,
			expected:     []string{"a b c"},
		},
		{
			name:         "negative overlap treated as zero",
			text:         "a b c d",
			chunkSize:    2,
			chunkOverlap: -5,
			expected:     []string{"a b", "c d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ChunkText(tt.text, tt.chunkSize, tt.chunkOverlap)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestChunkText_Defaults(t *testing.T) {
	words := make([]string, DefaultChunkSize+10)
	for i := range words {
		words[i] = "w"
	}
	text := strings.Join(words, " ")

	chunks := ChunkText(text, 0, -1)
	require.Len(t, chunks, 2)
	assert.Len(t, strings.Fields(chunks[0]), DefaultChunkSize)
}

func TestChunkText_EveryWordCovered(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog again and again"
	chunks := ChunkText(text, 5, 2)

	joined := strings.Join(chunks, " ")
	for _, w := range strings.Fields(text) {
		assert.Contains(t, joined, w)
	}
}
