package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextSmallInput(t *testing.T) {
	chunker := NewTextChunker()

	chunks := chunker.ChunkText("First paragraph.\n\nSecond paragraph.", 1000, 100)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "First paragraph.")
	assert.Contains(t, chunks[0], "Second paragraph.")
}

func TestChunkTextSplitsOnParagraphs(t *testing.T) {
	chunker := NewTextChunker()

	para := strings.Repeat("word ", 30)
	text := strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para)

	chunks := chunker.ChunkText(text, 200, 0)
	assert.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 200)
	}
}

func TestChunkTextCarriesOverlap(t *testing.T) {
	chunker := NewTextChunker()

	text := strings.TrimSpace(strings.Repeat("alpha ", 40)) + "\n\n" + strings.TrimSpace(strings.Repeat("omega ", 40))
	chunks := chunker.ChunkText(text, 250, 50)
	require.Greater(t, len(chunks), 1)
	// Each follow-up chunk carries the tail of its predecessor.
	assert.Contains(t, chunks[1], "alpha")
	assert.Contains(t, chunks[1], "omega")
}

func TestChunkTextEmptyInput(t *testing.T) {
	chunker := NewTextChunker()
	assert.Empty(t, chunker.ChunkText("", 1000, 100))
	assert.Empty(t, chunker.ChunkText("\n\n\n\n", 1000, 100))
}
