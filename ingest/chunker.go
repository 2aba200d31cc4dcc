package ingest

import (
	"strings"

	"github.com/mageshboopath1/live-esg/core"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 1200

	// DefaultChunkOverlap is how many characters neighboring chunks share.
	DefaultChunkOverlap = 150
)

// Chunker splits page text into embedding-sized chunks. Pages are split
// independently so every chunk keeps the page it starts on.
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
}

// NewChunker creates a chunker with the given size and overlap.
// Non-positive values fall back to the defaults.
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = DefaultChunkOverlap
	}
	return &Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}
}

// ChunkPages splits the pages into chunks for the given document.
// Chunk indexes run contiguously across the whole document, in page order.
func (c *Chunker) ChunkPages(documentKey core.ID, pages []PageText) ([]*core.Chunk, error) {
	var chunks []*core.Chunk
	index := 0
	for _, page := range pages {
		pieces, err := c.splitter.SplitText(page.Text)
		if err != nil {
			return nil, err
		}
		for _, piece := range pieces {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			chunks = append(chunks, &core.Chunk{
				DocumentKey: documentKey,
				Index:       index,
				Page:        page.Number,
				Text:        piece,
			})
			index++
		}
	}
	return chunks, nil
}
