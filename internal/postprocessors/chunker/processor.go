// Package chunker splits document text into overlapping word windows.
package chunker

import (
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
)

// DefaultChunkSize is the default number of words per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of words shared by consecutive chunks.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Processor splits text into fixed-size word windows. Consecutive windows
// share overlap words, so each window starts chunkSize-overlap words after
// the previous one.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in words.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in words.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the window size in words.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the number of words shared by consecutive windows.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Windows splits text into word windows joined by single spaces.
//
// A window after the first is only emitted when it holds at least one word
// not already covered by its predecessor, so a document of W words yields
// ceil((W-overlap)/(chunkSize-overlap)) windows, or one window when
// 0 < W <= overlap. Whitespace-only input yields none.
func (p *Processor) Windows(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := p.chunkSize - p.overlap
	windows := make([]string, 0, len(words)/step+1)

	for start := 0; start < len(words); start += step {
		if start > 0 && start+p.overlap >= len(words) {
			break
		}
		end := start + p.chunkSize
		if end > len(words) {
			end = len(words)
		}
		window := strings.Join(words[start:end], " ")
		if strings.TrimSpace(window) == "" {
			continue
		}
		windows = append(windows, window)
	}

	return windows
}

// Split cuts text into chunks tagged with the source title.
// Each chunk gets a fresh ID and its ordinal within the document.
func (p *Processor) Split(text, sourceTitle string) []domain.Chunk {
	windows := p.Windows(text)
	if len(windows) == 0 {
		return nil
	}

	chunks := make([]domain.Chunk, 0, len(windows))
	for i, w := range windows {
		chunks = append(chunks, domain.Chunk{
			ID:            uuid.New().String(),
			Text:          w,
			SourceTitle:   sourceTitle,
			SequenceIndex: i,
		})
	}
	return chunks
}

// ExpectedCount returns how many chunks Split produces for a document
// of the given word count.
func (p *Processor) ExpectedCount(wordCount int) int {
	if wordCount <= 0 {
		return 0
	}
	if wordCount <= p.overlap {
		return 1
	}
	step := p.chunkSize - p.overlap
	return (wordCount - p.overlap + step - 1) / step
}
