package driven

import "context"

// TextExtractor turns a file on disk into plain text for ingestion.
type TextExtractor interface {
	// SupportedExtensions returns lower-case file extensions, with the dot.
	SupportedExtensions() []string

	// Extract reads the file at path.
	Extract(ctx context.Context, path string) (*ExtractedText, error)
}

// ExtractedText is the output of a TextExtractor.
type ExtractedText struct {
	// Title is a human-readable document title.
	Title string

	// Text is the document body.
	Text string
}
