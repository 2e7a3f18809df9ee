// Package plaintext reads plain text files for ingestion.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.TextExtractor = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text extractor.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".txt", ".text", ".log", ".csv", ".json", ".rst"}
}

// Extract reads the file as UTF-8 text.
func (n *Normaliser) Extract(_ context.Context, path string) (*driven.ExtractedText, error) {
	if path == "" {
		return nil, domain.ErrInvalidInput
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text file: %w", err)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrUnsupportedType, filepath.Base(path))
	}

	return &driven.ExtractedText{
		Title: extractTitle(path),
		Text:  string(content),
	}, nil
}

// extractTitle derives a human-readable title from a file path.
func extractTitle(path string) string {
	filename := filepath.Base(path)
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}

	filename = strings.ReplaceAll(filename, "_", " ")
	return strings.ReplaceAll(filename, "-", " ")
}
