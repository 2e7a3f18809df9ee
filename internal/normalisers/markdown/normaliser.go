// Package markdown extracts plain text from Markdown files.
package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.TextExtractor = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown extractor.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

// Extract reads the file and strips Markdown formatting. The title is
// the first H1 heading, or the filename.
func (n *Normaliser) Extract(_ context.Context, path string) (*driven.ExtractedText, error) {
	if path == "" {
		return nil, domain.ErrInvalidInput
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markdown file: %w", err)
	}
	content := string(raw)

	return &driven.ExtractedText{
		Title: extractMarkdownTitle(content, path),
		Text:  stripMarkdown(content),
	}, nil
}

var (
	codeBlockPattern  = regexp.MustCompile("(?s)```[^`]*```")
	inlineCodePattern = regexp.MustCompile("`[^`]+`")
	imagePattern      = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	linkPattern       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headingPattern    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blockquotePattern = regexp.MustCompile(`(?m)^>\s*`)
	rulePattern       = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	bulletPattern     = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedPattern   = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	blankRunPattern   = regexp.MustCompile(`\n{3,}`)
)

// extractMarkdownTitle returns the first H1 heading, or the filename.
func extractMarkdownTitle(content, path string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}

	filename := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	filename = strings.ReplaceAll(filename, "_", " ")
	return strings.ReplaceAll(filename, "-", " ")
}

// stripMarkdown removes common markdown formatting.
func stripMarkdown(content string) string {
	// Code is dropped; prose around it is what gets embedded.
	content = codeBlockPattern.ReplaceAllString(content, "")
	content = inlineCodePattern.ReplaceAllString(content, "")
	content = imagePattern.ReplaceAllString(content, "")
	content = linkPattern.ReplaceAllString(content, "$1")
	content = headingPattern.ReplaceAllString(content, "")

	// Remove bold/italic markers
	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = strings.ReplaceAll(content, "*", "")
	content = strings.ReplaceAll(content, "_", " ")

	content = blockquotePattern.ReplaceAllString(content, "")
	content = rulePattern.ReplaceAllString(content, "")
	content = bulletPattern.ReplaceAllString(content, "")
	content = numberedPattern.ReplaceAllString(content, "")
	content = blankRunPattern.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
