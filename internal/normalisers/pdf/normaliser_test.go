package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	args   []string
}

func (m *mockRunner) Run(_ context.Context, _ string, args ...string) ([]byte, error) {
	m.args = args
	return m.output, m.err
}

func newTestNormaliser(runner CommandRunner) *Normaliser {
	n := NewWithRunner(runner)
	n.lookPath = func(string) (string, error) { return "/usr/bin/pdftotext", nil }
	return n
}

func writePDF(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake pdf content"), 0o600))
	return path
}

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, execRunner{}, normaliser.runner)
}

func TestSupportedExtensions(t *testing.T) {
	assert.Equal(t, []string{".pdf"}, New().SupportedExtensions())
}

func TestExtract_EmptyPath(t *testing.T) {
	_, err := New().Extract(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtract_MissingFile(t *testing.T) {
	n := newTestNormaliser(&mockRunner{})
	_, err := n.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtract_ToolMissing(t *testing.T) {
	n := NewWithRunner(&mockRunner{})
	n.lookPath = func(string) (string, error) { return "", errors.New("not found") }

	_, err := n.Extract(context.Background(), writePDF(t, "doc.pdf"))
	assert.ErrorIs(t, err, ErrPDFToolNotFound)
}

func TestExtract_WithMockRunner(t *testing.T) {
	runner := &mockRunner{output: []byte("PDF Title\n\nThis is the content of the PDF.\n")}
	n := newTestNormaliser(runner)
	path := writePDF(t, "document.pdf")

	result, err := n.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "PDF Title", result.Title)
	assert.Contains(t, result.Text, "This is the content of the PDF.")
	assert.Equal(t, []string{"-layout", "-enc", "UTF-8", path, "-"}, runner.args)
}

func TestExtract_RunnerError(t *testing.T) {
	n := newTestNormaliser(&mockRunner{err: errors.New("pdftotext crashed")})

	result, err := n.Extract(context.Background(), writePDF(t, "document.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext failed")
	assert.Nil(t, result)
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		path     string
		expected string
	}{
		{name: "first line as title", content: "Document Title\n\nSome content here.", path: "/doc.pdf", expected: "Document Title"},
		{name: "skip empty lines", content: "\n\n\nActual Title\nContent", path: "/doc.pdf", expected: "Actual Title"},
		{name: "fallback to filename", content: "", path: "/path/to/my_document.pdf", expected: "my document"},
		{name: "skip very long first line", content: string(make([]byte, 250)) + "\nShort Title\nContent", path: "/doc.pdf", expected: "Short Title"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractTitle(tc.content, tc.path))
		})
	}
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.TextExtractor = (*Normaliser)(nil)
}
