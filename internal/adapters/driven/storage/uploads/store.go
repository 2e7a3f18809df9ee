// Package uploads stores uploaded files on the local filesystem.
package uploads

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.UploadStore = (*Store)(nil)

// Store writes uploads into one directory. Each file gets a uuid prefix so
// repeated uploads of the same name never overwrite each other.
type Store struct {
	dir string
}

// New creates an upload store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the upload directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes content and returns the stored path.
func (s *Store) Save(_ context.Context, filename string, content []byte, maxBytes int64) (string, error) {
	if maxBytes > 0 && int64(len(content)) > maxBytes {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", domain.ErrFileTooLarge, len(content), maxBytes)
	}

	name := sanitise(filename)
	if name == "" {
		return "", fmt.Errorf("%w: empty filename", domain.ErrInvalidInput)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}

	path := filepath.Join(s.dir, uuid.New().String()+"_"+name)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return path, nil
}

// sanitise strips directories and path separators from a client filename.
func sanitise(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
