// Package jsonfile keeps the interaction log as a single JSON array on disk.
//
// Every append rewrites the whole file, so appends get slower as the log
// grows. Use the sqlite backend for long-running deployments.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
)

// Ensure LogStore implements the interface.
var _ driven.LogStore = (*LogStore)(nil)

// LogStore is a LogStore backed by one JSON file.
type LogStore struct {
	mu   sync.Mutex
	path string
}

// NewLogStore creates a log store at path. The parent directory is created
// on first append.
func NewLogStore(path string) *LogStore {
	return &LogStore{path: path}
}

// Path returns the log file path.
func (s *LogStore) Path() string {
	return s.path
}

// Append reads the array, appends entry and rewrites the file atomically.
func (s *LogStore) Append(_ context.Context, entry domain.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	entries = append(entries, entry)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling log: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing log: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing log: %w", err)
	}
	return nil
}

// ListAll returns every entry in insertion order.
func (s *LogStore) ListAll(_ context.Context) ([]domain.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *LogStore) read() ([]domain.LogEntry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.LogEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}

	entries := []domain.LogEntry{}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing log %s: %w", s.path, err)
	}
	return entries, nil
}
