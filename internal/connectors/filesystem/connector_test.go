package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driving"
)

func acceptTxt(path string) bool { return strings.HasSuffix(path, ".txt") }

func TestNew(t *testing.T) {
	c := New("/tmp/docs", nil)
	assert.Equal(t, "/tmp/docs", c.Root())
	assert.Equal(t, DefaultDebounce, c.debounce)
	assert.True(t, c.accept("anything"))

	c = New("/tmp/docs", acceptTxt, WithDebounce(0))
	assert.Zero(t, c.debounce)
}

func TestConnector_Validate(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, New(dir, nil).Validate())

	assert.Error(t, New(filepath.Join(dir, "missing"), nil).Validate())

	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	assert.Error(t, New(file, nil).Validate())
}

func TestHandleFsEvent(t *testing.T) {
	tests := []struct {
		name         string
		file         string
		dir          bool
		create       bool
		operation    fsnotify.Op
		expectedType ChangeType
	}{
		{name: "create file", file: "test.txt", create: true, operation: fsnotify.Create, expectedType: ChangeCreated},
		{name: "write file", file: "test.txt", create: true, operation: fsnotify.Write, expectedType: ChangeUpdated},
		{name: "remove file", file: "gone.txt", operation: fsnotify.Remove},
		{name: "rename file", file: "gone.txt", operation: fsnotify.Rename},
		{name: "chmod file", file: "test.txt", create: true, operation: fsnotify.Chmod},
		{name: "directory", file: "sub", dir: true, operation: fsnotify.Create},
		{name: "hidden file", file: ".hidden.txt", create: true, operation: fsnotify.Create},
		{name: "unsupported extension", file: "image.png", create: true, operation: fsnotify.Create},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			if tt.dir {
				require.NoError(t, os.Mkdir(path, 0o755))
			} else if tt.create {
				require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
			}

			change := New(dir, acceptTxt).handleFsEvent(fsnotify.Event{Name: path, Op: tt.operation})

			if tt.expectedType == "" {
				assert.Nil(t, change)
				return
			}
			require.NotNil(t, change)
			assert.Equal(t, tt.expectedType, change.Type)
			assert.Equal(t, path, change.Path)
		})
	}
}

func TestHandleFsEvent_RootInsideHiddenDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".config", "docs")
	require.NoError(t, os.MkdirAll(root, 0o755))
	path := filepath.Join(root, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	change := New(root, acceptTxt).handleFsEvent(fsnotify.Event{Name: path, Op: fsnotify.Create})
	assert.NotNil(t, change)
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{"path/to/.hidden", true},
		{"dir/.git/config", true},
		{"file.txt", false},
		{"path/to/file.txt", false},
		{".", false},
		{"..", false},
		{"path/../file", false},
		{"", false},
		{"file.hidden", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.path))
		})
	}
}

func TestConnector_WatchEmitsOnceForCreateAndWrite(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, acceptTxt, WithDebounce(100*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := c.Watch(ctx)
	require.NoError(t, err)
	defer c.Close()

	path := filepath.Join(dir, "new-file.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, _ = f.WriteString("first")
	_, _ = f.WriteString("second")
	require.NoError(t, f.Close())

	select {
	case change := <-changes:
		assert.Equal(t, path, change.Path)
		assert.Equal(t, ChangeCreated, change.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for file change event")
	}

	select {
	case change := <-changes:
		t.Fatalf("unexpected second change: %+v", change)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestConnector_WatchNewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, acceptTxt, WithDebounce(0))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := c.Watch(ctx)
	require.NoError(t, err)
	defer c.Close()

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// Give the watcher time to register the new directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "a.txt"), []byte("x"), 0o644))

	select {
	case change := <-changes:
		assert.Equal(t, filepath.Join(sub, "a.txt"), change.Path)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change in new subdirectory")
	}
}

func TestConnector_WatchMissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), nil).Watch(context.Background())
	assert.Error(t, err)
}

func TestConnector_WatchClosesOnCancel(t *testing.T) {
	c := New(t.TempDir(), nil)
	ctx, cancel := context.WithCancel(context.Background())

	changes, err := c.Watch(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

// mockIngestService records ingested paths.
type mockIngestService struct {
	mu    sync.Mutex
	once  sync.Once
	paths []string
	done  chan struct{}
}

func (m *mockIngestService) IngestFile(_ context.Context, path string) domain.IngestResult {
	m.mu.Lock()
	m.paths = append(m.paths, path)
	m.mu.Unlock()
	m.once.Do(func() { close(m.done) })
	return domain.IngestResult{Status: domain.IngestStatusSuccess, Message: "Processed 1 chunks from " + path}
}

func (m *mockIngestService) IngestUpload(context.Context, string, []byte) (domain.IngestResult, error) {
	return domain.IngestResult{}, nil
}

func (m *mockIngestService) IngestDir(context.Context, string) ([]driving.FileIngestResult, error) {
	return nil, nil
}

func (m *mockIngestService) Supports(path string) bool { return acceptTxt(path) }

func TestRun_IngestsChanges(t *testing.T) {
	dir := t.TempDir()
	ingest := &mockIngestService{done: make(chan struct{})}
	c := New(dir, ingest.Supports, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- Run(ctx, c, ingest) }()

	// Run registers the watcher asynchronously.
	time.Sleep(100 * time.Millisecond)
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	select {
	case <-ingest.done:
	case <-time.After(2 * time.Second):
		t.Fatal("file was not ingested")
	}
	cancel()
	require.NoError(t, <-errc)
	ingest.mu.Lock()
	defer ingest.mu.Unlock()
	assert.Equal(t, []string{path}, ingest.paths)
}
