// Package filesystem watches a local directory and feeds new or changed
// documents into ingestion.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sercha-agents/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-agents/internal/logger"
)

// DefaultDebounce is how long a path must stay quiet before it is emitted.
// Editors and copies raise several events per save.
const DefaultDebounce = 500 * time.Millisecond

// ChangeType describes a filesystem change.
type ChangeType string

// Change types.
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
)

// Change is one file ready for ingestion.
type Change struct {
	Path string
	Type ChangeType
}

// Connector watches a directory tree for supported files.
type Connector struct {
	root     string
	accept   func(path string) bool
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// Option configures a Connector.
type Option func(*Connector)

// WithDebounce sets the quiet period before a change is emitted.
func WithDebounce(d time.Duration) Option {
	return func(c *Connector) {
		if d >= 0 {
			c.debounce = d
		}
	}
}

// New creates a connector for root. accept filters which files are
// reported; nil accepts every non-hidden file.
func New(root string, accept func(path string) bool, opts ...Option) *Connector {
	if accept == nil {
		accept = func(string) bool { return true }
	}
	c := &Connector{root: root, accept: accept, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Root returns the watched directory.
func (c *Connector) Root() string {
	return c.root
}

// Validate checks that root is an existing directory.
func (c *Connector) Validate() error {
	info, err := os.Stat(c.root)
	if err != nil {
		return fmt.Errorf("watch root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch root %s is not a directory", c.root)
	}
	return nil
}

// Watch starts watching root and every visible subdirectory. The channel
// is closed when ctx is cancelled or Close is called.
func (c *Connector) Watch(ctx context.Context) (<-chan Change, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := c.addTree(watcher, c.root); err != nil {
		watcher.Close()
		return nil, err
	}

	c.mu.Lock()
	if c.watcher != nil {
		c.watcher.Close()
	}
	c.watcher = watcher
	c.mu.Unlock()

	changes := make(chan Change)
	go c.loop(ctx, watcher, changes)
	return changes, nil
}

func (c *Connector) loop(ctx context.Context, watcher *fsnotify.Watcher, out chan<- Change) {
	defer close(out)

	pending := make(map[string]Change)
	var timer *time.Timer
	var fire <-chan time.Time

	flush := func() bool {
		for path, change := range pending {
			delete(pending, path)
			select {
			case out <- change:
			case <-ctx.Done():
				return false
			}
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) && !c.hidden(event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := c.addTree(watcher, event.Name); err != nil {
						logger.Warn("Watch %s: %v", event.Name, err)
					}
					continue
				}
			}

			change := c.handleFsEvent(event)
			if change == nil {
				continue
			}
			// A create followed by writes is still one new file.
			if prev, seen := pending[change.Path]; seen && prev.Type == ChangeCreated {
				change.Type = ChangeCreated
			}
			pending[change.Path] = *change

			if c.debounce == 0 {
				if !flush() {
					return
				}
				continue
			}
			if timer == nil {
				timer = time.NewTimer(c.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(c.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if !flush() {
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Filesystem watcher: %v", err)
		}
	}
}

// handleFsEvent maps an fsnotify event to a change, or nil when the event
// is not an ingestible file.
func (c *Connector) handleFsEvent(event fsnotify.Event) *Change {
	if c.hidden(event.Name) {
		return nil
	}

	var kind ChangeType
	switch {
	case event.Has(fsnotify.Create):
		kind = ChangeCreated
	case event.Has(fsnotify.Write):
		kind = ChangeUpdated
	default:
		return nil
	}

	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() || !c.accept(event.Name) {
		return nil
	}
	return &Change{Path: event.Name, Type: kind}
}

func (c *Connector) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Close stops the watcher.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	c.watcher = nil
	return err
}

// Run ingests every change under root until ctx is cancelled. Updated
// files are ingested again; the index keeps both versions.
func Run(ctx context.Context, c *Connector, ingest driving.IngestService) error {
	changes, err := c.Watch(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	logger.Info("Watching %s for new documents", c.root)
	for change := range changes {
		result := ingest.IngestFile(ctx, change.Path)
		if result.OK() {
			logger.Info("%s (%s)", result.Message, change.Type)
		} else {
			logger.Warn("%s: %s", change.Path, result.Message)
		}
	}

	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// hidden checks path relative to root, so a root inside a dot directory
// still works.
func (c *Connector) hidden(path string) bool {
	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		return isHidden(path)
	}
	return isHidden(rel)
}

// isHidden reports whether any path element starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}
