package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-agents/internal/core/services"
	"github.com/custodia-labs/sercha-agents/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// ErrPlaceholders is returned by CheckTemplate when an edited prompt does
// not keep the placeholders its caller formats into it.
var ErrPlaceholders = errors.New("prompt placeholders changed")

// defaultPrompts are written to the prompt directory on first use and
// served whenever a file is missing or unusable.
var defaultPrompts = map[string]string{
	driven.PromptDecideAgent:      services.DefaultDecidePrompt,
	driven.PromptSynthesizeAnswer: services.DefaultSynthesizePrompt,
}

const promptReadme = `# Prompts

Templates used when an LLM provider is configured.

- decide_agent.txt: picks one agent. One %s, the question.
- synthesize_answer.txt: merges agent summaries. Two %s, the question
  then the labelled summaries.

A file whose %s count differs from the default is ignored with a warning.
Delete a file to restore its default on the next start.
`

// PromptStore serves prompt templates from a directory of .txt files.
// Nothing touches the disk until the first Load.
type PromptStore struct {
	dir string

	once    sync.Once
	initErr error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore creates a store rooted at dir, or ~/.sercha-agents/prompts
// when dir is empty.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, DefaultDirName, "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the named template. User edits win over the defaults as
// long as they keep the same placeholders.
func (s *PromptStore) Load(name string) (string, error) {
	s.once.Do(func() { s.initErr = s.writeDefaults() })

	fallback, known := defaultPrompts[name]
	if s.initErr != nil {
		if known {
			return fallback, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	prompt, err := s.read(name)
	switch {
	case err != nil && known:
		return fallback, nil
	case err != nil:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	case known:
		if err := CheckTemplate(prompt, fallback); err != nil {
			logger.Warn("Ignoring %s: %v", s.path(name), err)
			prompt = fallback
		}
	}

	s.mu.Lock()
	if existing, ok := s.cache[name]; ok {
		prompt = existing
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()
	return prompt, nil
}

// Reload drops cached templates so the next Load rereads the files.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}

// CheckTemplate reports whether prompt has the same number of %s
// placeholders as want.
func CheckTemplate(prompt, want string) error {
	got, need := strings.Count(prompt, "%s"), strings.Count(want, "%s")
	if got != need {
		return fmt.Errorf("%w: found %d %%s, expected %d", ErrPlaceholders, got, need)
	}
	return nil
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

func (s *PromptStore) read(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// writeDefaults creates the directory, the default templates and the
// README. Existing files are left alone.
func (s *PromptStore) writeDefaults() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}

	files := map[string]string{"README.md": promptReadme}
	for name, content := range defaultPrompts {
		files[name+".txt"] = content
	}
	for file, content := range files {
		path := filepath.Join(s.dir, file)
		if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			return fmt.Errorf("write %s: %w", file, err)
		}
	}
	return nil
}
