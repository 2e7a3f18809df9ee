package uploads

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
)

func TestStore_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store := New(dir)

	path, err := store.Save(context.Background(), "report.pdf", []byte("%PDF"), 1024)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, "_report.pdf"))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), content)

	again, err := store.Save(context.Background(), "report.pdf", []byte("%PDF"), 1024)
	require.NoError(t, err)
	assert.NotEqual(t, path, again)
}

func TestStore_SaveTooLarge(t *testing.T) {
	_, err := New(t.TempDir()).Save(context.Background(), "a.pdf", make([]byte, 11), 10)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestStore_SaveStripsDirectories(t *testing.T) {
	dir := t.TempDir()
	path, err := New(dir).Save(context.Background(), "../../etc/passwd.txt", []byte("x"), 0)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	_, err = New(dir).Save(context.Background(), "..", []byte("x"), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSanitise(t *testing.T) {
	assert.Equal(t, "a.pdf", sanitise(`C:\Users\me\a.pdf`))
	assert.Equal(t, "b.pdf", sanitise("/tmp/b.pdf"))
	assert.Equal(t, "", sanitise(""))
}
