package list

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
)

func testItems(n int) []domain.ResultItem {
	items := make([]domain.ResultItem, n)
	for i := range items {
		items[i] = domain.ResultItem{
			ID:        fmt.Sprintf("item-%d", i),
			Title:     fmt.Sprintf("Title %d", i),
			Content:   fmt.Sprintf("content\nof item %d", i),
			SourceRef: fmt.Sprintf("https://example.com/%d", i),
			Distance:  float64(i) / 10,
		}
	}
	return items
}

func TestNewResultList(t *testing.T) {
	l := NewResultList(nil)

	require.NotNil(t, l)
	assert.Equal(t, 0, l.Count())
	assert.Nil(t, l.SelectedItem())
	assert.Contains(t, l.View(), "No results")
}

func TestResultList_SetItemsResetsSelection(t *testing.T) {
	l := NewResultList(nil)
	l.SetItems(testItems(3))
	l.SetSelected(2)

	l.SetItems(testItems(2))

	assert.Equal(t, 0, l.Selected())
	assert.Equal(t, 2, l.Count())
}

func TestResultList_Navigation(t *testing.T) {
	l := NewResultList(nil)
	l.SetItems(testItems(3))

	l.MoveUp()
	assert.Equal(t, 0, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, l.Selected())
	assert.Equal(t, "item-1", l.SelectedItem().ID)
}

func TestResultList_SetSelectedIgnoresOutOfRange(t *testing.T) {
	l := NewResultList(nil)
	l.SetItems(testItems(2))

	l.SetSelected(5)
	assert.Equal(t, 0, l.Selected())

	l.SetSelected(-1)
	assert.Equal(t, 0, l.Selected())
}

func TestResultList_ViewRendersItems(t *testing.T) {
	l := NewResultList(nil)
	l.SetDimensions(100, 30)
	l.SetItems(testItems(2))

	view := l.View()

	assert.Contains(t, view, "Results (2)")
	assert.Contains(t, view, "Title 0")
	assert.Contains(t, view, "https://example.com/1")
	assert.Contains(t, view, "content of item 0")
}

func TestResultList_ShowDistance(t *testing.T) {
	l := NewResultList(nil)
	l.SetDimensions(100, 30)
	l.SetItems(testItems(2))

	assert.NotContains(t, l.View(), "0.1000")

	l.ShowDistance(true)
	assert.Contains(t, l.View(), "0.1000")
}

func TestResultList_HidesSourceEqualToTitle(t *testing.T) {
	l := NewResultList(nil)
	l.SetDimensions(100, 30)
	l.SetItems([]domain.ResultItem{{Title: "guide.pdf", SourceRef: "guide.pdf", Content: "x"}})

	view := l.View()

	assert.Equal(t, 1, strings.Count(view, "guide.pdf"))
}

func TestResultList_ScrollsToSelection(t *testing.T) {
	l := NewResultList(nil)
	l.SetDimensions(100, 10)
	l.SetItems(testItems(10))

	for range 9 {
		l.MoveDown()
	}

	view := l.View()
	assert.Contains(t, view, "Title 9")
	assert.NotContains(t, view, "Title 0")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "héll...", truncate("héllo wörld", 7))
}
