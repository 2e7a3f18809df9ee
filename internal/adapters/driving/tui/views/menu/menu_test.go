package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/tui/messages"
)

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNewView(t *testing.T) {
	view := NewView(nil, nil)

	require.NotNil(t, view)
	assert.Equal(t, 0, view.Selected())
	assert.Nil(t, view.Init())
	assert.Equal(t, "Initialising...", view.View())

	items := view.Items()
	require.Len(t, items, 5)
	assert.Equal(t, messages.ViewAsk, items[0].View)
	assert.Equal(t, messages.ViewLogs, items[2].View)
	assert.True(t, items[4].Quit)
}

func TestView_NavigationWraps(t *testing.T) {
	view := NewView(nil, nil)

	view, _ = view.Update(keyRune('k'))
	assert.Equal(t, 4, view.Selected())

	view, _ = view.Update(keyRune('j'))
	assert.Equal(t, 0, view.Selected())

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, view.Selected())
}

func TestView_EnterChangesView(t *testing.T) {
	tests := []struct {
		index int
		want  messages.ViewType
	}{
		{0, messages.ViewAsk},
		{1, messages.ViewSearch},
		{2, messages.ViewLogs},
		{3, messages.ViewHelp},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			view := NewView(nil, nil)
			view.selected = tt.index

			_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

			require.NotNil(t, cmd)
			assert.Equal(t, messages.ViewChanged{View: tt.want}, cmd())
		})
	}
}

func TestView_DigitJumps(t *testing.T) {
	view := NewView(nil, nil)

	view, cmd := view.Update(keyRune('3'))

	assert.Equal(t, 2, view.Selected())
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewLogs}, cmd())

	_, cmd = view.Update(keyRune('9'))
	assert.Nil(t, cmd)
}

func TestView_HelpKey(t *testing.T) {
	_, cmd := NewView(nil, nil).Update(keyRune('?'))

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewHelp}, cmd())
}

func TestView_Quit(t *testing.T) {
	view := NewView(nil, nil)
	_, cmd := view.Update(keyRune('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	view.selected = 4
	_, cmd = view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_Render(t *testing.T) {
	view := NewView(nil, nil)
	view, _ = view.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	output := view.View()
	assert.Contains(t, output, "Sercha Agents")
	assert.Contains(t, output, "1. Ask a question")
	assert.Contains(t, output, "3. Interaction log")
	assert.Contains(t, output, "Route a question")
	assert.NotContains(t, output, "chunks indexed")

	view.SetIndexSize(42)
	assert.Contains(t, view.View(), "42 chunks indexed")
}
