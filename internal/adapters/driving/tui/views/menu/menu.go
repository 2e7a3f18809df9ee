// Package menu is the TUI landing screen.
package menu

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. Items with Quit set end the program.
type Item struct {
	Label       string
	Description string
	View        messages.ViewType
	Quit        bool
}

// View lists the screens and shows how many chunks are indexed.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	items    []Item
	selected int
	chunks   int
	width    int
	height   int
	ready    bool
}

// NewView creates the menu. Nil styles or keymap select the defaults.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles: s,
		keymap: km,
		items: []Item{
			{Label: "Ask a question", Description: "Route a question to documents, arXiv or the web", View: messages.ViewAsk},
			{Label: "Search documents", Description: "Inspect the nearest chunks in the index", View: messages.ViewSearch},
			{Label: "Interaction log", Description: "Review past questions and which agents answered", View: messages.ViewLogs},
			{Label: "Help", Description: "Keybindings", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		chunks: -1,
		width:  80,
		height: 24,
	}
}

// Init implements the view lifecycle; the menu has nothing to load.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and selects items. Digits jump straight to an item.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		keyStr := msg.String()
		switch {
		case keymap.Matches(keyStr, v.keymap.Up):
			v.selected = (v.selected - 1 + len(v.items)) % len(v.items)
		case keymap.Matches(keyStr, v.keymap.Down):
			v.selected = (v.selected + 1) % len(v.items)
		case keymap.Matches(keyStr, v.keymap.Submit):
			return v, v.choose(v.selected)
		case keymap.Matches(keyStr, v.keymap.Help):
			return v, changeView(messages.ViewHelp)
		case keymap.Matches(keyStr, v.keymap.Quit):
			return v, tea.Quit
		default:
			if n, err := strconv.Atoi(keyStr); err == nil && n >= 1 && n <= len(v.items) {
				v.selected = n - 1
				return v, v.choose(v.selected)
			}
		}
	}

	return v, nil
}

func (v *View) choose(i int) tea.Cmd {
	item := v.items[i]
	if item.Quit {
		return tea.Quit
	}
	return changeView(item.View)
}

func changeView(view messages.ViewType) tea.Cmd {
	return func() tea.Msg { return messages.ViewChanged{View: view} }
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Sercha Agents"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("Questions answered from your documents, arXiv and the web"))
	b.WriteString("\n\n")

	for i, item := range v.items {
		label := fmt.Sprintf("%d. %s", i+1, item.Label)
		if i == v.selected {
			b.WriteString("> " + v.styles.Subtitle.Render(label) + "\n")
			continue
		}
		b.WriteString("  " + v.styles.Normal.Render(label) + "\n")
	}

	b.WriteString("\n")
	if desc := v.items[v.selected].Description; desc != "" {
		b.WriteString(v.styles.Muted.Render(desc))
		b.WriteString("\n")
	}
	if v.chunks >= 0 {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%d chunks indexed", v.chunks)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [1-5] Jump  [Enter] Select  [?] Help  [q] Quit"))
	return b.String()
}

// SetIndexSize sets the chunk count shown under the menu. Negative hides it.
func (v *View) SetIndexSize(chunks int) {
	v.chunks = chunks
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Items returns the menu options.
func (v *View) Items() []Item {
	return v.items
}

// Selected returns the highlighted index.
func (v *View) Selected() int {
	return v.selected
}
