// Package search provides the document search view for the TUI.
package search

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driving"
)

// View searches the retrieval index and lists the nearest chunks.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.ResultList
	statusbar *status.Bar

	retrieval driving.RetrievalService
	topK      int
	ctx       context.Context

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing, false = navigating results

	// preview holds the chunk expanded with enter.
	preview *domain.ResultItem
}

// NewView creates a new search view returning up to topK chunks.
func NewView(s *styles.Styles, km *keymap.KeyMap, retrieval driving.RetrievalService, topK int) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	l := list.NewResultList(s)
	l.ShowDistance(true)

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQueryInput(s, "Search", "Search ingested documents..."),
		list:       l,
		statusbar:  status.NewBar(s, km),
		retrieval:  retrieval,
		topK:       topK,
		ctx:        context.Background(),
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.preview != nil {
		if msg.Type == tea.KeyEsc || msg.Type == tea.KeyEnter {
			v.preview = nil
		}
		return v, nil
	}

	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			query := v.input.Value()
			if query == "" {
				return v, nil
			}
			v.statusbar.SetState(status.StateSearch)
			v.focusInput = false
			v.input.Blur()
			return v, v.performSearch(query)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case msg.Type == tea.KeyEnter:
		v.preview = v.list.SelectedItem()
	case keymap.Matches(msg.String(), v.keymap.NewQuery):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	default:
		v.list, _ = v.list.Update(msg)
	}
	return v, nil
}

func (v *View) performSearch(query string) tea.Cmd {
	svc, ctx, k := v.retrieval, v.ctx, v.topK
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoRetrievalService}
		}
		hits, err := svc.Search(ctx, query, k)
		return messages.SearchCompleted{Query: query, Hits: hits, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		v.focusInput = true
		v.input.Focus()
		return
	}

	items := make([]domain.ResultItem, 0, len(msg.Hits))
	for _, h := range msg.Hits {
		items = append(items, h.Item())
	}

	v.err = nil
	v.list.SetItems(items)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(items))
	v.statusbar.SetMessage("")
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	header := v.styles.Title.Render("Search documents")
	if v.retrieval != nil {
		header += v.styles.Muted.Render(fmt.Sprintf("  (%d chunks indexed)", v.retrieval.Size()))
	}
	sections = append(sections, header, "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.preview != nil {
		sections = append(sections, v.renderPreview())
	} else {
		sections = append(sections, v.list.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderPreview() string {
	title := v.styles.Subtitle.Render(fmt.Sprintf("%s  (distance %.4f)", v.preview.Title, v.preview.Distance))
	body := lipgloss.NewStyle().Width(max(v.width-6, 20)).Render(v.preview.Content)
	return v.styles.Border.Padding(0, 1).Render(title + "\n\n" + body)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10) // header, input, status
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.input.Value()
}

// Items returns the current results.
func (v *View) Items() []domain.ResultItem {
	return v.list.Items()
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Preview returns the expanded result, or nil.
func (v *View) Preview() *domain.ResultItem {
	return v.preview
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset resets the view to initial input mode.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetItems(nil)
	v.preview = nil
	v.err = nil
	v.statusbar.Clear()
}
