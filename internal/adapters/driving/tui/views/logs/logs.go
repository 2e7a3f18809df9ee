// Package logs provides the interaction log view for the TUI.
package logs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driving"
)

// DefaultLimit is how many entries the view loads.
const DefaultLimit = 50

// ErrNoLogService indicates that no log service was provided.
var ErrNoLogService = errors.New("log service is not available")

// View lists recent interactions, newest first.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	pane    viewport.Model
	service driving.LogService
	limit   int
	ctx     context.Context

	entries []domain.LogEntry
	loading bool
	err     error
	width   int
	height  int
	ready   bool
}

// NewView creates a new logs view. service may be nil.
func NewView(s *styles.Styles, km *keymap.KeyMap, service driving.LogService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:  s,
		keymap:  km,
		pane:    viewport.New(80, 16),
		service: service,
		limit:   DefaultLimit,
		ctx:     context.Background(),
		width:   80,
		height:  24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the log.
func (v *View) Init() tea.Cmd {
	v.loading = true
	svc, ctx, n := v.service, v.ctx, v.limit
	return func() tea.Msg {
		if svc == nil {
			return messages.LogsLoaded{Err: ErrNoLogService}
		}
		entries, err := svc.Recent(ctx, n)
		return messages.LogsLoaded{Entries: entries, Err: err}
	}
}

// Update handles messages for the logs view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.LogsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.entries = msg.Entries
		}
		v.pane.SetContent(v.renderEntries())
		v.pane.GotoTop()
		return v, nil

	case tea.KeyMsg:
		switch {
		case msg.Type == tea.KeyEsc:
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case keymap.Matches(msg.String(), v.keymap.Refresh):
			return v, v.Init()
		}
	}

	var cmd tea.Cmd
	v.pane, cmd = v.pane.Update(msg)
	return v, cmd
}

func (v *View) renderEntries() string {
	if len(v.entries) == 0 {
		return v.styles.Muted.Render("No interactions logged yet.")
	}

	wrap := lipgloss.NewStyle().Width(max(v.pane.Width-4, 20))
	var b strings.Builder
	for i := len(v.entries) - 1; i >= 0; i-- {
		e := v.entries[i]
		b.WriteString(v.styles.Subtitle.Render(e.Timestamp.Local().Format("2006-01-02 15:04:05")))
		b.WriteString("  ")
		b.WriteString(v.styles.Normal.Render(e.Input))
		b.WriteString("\n")

		agents := make([]string, 0, len(e.AgentsCalled))
		for _, a := range e.AgentsCalled {
			id := domain.AgentID(a)
			agents = append(agents, v.styles.Agent(id).Render(id.DisplayName()))
		}
		b.WriteString("  " + strings.Join(agents, ", "))
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  (%d documents)", len(e.DocumentsRetrieved))))
		b.WriteString("\n")
		b.WriteString(wrap.Render(v.styles.Muted.Render("  " + strings.Join(strings.Fields(e.FinalAnswer), " "))))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// View renders the logs view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	header := v.styles.Title.Render("Interaction log")
	var body string
	switch {
	case v.loading:
		body = v.styles.Muted.Render("Loading...")
	case v.err != nil:
		body = v.styles.Error.Render("Error: " + v.err.Error())
	default:
		body = v.pane.View()
	}
	footer := v.styles.Help.Render(fmt.Sprintf("%d entries  [↑/↓] scroll  [r] refresh  [esc] back", len(v.entries)))

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", footer)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.pane.Width = max(width, 20)
	v.pane.Height = max(height-5, 3)
	v.pane.SetContent(v.renderEntries())
}

// Entries returns the loaded entries.
func (v *View) Entries() []domain.LogEntry {
	return v.entries
}

// Loading reports whether a load is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
