// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driving"
)

// ErrNoAskService indicates that no ask service was provided.
var ErrNoAskService = errors.New("ask service is required")

// reservedLines covers the header, input, spacers and status bar.
const reservedLines = 9

// View asks questions and shows the merged answer in a scrollable pane.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	answer    viewport.Model
	statusbar *status.Bar

	askService driving.AskService
	ctx        context.Context

	question   string
	result     *domain.FinalAnswer
	err        error
	width      int
	height     int
	ready      bool
	focusInput bool
}

// NewView creates a new ask view.
func NewView(s *styles.Styles, km *keymap.KeyMap, askService driving.AskService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQueryInput(s, "Ask", "What would you like to know?"),
		answer:     viewport.New(80, 10),
		statusbar:  status.NewBar(s, km),
		askService: askService,
		ctx:        context.Background(),
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context questions are asked under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AskCompleted:
		v.handleAskCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			question := v.input.Value()
			if question == "" || v.statusbar.State() == status.StateAsking {
				return v, nil
			}
			v.question = question
			v.err = nil
			v.statusbar.SetState(status.StateAsking)
			v.statusbar.SetMessage("")
			v.focusInput = false
			v.input.Blur()
			return v, v.performAsk(question)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	if keymap.Matches(msg.String(), v.keymap.NewQuery) && v.statusbar.State() != status.StateAsking {
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	}

	// Remaining keys scroll the answer.
	var cmd tea.Cmd
	v.answer, cmd = v.answer.Update(msg)
	return v, cmd
}

func (v *View) performAsk(question string) tea.Cmd {
	svc, ctx := v.askService, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoAskService}
		}
		answer, err := svc.Ask(ctx, domain.Question{Text: question})
		return messages.AskCompleted{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleAskCompleted(msg messages.AskCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	if msg.Answer == nil {
		v.setError(errors.New("empty answer"))
		return
	}

	v.err = nil
	v.result = msg.Answer
	v.answer.SetContent(v.renderAnswer())
	v.answer.GotoTop()

	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetMessage(fmt.Sprintf("%d agent(s), %d source(s)", len(msg.Answer.Decision.Agents), len(msg.Answer.Items)))
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
	v.focusInput = true
	v.input.Focus()
}

func (v *View) renderAnswer() string {
	if v.result == nil {
		return v.styles.Muted.Render("Ask a question to get started.")
	}
	wrap := lipgloss.NewStyle().Width(max(v.answer.Width-2, 20))

	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("Q: " + v.question))
	b.WriteString("\n\n")
	b.WriteString(wrap.Render(v.result.Answer))
	b.WriteString("\n\n")

	b.WriteString(v.styles.Subtitle.Render("Agents"))
	b.WriteString("\n")
	for _, id := range v.result.Decision.Agents {
		badge := v.styles.Agent(id).Render(id.DisplayName())
		b.WriteString(fmt.Sprintf("  %s  %s\n", badge, v.styles.Muted.Render(v.result.Decision.Rationale[id])))
	}
	for _, r := range v.result.Results {
		if r.Failed() {
			b.WriteString(v.styles.Error.Render(fmt.Sprintf("  ! %s failed: %v", r.ProviderID.DisplayName(), r.Err)))
			b.WriteString("\n")
		}
	}

	if len(v.result.Items) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render("Sources"))
		b.WriteString("\n")
		for i, item := range v.result.Items {
			ref := item.SourceRef
			if ref == "" {
				ref = item.ID
			}
			b.WriteString(fmt.Sprintf("  [%d] %s\n", i+1, v.styles.Normal.Render(item.Title)))
			b.WriteString(v.styles.Muted.Render("      " + ref))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("Ask the agents"),
		"",
		v.input.View(),
		"",
	}
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}
	if v.result != nil {
		sections = append(sections, v.styles.Answer.Render(v.answer.View()))
	} else {
		sections = append(sections, v.styles.Muted.Render("Questions are routed to documents, arXiv or the web."))
	}
	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)

	// Frame of the answer border.
	fw, fh := v.styles.Answer.GetFrameSize()
	v.answer.Width = max(width-fw, 20)
	v.answer.Height = max(height-reservedLines-fh, 3)
	if v.result != nil {
		v.answer.SetContent(v.renderAnswer())
	}
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Question returns the last submitted question.
func (v *View) Question() string {
	return v.question
}

// Answer returns the last answer, or nil.
func (v *View) Answer() *domain.FinalAnswer {
	return v.result
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Asking reports whether a question is in flight.
func (v *View) Asking() bool {
	return v.statusbar.State() == status.StateAsking
}

// Reset returns the view to an empty input.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.question = ""
	v.result = nil
	v.err = nil
	v.answer.SetContent("")
	v.statusbar.Clear()
}
