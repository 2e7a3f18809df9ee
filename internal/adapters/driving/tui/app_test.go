package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-agents/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-agents/internal/core/domain"
)

func newTestApp(t *testing.T, ports *Ports) *App {
	t.Helper()
	if ports == nil {
		ports = NewPorts(&MockAskService{}, &MockRetrievalService{size: 3}, &MockLogService{})
	}
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 40)
	return app
}

func update(app *App, msg tea.Msg) (*App, tea.Cmd) {
	model, cmd := app.Update(msg)
	return model.(*App), cmd
}

func typeText(app *App, text string) *App {
	for _, r := range text {
		app, _ = update(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return app
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(NewPorts(&MockAskService{}, &MockRetrievalService{}, nil))

	require.NoError(t, err)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())
	assert.NotNil(t, app.Init())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{Ask: &MockAskService{}})

	assert.ErrorIs(t, err, ErrMissingRetrievalService)
	assert.Nil(t, app)
}

func TestApp_WindowSize(t *testing.T) {
	app, err := NewApp(NewPorts(&MockAskService{}, &MockRetrievalService{}, nil))
	require.NoError(t, err)

	app, _ = update(app, tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.True(t, app.Ready())
	assert.Contains(t, app.View(), "Sercha Agents")
}

func TestApp_CtrlCQuits(t *testing.T) {
	app := newTestApp(t, nil)

	_, cmd := update(app, tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_QuitMessage(t *testing.T) {
	app := newTestApp(t, nil)

	_, cmd := update(app, messages.Quit{})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_MenuNavigatesToAsk(t *testing.T) {
	app := newTestApp(t, nil)

	app, cmd := update(app, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	app, _ = update(app, cmd())

	assert.Equal(t, messages.ViewAsk, app.CurrentView())
	assert.Contains(t, app.View(), "Ask the agents")
}

func TestApp_AskRoundTrip(t *testing.T) {
	var got domain.Question
	askSvc := &MockAskService{AskFunc: func(_ context.Context, q domain.Question) (*domain.FinalAnswer, error) {
		got = q
		d := domain.NewDecision()
		d.Add(domain.AgentPapers, "matched keyword 'arxiv'")
		return &domain.FinalAnswer{Answer: "Three papers found.", Decision: d}, nil
	}}
	app := newTestApp(t, NewPorts(askSvc, &MockRetrievalService{}, nil))
	app, _ = update(app, messages.ViewChanged{View: messages.ViewAsk})

	app = typeText(app, "arxiv transformers")
	app, cmd := update(app, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	app, _ = update(app, cmd())

	assert.Equal(t, "arxiv transformers", got.Text)
	assert.NoError(t, app.Err())
	view := app.View()
	assert.Contains(t, view, "Three papers found.")
	assert.Contains(t, view, domain.AgentPapers.DisplayName())
}

func TestApp_AskErrorRecorded(t *testing.T) {
	app := newTestApp(t, nil)
	app, _ = update(app, messages.ViewChanged{View: messages.ViewAsk})

	app, _ = update(app, messages.AskCompleted{Question: "q", Err: errors.New("no agents")})

	assert.EqualError(t, app.Err(), "no agents")
}

func TestApp_SearchRoundTrip(t *testing.T) {
	retrieval := &MockRetrievalService{
		size: 1,
		SearchFunc: func(context.Context, string, int) ([]domain.SearchHit, error) {
			return []domain.SearchHit{{Chunk: domain.Chunk{ID: "c", Text: "needle", SourceTitle: "hay.txt"}}}, nil
		},
	}
	app := newTestApp(t, NewPorts(&MockAskService{}, retrieval, nil))
	app, _ = update(app, messages.ViewChanged{View: messages.ViewSearch})

	app = typeText(app, "needle")
	app, cmd := update(app, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	app, _ = update(app, cmd())

	assert.Equal(t, messages.ViewSearch, app.CurrentView())
	assert.Contains(t, app.View(), "hay.txt")
}

func TestApp_LogsLoadOnEnter(t *testing.T) {
	logSvc := &MockLogService{Entries: []domain.LogEntry{{Input: "earlier question", FinalAnswer: "a"}}}
	app := newTestApp(t, NewPorts(&MockAskService{}, &MockRetrievalService{}, logSvc))

	app, cmd := update(app, messages.ViewChanged{View: messages.ViewLogs})
	require.NotNil(t, cmd)
	app, _ = update(app, cmd())

	assert.Equal(t, messages.ViewLogs, app.CurrentView())
	assert.Contains(t, app.View(), "earlier question")
}

func TestApp_MenuShowsIndexSize(t *testing.T) {
	app := newTestApp(t, nil)

	assert.Contains(t, app.View(), "3 chunks indexed")
}

func TestApp_HelpAndBack(t *testing.T) {
	app := newTestApp(t, nil)

	app, _ = update(app, messages.ViewChanged{View: messages.ViewHelp})
	view := app.View()
	assert.Contains(t, view, "Help")
	assert.Contains(t, view, "refresh")
	assert.Contains(t, view, "page down")

	app, _ = update(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.Equal(t, messages.ViewHelp, app.CurrentView())

	app, _ = update(app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_EscFromViewReturnsToMenu(t *testing.T) {
	app := newTestApp(t, nil)
	app, _ = update(app, messages.ViewChanged{View: messages.ViewSearch})

	app, cmd := update(app, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	app, _ = update(app, cmd())

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newTestApp(t, nil)

	app, _ = update(app, messages.ErrorOccurred{Err: errors.New("oops")})

	assert.EqualError(t, app.Err(), "oops")
}

func TestApp_WithContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "value")
	var got context.Context
	askSvc := &MockAskService{AskFunc: func(c context.Context, _ domain.Question) (*domain.FinalAnswer, error) {
		got = c
		return &domain.FinalAnswer{}, nil
	}}
	app := newTestApp(t, NewPorts(askSvc, &MockRetrievalService{}, nil)).WithContext(ctx)
	app, _ = update(app, messages.ViewChanged{View: messages.ViewAsk})

	app = typeText(app, "q")
	_, cmd := update(app, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()

	require.NotNil(t, got)
	assert.Equal(t, "value", got.Value(key{}))
}
