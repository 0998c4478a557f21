package monitor

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/wkview/internal/cli/styles"
	"github.com/bnema/wkview/pkg/webview"
)

var at = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func update(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func TestModel_CountsActivity(t *testing.T) {
	m := update(t, New(styles.NewTheme(), "https://example.com"),
		EventMsg{At: at, Event: webview.NavigationEventOf(webview.NavigationStart)},
		EventMsg{At: at, Event: webview.NavigationEventOf(webview.NavigationCommit)},
		EventMsg{At: at, Event: webview.NavigationEventOf(webview.NavigationFinish)},
		EventMsg{At: at, Event: webview.MessageEvent("ping")},
		ReloadMsg{At: at, Paths: []string{"index.html"}},
		TitleMsg("Example"),
	)

	assert.Equal(t, 1, m.navigations)
	assert.Equal(t, 1, m.messages)
	assert.Equal(t, 1, m.reloads)
	assert.Len(t, m.entries, 5)

	view := m.View()
	assert.Contains(t, view, "https://example.com")
	assert.Contains(t, view, "Example")
	assert.Contains(t, view, "ping")
	assert.Contains(t, view, "finish")
	assert.Contains(t, view, "index.html")
}

func TestModel_TrimsLog(t *testing.T) {
	m := New(styles.NewTheme(), "x")
	m.maxEntries = 3
	for i := 0; i < 5; i++ {
		m = update(t, m, EventMsg{At: at, Event: webview.MessageEvent(fmt.Sprint(i))})
	}

	require.Len(t, m.entries, 3)
	assert.Equal(t, "2", m.entries[0].text)
	assert.Equal(t, "4", m.entries[2].text)
	assert.Equal(t, 5, m.messages)
}

func TestModel_Keys(t *testing.T) {
	m := update(t, New(styles.NewTheme(), "x"), EventMsg{At: at, Event: webview.MessageEvent("a")})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	assert.Empty(t, m.entries)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_QuitKeys(t *testing.T) {
	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := New(styles.NewTheme(), "x").Update(k)
		require.NotNil(t, cmd, k.String())
		assert.Equal(t, tea.Quit(), cmd(), k.String())
	}
}

func TestModel_HelpFooter(t *testing.T) {
	m := New(styles.NewTheme(), "x")

	view := m.View()
	assert.Contains(t, view, "quit")
	assert.Contains(t, view, "clear")
	assert.NotContains(t, view, "scroll down")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.True(t, m.help.ShowAll)
	assert.Contains(t, m.View(), "scroll down")
}

func fill(t *testing.T, m Model, n int) Model {
	t.Helper()
	for i := 0; i < n; i++ {
		m = update(t, m, EventMsg{At: at, Event: webview.MessageEvent(fmt.Sprintf("entry-%02d", i))})
	}
	return m
}

func TestModel_LogFollowsNewest(t *testing.T) {
	m := update(t, New(styles.NewTheme(), "x"), tea.WindowSizeMsg{Width: 100, Height: 14})
	m = fill(t, m, 20)

	assert.Equal(t, 3, m.log.Height)
	view := m.View()
	assert.Contains(t, view, "entry-19")
	assert.Contains(t, view, "entry-17")
	assert.NotContains(t, view, "entry-16")
	assert.Contains(t, view, "activity")
}

func TestModel_ScrollBackStopsFollowing(t *testing.T) {
	m := update(t, New(styles.NewTheme(), "x"), tea.WindowSizeMsg{Width: 100, Height: 14})
	m = fill(t, m, 20)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	view := m.View()
	assert.Contains(t, view, "entry-16")
	assert.NotContains(t, view, "entry-19")

	m = update(t, m, EventMsg{At: at, Event: webview.MessageEvent("entry-20")})
	assert.NotContains(t, m.View(), "entry-20")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	m = fill(t, m, 5)
	assert.Contains(t, m.View(), "entry-04")
}

type sink struct {
	msgs []tea.Msg
}

func (s *sink) Send(msg tea.Msg) { s.msgs = append(s.msgs, msg) }

func TestHandler_WrapsEvents(t *testing.T) {
	s := &sink{}
	Handler(s).HandleEvent(webview.MessageEvent("hello"))

	require.Len(t, s.msgs, 1)
	msg, ok := s.msgs[0].(EventMsg)
	require.True(t, ok)
	assert.Equal(t, webview.MessageEvent("hello"), msg.Event)
	assert.False(t, msg.At.IsZero())
}
