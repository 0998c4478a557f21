// Package monitor is the terminal view of a running web view: it lists
// navigation, script message and reload activity as it happens.
package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/wkview/internal/cli/styles"
	"github.com/bnema/wkview/pkg/webview"
)

// DefaultMaxEntries bounds the activity log.
const DefaultMaxEntries = 200

// EventMsg carries a web view event into the program.
type EventMsg struct {
	At    time.Time
	Event webview.Event
}

// ReloadMsg reports that served files changed and the page was reloaded.
type ReloadMsg struct {
	At    time.Time
	Paths []string
}

// TitleMsg reports the page title after a finished navigation.
type TitleMsg string

type entry struct {
	at    time.Time
	badge string
	text  string
	muted bool
}

// Model implements tea.Model.
type Model struct {
	theme      *styles.Theme
	target     string
	title      string
	entries    []entry
	maxEntries int

	navigations int
	messages    int
	reloads     int

	log  viewport.Model
	help help.Model
	keys keyMap

	width  int
	height int
}

// New creates a monitor for target, the URL or directory being shown.
func New(theme *styles.Theme, target string) Model {
	m := Model{
		theme:      theme,
		target:     target,
		maxEntries: DefaultMaxEntries,
		help:       styles.NewStyledHelp(theme),
		keys:       defaultKeyMap(),
	}
	m.resize(80, 24)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Clear):
			m.entries = nil
			m.refresh(true)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize(m.width, m.height)
		default:
			var cmd tea.Cmd
			m.log, cmd = m.log.Update(msg)
			return m, cmd
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.log, cmd = m.log.Update(msg)
		return m, cmd

	case EventMsg:
		follow := m.log.AtBottom()
		m.record(msg.Event, msg.At)
		m.refresh(follow)

	case ReloadMsg:
		follow := m.log.AtBottom()
		m.reloads++
		m.push(entry{at: msg.At, badge: "reload", text: strings.Join(msg.Paths, ", ")})
		m.refresh(follow)

	case TitleMsg:
		m.title = string(msg)
	}

	return m, nil
}

// resize fits the log to the terminal. The log gets whatever rows the rest
// of the layout leaves, never fewer than 3.
func (m *Model) resize(width, height int) {
	follow := m.log.AtBottom()
	m.width = width
	m.height = height
	m.help.Width = width

	rows := height - 10 - lipgloss.Height(m.help.View(m.keys))
	if rows < 3 {
		rows = 3
	}
	if m.log.Width == 0 {
		m.log = viewport.New(max(width-6, 18), rows)
	} else {
		m.log.Width = max(width-6, 18)
		m.log.Height = rows
	}
	m.refresh(follow)
}

// refresh re-renders the entries into the log. With follow set the log
// sticks to the newest entry.
func (m *Model) refresh(follow bool) {
	lines := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		lines = append(lines, m.renderEntry(e))
	}
	if len(lines) == 0 {
		lines = append(lines, m.theme.Subtle.Render("waiting for activity"))
	}
	m.log.SetContent(strings.Join(lines, "\n"))
	if follow {
		m.log.GotoBottom()
	}
}

func (m *Model) record(e webview.Event, at time.Time) {
	switch e.Kind {
	case webview.EventNavigation:
		if e.Navigation.Kind == webview.NavigationStart {
			m.navigations++
		}
		m.push(entry{at: at, badge: "nav", text: e.Navigation.String(), muted: e.Navigation.Kind != webview.NavigationFinish})
	case webview.EventMessage:
		m.messages++
		m.push(entry{at: at, badge: "msg", text: e.Message})
	default:
		m.push(entry{at: at, badge: e.Kind.String(), muted: true})
	}
}

func (m *Model) push(e entry) {
	m.entries = append(m.entries, e)
	if over := len(m.entries) - m.maxEntries; over > 0 {
		m.entries = append(m.entries[:0:0], m.entries[over:]...)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	t := m.theme
	var b strings.Builder

	b.WriteString(t.Badge.Render("wkview"))
	b.WriteString(" ")
	b.WriteString(t.Title.Render(m.target))
	if m.title != "" {
		b.WriteString(" ")
		b.WriteString(t.Subtle.Render("· " + m.title))
	}
	b.WriteString("\n\n")

	b.WriteString(strings.Join([]string{
		t.KeyValue("navigations", fmt.Sprint(m.navigations)),
		t.KeyValue("messages", fmt.Sprint(m.messages)),
		t.KeyValue("reloads", fmt.Sprint(m.reloads)),
	}, "   "))
	b.WriteString("\n\n")

	box := t.Box.Width(max(m.width-4, 20)).Render(lipgloss.JoinVertical(lipgloss.Left,
		t.BoxHeader.Render("activity"),
		m.log.View(),
	))
	b.WriteString(box)
	b.WriteString("\n")

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderEntry(e entry) string {
	t := m.theme
	ts := t.Subtle.Render(e.at.Format("15:04:05.000"))
	badge := t.Badge.Render(e.badge)
	text := t.Normal.Render(e.text)
	if e.muted {
		badge = t.BadgeMuted.Render(e.badge)
		text = t.Subtle.Render(e.text)
	}
	return ts + " " + badge + " " + text
}
