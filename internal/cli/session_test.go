package cli

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/wkview/internal/cli/monitor"
	"github.com/bnema/wkview/internal/config"
	"github.com/bnema/wkview/internal/wk/wktest"
	"github.com/bnema/wkview/pkg/webview"
)

type fakeWindow struct {
	mu     sync.Mutex
	titles []string
}

func (w *fakeWindow) NativeView() uintptr { return 0xB0 }

func (w *fakeWindow) SetTitle(title string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.titles = append(w.titles, title)
}

type sink struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (s *sink) Send(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func TestNewBuilder_AppliesConfig(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.js")
	second := filepath.Join(dir, "b.js")
	require.NoError(t, os.WriteFile(first, []byte("window.a = 1"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("window.b = 2"), 0o644))

	cfg := config.DefaultConfig()
	cfg.WebView.Debug = true
	cfg.WebView.MessageHandler = "bridge"
	cfg.WebView.InitScripts = []string{first, second}

	b, err := newBuilder(cfg, nil)
	require.NoError(t, err)

	eng := wktest.New()
	w, err := b.WithEngine(eng).Build(context.Background(), webview.HandlerFunc(func(webview.Event) {}), &fakeWindow{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	view := eng.View(w.NativeView())
	assert.True(t, view.Config.Debug)
	assert.Equal(t, "bridge", view.Config.MessageHandler)
	assert.Equal(t, []string{"window.a = 1", "window.b = 2"}, view.Config.InitScripts)
}

func TestNewBuilder_Errors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.WebView.InitScripts = []string{filepath.Join(t.TempDir(), "missing.js")}
	_, err := newBuilder(cfg, nil)
	assert.ErrorContains(t, err, "read init script")

	cfg = config.DefaultConfig()
	cfg.WebView.MissPolicy = "explode"
	_, err = newBuilder(cfg, nil)
	assert.Error(t, err)
}

func TestWindowTitle(t *testing.T) {
	assert.Equal(t, "wkview - site", windowTitle("wkview", "site"))
	assert.Equal(t, "wkview", windowTitle("wkview", ""))
	assert.Equal(t, "site", windowTitle("", "site"))
}

func newSession(t *testing.T, follow bool) (*wktest.Engine, *webview.WebView, *fakeWindow, *sink) {
	t.Helper()

	win := &fakeWindow{}
	s := &sink{}
	h := &sessionHandler{
		window:  win,
		follow:  follow,
		forward: monitor.Handler(s),
		logger:  zerolog.Nop(),
	}

	eng := wktest.New()
	w, err := webview.NewBuilder().WithEngine(eng).Build(context.Background(), h, win)
	require.NoError(t, err)
	h.attach(w)
	t.Cleanup(func() { _ = w.Close() })
	return eng, w, win, s
}

func TestSessionHandler_FollowsPageTitle(t *testing.T) {
	eng, w, win, s := newSession(t, true)

	eng.SetTitle(w.NativeView(), "Example Domain")
	eng.Navigate(w.NativeView())

	assert.Equal(t, []string{"Example Domain"}, win.titles)
	assert.Len(t, s.msgs, 3)
}

func TestSessionHandler_NoFollowStillNotifies(t *testing.T) {
	win := &fakeWindow{}
	var notified []string
	h := &sessionHandler{
		window: win,
		notify: func(title string) { notified = append(notified, title) },
		logger: zerolog.Nop(),
	}

	eng := wktest.New()
	w, err := webview.NewBuilder().WithEngine(eng).Build(context.Background(), h, win)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	h.attach(w)

	eng.SetTitle(w.NativeView(), "Docs")
	eng.Navigate(w.NativeView())

	assert.Empty(t, win.titles)
	assert.Equal(t, []string{"Docs"}, notified)
}

func TestSessionHandler_EmptyTitleIgnored(t *testing.T) {
	eng, w, win, s := newSession(t, true)

	eng.Navigate(w.NativeView())
	eng.PostMessage(w.NativeView(), "ready")

	assert.Empty(t, win.titles)
	require.Len(t, s.msgs, 4)
	msg, ok := s.msgs[3].(monitor.EventMsg)
	require.True(t, ok)
	assert.Equal(t, webview.MessageEvent("ready"), msg.Event)
}

func TestSessionHandler_BeforeAttach(t *testing.T) {
	win := &fakeWindow{}
	h := &sessionHandler{window: win, follow: true, logger: zerolog.Nop()}

	h.HandleEvent(webview.NavigationEventOf(webview.NavigationFinish))
	assert.Empty(t, win.titles)
}

func TestLoggingConfig(t *testing.T) {
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)
	t.Setenv("ENV", "")

	c := config.DefaultConfig().Logging
	c.Level = "debug"
	c.Format = "json"
	out, err := loggingConfig(c)
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, out.Level)
	assert.Equal(t, "json", out.Format)
	assert.Empty(t, out.File)

	c.File = "auto"
	out, err = loggingConfig(c)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(state, "wkview", "logs", logFileName), out.File)

	abs := filepath.Join(t.TempDir(), "x.log")
	c.File = abs
	out, err = loggingConfig(c)
	require.NoError(t, err)
	assert.Equal(t, abs, out.File)
}

func TestNewApp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window]\ntitle = \"demo\"\n"), 0o644))

	app, err := NewApp(context.Background(), Overrides{ConfigFile: path, LogLevel: "error"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	assert.Equal(t, "demo", app.Config.Window.Title)
	assert.Equal(t, "error", app.Config.Logging.Level)
	assert.Equal(t, path, app.ConfigFile)
	assert.NotNil(t, app.Theme)
	assert.NotNil(t, app.Context())
}

func TestNewApp_MissingExplicitFile(t *testing.T) {
	_, err := NewApp(context.Background(), Overrides{ConfigFile: filepath.Join(t.TempDir(), "nope.toml")})
	assert.Error(t, err)
}
