package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/wkview/internal/cli/monitor"
	"github.com/bnema/wkview/internal/config"
	"github.com/bnema/wkview/internal/host"
	"github.com/bnema/wkview/internal/logging"
	"github.com/bnema/wkview/internal/reload"
	"github.com/bnema/wkview/pkg/webview"
)

// Session describes one window showing one page.
type Session struct {
	Target webview.NavigationTarget
	// Label names the target in the window title and the monitor.
	Label    string
	Requests webview.RequestHandler
	// WatchDir, when set, reloads the page whenever a file under it changes.
	WatchDir string
	Monitor  bool
}

// hostWindow is the part of *host.App a session drives.
type hostWindow interface {
	NativeView() uintptr
	SetTitle(title string)
	Dispatch(fn func())
	Run()
	Quit()
}

// RunSession opens the window and blocks on the main thread until the
// application terminates. The process usually exits from inside Run, so
// everything is torn down by the terminate hook.
func RunSession(app *App, s Session) error {
	ctx, cancel := context.WithCancel(app.Context())
	defer cancel()
	logger := logging.FromContext(ctx).With().Str("component", "session").Logger()

	builder, err := newBuilder(app.Config, s.Requests)
	if err != nil {
		return err
	}

	var teardown func()
	h, err := host.New(ctx, host.Options{
		Title:  windowTitle(app.Config.Window.Title, s.Label),
		Width:  app.Config.Window.Width,
		Height: app.Config.Window.Height,
		OnTerminate: func() {
			if teardown != nil {
				teardown()
			}
		},
	})
	if err != nil {
		return err
	}

	var program *tea.Program
	if s.Monitor {
		program = tea.NewProgram(monitor.New(app.Theme, s.Label), tea.WithContext(ctx))
	}

	events := &sessionHandler{
		window: h,
		follow: app.Config.Window.FollowPageTitle,
		logger: logger,
	}
	if program != nil {
		events.forward = monitor.Handler(program)
		events.notify = func(title string) { program.Send(monitor.TitleMsg(title)) }
	}

	w, err := builder.Build(ctx, events, h)
	if err != nil {
		return err
	}
	events.attach(w)
	w.Navigate(s.Target)

	g, gctx := errgroup.WithContext(ctx)
	if program != nil {
		g.Go(func() error {
			defer h.Quit()
			if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("monitor: %w", err)
			}
			return nil
		})
	}
	if s.WatchDir != "" {
		watcher, err := reload.New(gctx, s.WatchDir, time.Duration(app.Config.Serve.DebounceMS)*time.Millisecond)
		if err != nil {
			_ = w.Close()
			return fmt.Errorf("watch %s: %w", s.WatchDir, err)
		}
		g.Go(func() error {
			return watcher.Run(gctx, func(paths []string) {
				if program != nil {
					program.Send(monitor.ReloadMsg{At: time.Now(), Paths: paths})
				}
				h.Dispatch(func() { w.Evaluate("location.reload()") })
			})
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		h.Quit()
		return nil
	})

	var once sync.Once
	var runErr error
	teardown = func() {
		once.Do(func() {
			cancel()
			if program != nil {
				program.Quit()
			}
			if err := w.Close(); err != nil {
				logger.Warn().Err(err).Msg("closing web view failed")
			}
			runErr = g.Wait()
			if runErr != nil {
				logger.Error().Err(runErr).Msg("session ended with error")
			}
			logger.Debug().Msg("session closed")
			_ = app.Close()
		})
	}

	logger.Info().Str("target", s.Label).Msg("opening window")
	h.Run()
	teardown()
	return runErr
}

// newBuilder applies the webview section of cfg. Init script paths are read
// here so a missing file fails before any window opens.
func newBuilder(cfg *config.Config, requests webview.RequestHandler) (*webview.Builder, error) {
	policy, err := webview.ParseMissPolicy(string(cfg.WebView.MissPolicy))
	if err != nil {
		return nil, err
	}

	b := webview.NewBuilder().
		WithRequestHandler(requests).
		WithDebug(cfg.WebView.Debug).
		WithMessageHandlerName(cfg.WebView.MessageHandler).
		WithMissPolicy(policy)

	for _, path := range cfg.WebView.InitScripts {
		script, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read init script: %w", err)
		}
		b.WithInitScript(string(script))
	}
	return b, nil
}

func windowTitle(base, label string) string {
	if label == "" {
		return base
	}
	if base == "" {
		return label
	}
	return base + " - " + label
}

// titled is the part of *webview.WebView the handler reads after a
// navigation finished.
type titled interface {
	Title() (string, bool)
}

// sessionHandler logs every event, keeps the window title in sync with the
// page and forwards events to the monitor. It runs on the main thread.
type sessionHandler struct {
	window  interface{ SetTitle(string) }
	follow  bool
	forward webview.EventHandler
	notify  func(title string)
	logger  zerolog.Logger

	mu   sync.Mutex
	view titled
}

func (h *sessionHandler) attach(v titled) {
	h.mu.Lock()
	h.view = v
	h.mu.Unlock()
}

// HandleEvent implements webview.EventHandler.
func (h *sessionHandler) HandleEvent(e webview.Event) {
	switch e.Kind {
	case webview.EventMessage:
		h.logger.Info().Str("body", e.Message).Msg("script message")
	default:
		h.logger.Debug().Stringer("event", e).Msg("web view event")
	}

	if e.Kind == webview.EventNavigation && e.Navigation.Kind == webview.NavigationFinish {
		h.refreshTitle()
	}
	if h.forward != nil {
		h.forward.HandleEvent(e)
	}
}

func (h *sessionHandler) refreshTitle() {
	h.mu.Lock()
	v := h.view
	h.mu.Unlock()
	if v == nil {
		return
	}

	title, ok := v.Title()
	if !ok || title == "" {
		return
	}
	if h.follow {
		h.window.SetTitle(title)
	}
	if h.notify != nil {
		h.notify(title)
	}
}

var _ hostWindow = (*host.App)(nil)
