package webview

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/wkview/internal/logging"
	"github.com/bnema/wkview/internal/wk"
)

var (
	// ErrNilHandler is returned by Build when no event handler is given.
	ErrNilHandler = errors.New("event handler is nil")
	// ErrNoWindow is returned by Build when the window has no native view.
	ErrNoWindow = errors.New("window has no native view")
)

// Window is a host window that can contain a web view.
type Window interface {
	// NativeView returns the window's content NSView.
	NativeView() uintptr
}

// Builder collects WebView options. The zero value is not usable; start from
// NewBuilder.
type Builder struct {
	requestHandler RequestHandler
	initScripts    []string
	debug          bool
	messageHandler string
	missPolicy     MissPolicy
	engine         wk.Engine
}

// NewBuilder returns a builder that answers no scheme requests.
func NewBuilder() *Builder {
	return &Builder{
		requestHandler: NullRequestHandler{},
		messageHandler: wk.DefaultMessageHandler,
		missPolicy:     MissIgnore,
	}
}

// WithRequestHandler sets the handler for wkview:// requests.
func (b *Builder) WithRequestHandler(h RequestHandler) *Builder {
	if h == nil {
		h = NullRequestHandler{}
	}
	b.requestHandler = h
	return b
}

// WithInitScript adds a script injected at document start of every page.
// Scripts run in the order they were added.
func (b *Builder) WithInitScript(script string) *Builder {
	b.initScripts = append(b.initScripts, script)
	return b
}

// WithDebug enables the web inspector.
func (b *Builder) WithDebug(debug bool) *Builder {
	b.debug = debug
	return b
}

// WithMessageHandlerName sets the name pages post messages to.
func (b *Builder) WithMessageHandlerName(name string) *Builder {
	if name != "" {
		b.messageHandler = name
	}
	return b
}

// WithMissPolicy sets what happens to requests the handler does not answer.
func (b *Builder) WithMissPolicy(p MissPolicy) *Builder {
	b.missPolicy = p
	return b
}

// WithEngine replaces the platform engine.
func (b *Builder) WithEngine(e wk.Engine) *Builder {
	b.engine = e
	return b
}

// Build creates a web view filling window. Events are delivered to handler
// until the WebView is closed.
func (b *Builder) Build(ctx context.Context, handler EventHandler, window Window) (*WebView, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if handler == nil {
		return nil, ErrNilHandler
	}
	if window == nil {
		return nil, ErrNoWindow
	}
	host := window.NativeView()
	if host == 0 {
		return nil, fmt.Errorf("%w: native view is zero", ErrNoWindow)
	}

	engine := b.engine
	if engine == nil {
		e, err := wk.Default()
		if err != nil {
			return nil, fmt.Errorf("select engine: %w", err)
		}
		engine = e
	}

	br := bridgeFor(ctx, engine)
	delegate, err := br.newDelegate(handler, &requestState{handler: b.requestHandler, policy: b.missPolicy})
	if err != nil {
		return nil, fmt.Errorf("create delegate: %w", err)
	}

	view, err := engine.NewWebView(wk.ViewConfig{
		Host:           host,
		Delegate:       delegate,
		Scheme:         wk.Scheme,
		MessageHandler: b.messageHandler,
		InitScripts:    append([]string(nil), b.initScripts...),
		Debug:          b.debug,
	})
	if err != nil {
		engine.Release(delegate)
		return nil, fmt.Errorf("create web view: %w", err)
	}

	w := &WebView{
		id:             nextViewID.Add(1),
		engine:         engine,
		view:           view,
		delegate:       delegate,
		messageHandler: b.messageHandler,
	}
	w.logger = logging.FromContext(ctx).With().
		Str("component", "webview").
		Uint64("webview_id", w.id).
		Logger()

	w.logger.Debug().
		Int("init_scripts", len(b.initScripts)).
		Bool("debug", b.debug).
		Str("message_handler", b.messageHandler).
		Stringer("miss_policy", b.missPolicy).
		Msg("webview created")

	return w, nil
}
