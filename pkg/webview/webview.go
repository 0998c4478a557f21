package webview

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/bnema/wkview/internal/native"
	"github.com/bnema/wkview/internal/wk"
)

var nextViewID atomic.Uint64

// NavigationTarget is what Navigate loads. Build one with URL or HTML.
type NavigationTarget struct {
	url  string
	html string
	// isHTML distinguishes HTML("") from URL("").
	isHTML bool
}

// URL targets a URL.
func URL(u string) NavigationTarget { return NavigationTarget{url: u} }

// HTML targets inline markup, resolved against wkview://.
func HTML(markup string) NavigationTarget { return NavigationTarget{html: markup, isHTML: true} }

func (t NavigationTarget) String() string {
	if t.isHTML {
		return "html"
	}
	return t.url
}

// WebView is a native web view inside a host window. Methods must be
// called on the UI thread.
type WebView struct {
	id             uint64
	engine         wk.Engine
	view           native.ID
	delegate       native.ID
	messageHandler string
	closed         atomic.Bool
	logger         zerolog.Logger
}

// Navigate starts loading target. Progress is reported as navigation events.
func (w *WebView) Navigate(target NavigationTarget) {
	if w.closed.Load() {
		w.logger.Debug().Msg("navigate on closed webview ignored")
		return
	}
	w.logger.Debug().Str("target", target.String()).Msg("navigating")
	if target.isHTML {
		w.engine.LoadHTML(w.view, target.html, wk.BaseURL)
		return
	}
	w.engine.LoadURL(w.view, target.url)
}

// Evaluate runs script in the current page. The result is discarded.
func (w *WebView) Evaluate(script string) {
	if w.closed.Load() {
		w.logger.Debug().Msg("evaluate on closed webview ignored")
		return
	}
	w.engine.EvaluateJavaScript(w.view, script)
}

// Title returns the document title, or false when the page has none.
func (w *WebView) Title() (string, bool) {
	if w.closed.Load() {
		return "", false
	}
	title := w.engine.Title(w.view)
	return title, title != ""
}

// NativeView returns the WKWebView. It stays owned by w. Once w is closed
// the view has been released and NativeView returns 0.
func (w *WebView) NativeView() native.ID {
	if w.closed.Load() {
		return 0
	}
	return w.view
}

// Close removes the view from its window and releases it together with the
// delegate. Handlers are reclaimed once WebKit lets go of the delegate.
// Calling Close more than once is a no-op.
func (w *WebView) Close() error {
	if w.closed.Swap(true) {
		return nil
	}
	w.engine.DetachWebView(w.view, w.messageHandler)
	w.engine.Release(w.view)
	w.engine.Release(w.delegate)
	w.logger.Debug().Msg("webview closed")
	return nil
}
