// Package wk describes the WebKit surface the bridge drives: creating a
// WKWebView wired to a delegate, loading content, reading state, and
// answering URL scheme tasks. On darwin it is backed by the Objective-C
// runtime; everywhere else Default reports ErrUnavailable.
package wk

import (
	"errors"

	"github.com/bnema/wkview/internal/native"
)

// Scheme is the reserved in-app URL scheme. Requests to it are answered by
// the request handler instead of the network.
const Scheme = "wkview"

// BaseURL is the base URL used for HTML navigations so relative resources
// resolve against Scheme.
const BaseURL = Scheme + "://"

// DefaultMessageHandler is the name pages post to with
// window.webkit.messageHandlers.<name>.postMessage.
const DefaultMessageHandler = "wkview"

// Native names the delegate class depends on.
const (
	RootClass                    = "NSObject"
	ProtocolNavigationDelegate   = "WKNavigationDelegate"
	ProtocolURLSchemeHandler     = "WKURLSchemeHandler"
	ProtocolScriptMessageHandler = "WKScriptMessageHandler"
)

// Delegate callbacks invoked by WebKit.
const (
	SelDidStartProvisionalNavigation native.Selector = "webView:didStartProvisionalNavigation:"
	SelDidReceiveServerRedirect      native.Selector = "webView:didReceiveServerRedirectForProvisionalNavigation:"
	SelDidCommitNavigation           native.Selector = "webView:didCommitNavigation:"
	SelDidFinishNavigation           native.Selector = "webView:didFinishNavigation:"
	SelDidReceiveScriptMessage       native.Selector = "userContentController:didReceiveScriptMessage:"
	SelStartURLSchemeTask            native.Selector = "webView:startURLSchemeTask:"
	SelStopURLSchemeTask             native.Selector = "webView:stopURLSchemeTask:"
)

// NSURLErrorDomain codes used to fail scheme tasks.
const (
	ErrCodeResourceUnavailable = -1008
	ErrCodeFileDoesNotExist    = -1100
)

// ErrUnavailable is returned when no native WebKit engine can be used.
var ErrUnavailable = errors.New("native webview engine unavailable")

// ViewConfig describes a WKWebView to create.
type ViewConfig struct {
	// Host is the native view (NSView) the web view is added to.
	Host uintptr
	// Delegate receives navigation, script message and scheme callbacks.
	Delegate native.ID
	// Scheme is routed to Delegate as scheme tasks.
	Scheme string
	// MessageHandler is the script message handler name.
	MessageHandler string
	// InitScripts are injected, in order, at document start of every load.
	InitScripts []string
	// Debug enables the web inspector.
	Debug bool
}

// URLResponse is the response header delivered to a scheme task.
type URLResponse struct {
	URL           string
	MIMEType      string
	ContentLength int64
}

// Engine is a WebKit implementation.
type Engine interface {
	native.Runtime

	// NewWebView creates a web view inside cfg.Host. The returned view is owned
	// by the caller (retain count one).
	NewWebView(cfg ViewConfig) (native.ID, error)
	// DetachWebView removes the view from its host and unregisters the
	// script message handler so the delegate can be torn down.
	DetachWebView(view native.ID, messageHandler string)

	LoadURL(view native.ID, url string)
	LoadHTML(view native.ID, html, baseURL string)
	// EvaluateJavaScript runs script without waiting for its result.
	EvaluateJavaScript(view native.ID, script string)
	// Title returns the document title, empty when there is none.
	Title(view native.ID) string

	// MessageBody returns a script message body when it is a string.
	MessageBody(message native.ID) (string, bool)

	// TaskRequestURL returns the absolute URL and path of a scheme task.
	TaskRequestURL(task native.ID) (absolute, path string)
	TaskDidReceiveResponse(task native.ID, resp URLResponse)
	TaskDidReceiveData(task native.ID, data []byte)
	TaskDidFinish(task native.ID)
	TaskDidFail(task native.ID, code int)
}
