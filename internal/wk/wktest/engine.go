// Package wktest is an in-memory wk.Engine. Views, scheme tasks and script
// messages are plain objects in a nativetest.Runtime; helper methods play
// the part of WebKit by invoking delegate callbacks.
package wktest

import (
	"errors"
	"net/url"
	"sync"

	"github.com/bnema/wkview/internal/native"
	"github.com/bnema/wkview/internal/native/nativetest"
	"github.com/bnema/wkview/internal/wk"
)

// Load records one navigation request.
type Load struct {
	URL     string
	HTML    string
	BaseURL string
}

// View is the recorded state of a fake web view.
type View struct {
	Config   wk.ViewConfig
	Loads    []Load
	Scripts  []string
	Title    string
	Detached bool
	Freed    bool
}

// Task is the recorded state of a fake scheme task.
type Task struct {
	URL      string
	Path     string
	Response *wk.URLResponse
	Data     []byte
	Finished bool
	FailCode int
	// Calls lists the task methods in the order the bridge invoked them.
	Calls []string
}

type message struct {
	body any
}

// Engine is a fake wk.Engine.
type Engine struct {
	*nativetest.Runtime

	mu    sync.Mutex
	views map[native.ID]*View
	tasks map[native.ID]*Task

	// FailNewWebView makes NewWebView return an error.
	FailNewWebView bool
}

var _ wk.Engine = (*Engine)(nil)

// New creates an engine whose runtime knows every protocol the delegate needs.
func New() *Engine {
	return &Engine{
		Runtime: nativetest.New(
			wk.ProtocolNavigationDelegate,
			wk.ProtocolURLSchemeHandler,
			wk.ProtocolScriptMessageHandler,
		),
		views: make(map[native.ID]*View),
		tasks: make(map[native.ID]*Task),
	}
}

// NewWebView implements wk.Engine. Like a WKWebViewConfiguration, the view
// keeps the delegate alive until the view itself is freed.
func (e *Engine) NewWebView(cfg wk.ViewConfig) (native.ID, error) {
	if e.FailNewWebView {
		return 0, errors.New("wktest: web view creation failed")
	}
	if cfg.Host == 0 {
		return 0, errors.New("wktest: host view is nil")
	}

	v := &View{Config: cfg}
	v.Config.InitScripts = append([]string(nil), cfg.InitScripts...)

	e.Retain(cfg.Delegate)
	id := e.NewObject(v, func() {
		e.mu.Lock()
		v.Freed = true
		e.mu.Unlock()
		e.Release(cfg.Delegate)
	})

	e.mu.Lock()
	e.views[id] = v
	e.mu.Unlock()
	return id, nil
}

// DetachWebView implements wk.Engine.
func (e *Engine) DetachWebView(view native.ID, _ string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view(view).Detached = true
}

// LoadURL implements wk.Engine.
func (e *Engine) LoadURL(view native.ID, u string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.view(view)
	v.Loads = append(v.Loads, Load{URL: u})
}

// LoadHTML implements wk.Engine.
func (e *Engine) LoadHTML(view native.ID, html, baseURL string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.view(view)
	v.Loads = append(v.Loads, Load{HTML: html, BaseURL: baseURL})
}

// EvaluateJavaScript implements wk.Engine.
func (e *Engine) EvaluateJavaScript(view native.ID, script string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.view(view)
	v.Scripts = append(v.Scripts, script)
}

// Title implements wk.Engine.
func (e *Engine) Title(view native.ID) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view(view).Title
}

// SetTitle sets the document title reported for view.
func (e *Engine) SetTitle(view native.ID, title string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view(view).Title = title
}

// View returns a copy of the recorded state of view.
func (e *Engine) View(view native.ID) View {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := *e.view(view)
	v.Loads = append([]Load(nil), v.Loads...)
	v.Scripts = append([]string(nil), v.Scripts...)
	return v
}

// Views returns the number of views created so far.
func (e *Engine) Views() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.views)
}

// MessageBody implements wk.Engine.
func (e *Engine) MessageBody(msg native.ID) (string, bool) {
	m, ok := e.Data(msg).(*message)
	if !ok {
		return "", false
	}
	s, ok := m.body.(string)
	return s, ok
}

// TaskRequestURL implements wk.Engine.
func (e *Engine) TaskRequestURL(task native.ID) (string, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.task(task)
	return t.URL, t.Path
}

// TaskDidReceiveResponse implements wk.Engine.
func (e *Engine) TaskDidReceiveResponse(task native.ID, resp wk.URLResponse) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.task(task)
	t.Response = &resp
	t.Calls = append(t.Calls, "didReceiveResponse")
}

// TaskDidReceiveData implements wk.Engine.
func (e *Engine) TaskDidReceiveData(task native.ID, data []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.task(task)
	t.Data = append(t.Data, data...)
	t.Calls = append(t.Calls, "didReceiveData")
}

// TaskDidFinish implements wk.Engine.
func (e *Engine) TaskDidFinish(task native.ID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.task(task)
	t.Finished = true
	t.Calls = append(t.Calls, "didFinish")
}

// TaskDidFail implements wk.Engine.
func (e *Engine) TaskDidFail(task native.ID, code int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.task(task)
	t.FailCode = code
	t.Calls = append(t.Calls, "didFailWithError")
}

func (e *Engine) delegate(view native.ID) native.ID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view(view).Config.Delegate
}

// Navigate plays a successful navigation of view: start, commit, finish.
func (e *Engine) Navigate(view native.ID) {
	e.navigationStep(view, wk.SelDidStartProvisionalNavigation)
	e.navigationStep(view, wk.SelDidCommitNavigation)
	e.navigationStep(view, wk.SelDidFinishNavigation)
}

// NavigateWithRedirect plays a navigation that is redirected before commit.
func (e *Engine) NavigateWithRedirect(view native.ID) {
	e.navigationStep(view, wk.SelDidStartProvisionalNavigation)
	e.navigationStep(view, wk.SelDidReceiveServerRedirect)
	e.navigationStep(view, wk.SelDidCommitNavigation)
	e.navigationStep(view, wk.SelDidFinishNavigation)
}

func (e *Engine) navigationStep(view native.ID, sel native.Selector) {
	nav := e.NewObject(nil, nil)
	defer e.Release(nav)
	e.Send(e.delegate(view), sel, view, nav)
}

// PostMessage delivers a script message with body to view's delegate.
func (e *Engine) PostMessage(view native.ID, body any) {
	msg := e.NewObject(&message{body: body}, nil)
	defer e.Release(msg)
	ucm := e.NewObject(nil, nil)
	defer e.Release(ucm)
	e.Send(e.delegate(view), wk.SelDidReceiveScriptMessage, ucm, msg)
}

// StartTask delivers a scheme task for rawURL to view's delegate and returns
// the task's recorded state once the delegate returns.
func (e *Engine) StartTask(view native.ID, rawURL string) Task {
	t := &Task{URL: rawURL}
	if u, err := url.Parse(rawURL); err == nil {
		t.Path = u.Path
	}

	id := e.NewObject(nil, nil)
	defer e.Release(id)
	e.mu.Lock()
	e.tasks[id] = t
	e.mu.Unlock()

	e.Send(e.delegate(view), wk.SelStartURLSchemeTask, view, id)
	e.Send(e.delegate(view), wk.SelStopURLSchemeTask, view, id)

	e.mu.Lock()
	defer e.mu.Unlock()
	out := *t
	out.Calls = append([]string(nil), t.Calls...)
	return out
}

// view and task must be called with e.mu held.
func (e *Engine) view(id native.ID) *View {
	v, ok := e.views[id]
	if !ok {
		panic("wktest: unknown view")
	}
	return v
}

func (e *Engine) task(id native.ID) *Task {
	t, ok := e.tasks[id]
	if !ok {
		panic("wktest: unknown task")
	}
	return t
}
