package monitor

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnema/wkview/pkg/webview"
)

// Sender is the part of *tea.Program the proxy needs.
type Sender interface {
	Send(tea.Msg)
}

// Proxy enqueues messages into a running bubbletea program.
type Proxy struct {
	Program Sender
}

// SendEvent implements webview.EventLoopProxy. Program.Send blocks until
// the program accepts the message, and drops it once the program exited.
func (p Proxy) SendEvent(msg tea.Msg) error {
	p.Program.Send(msg)
	return nil
}

// Wrap turns a web view event into an EventMsg stamped with the current time.
func Wrap(e webview.Event) tea.Msg {
	return EventMsg{At: time.Now(), Event: e}
}

// Handler returns an event handler feeding program.
func Handler(program Sender) webview.EventHandler {
	return webview.NewProxyHandler[tea.Msg](Proxy{Program: program}, Wrap)
}
