package webview

import "fmt"

// EventKind tags the variant carried by an Event.
type EventKind int

const (
	// EventNavigation carries a NavigationEvent.
	EventNavigation EventKind = iota
	// EventMessage carries a string posted by page script.
	EventMessage
	// EventPlatform carries a PlatformEvent.
	EventPlatform
)

func (k EventKind) String() string {
	switch k {
	case EventNavigation:
		return "navigation"
	case EventMessage:
		return "message"
	case EventPlatform:
		return "platform"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// NavigationKind tags the phase of a navigation.
type NavigationKind int

const (
	NavigationStart NavigationKind = iota
	NavigationCommit
	NavigationFinish
	// NavigationPlatform carries a PlatformNavigationEvent.
	NavigationPlatform
)

func (k NavigationKind) String() string {
	switch k {
	case NavigationStart:
		return "start"
	case NavigationCommit:
		return "commit"
	case NavigationFinish:
		return "finish"
	case NavigationPlatform:
		return "platform"
	default:
		return fmt.Sprintf("NavigationKind(%d)", int(k))
	}
}

// PlatformNavigationEvent is a navigation phase specific to WebKit.
type PlatformNavigationEvent int

const (
	// PlatformNavigationRedirect reports a server redirect of a provisional
	// navigation, between Start and Commit.
	PlatformNavigationRedirect PlatformNavigationEvent = iota
)

func (e PlatformNavigationEvent) String() string {
	if e == PlatformNavigationRedirect {
		return "redirect"
	}
	return fmt.Sprintf("PlatformNavigationEvent(%d)", int(e))
}

// PlatformEvent is reserved for platform specific notifications. macOS
// delivers none.
type PlatformEvent struct{}

// NavigationEvent reports progress of a page load.
type NavigationEvent struct {
	Kind NavigationKind
	// Platform is meaningful when Kind is NavigationPlatform.
	Platform PlatformNavigationEvent
}

func (e NavigationEvent) String() string {
	if e.Kind == NavigationPlatform {
		return e.Platform.String()
	}
	return e.Kind.String()
}

// Event is delivered to an EventHandler. Only the field matching Kind is set.
type Event struct {
	Kind       EventKind
	Navigation NavigationEvent
	Message    string
	Platform   PlatformEvent
}

// NavigationEventOf wraps a navigation phase.
func NavigationEventOf(kind NavigationKind) Event {
	return Event{Kind: EventNavigation, Navigation: NavigationEvent{Kind: kind}}
}

// PlatformNavigationEventOf wraps a WebKit specific navigation phase.
func PlatformNavigationEventOf(p PlatformNavigationEvent) Event {
	return Event{Kind: EventNavigation, Navigation: NavigationEvent{Kind: NavigationPlatform, Platform: p}}
}

// MessageEvent wraps a script message body.
func MessageEvent(body string) Event {
	return Event{Kind: EventMessage, Message: body}
}

func (e Event) String() string {
	switch e.Kind {
	case EventNavigation:
		return "navigation(" + e.Navigation.String() + ")"
	case EventMessage:
		return fmt.Sprintf("message(%q)", e.Message)
	default:
		return e.Kind.String()
	}
}

// EventHandler receives events on the thread WebKit calls back on, which is
// the UI thread. Implementations must not block for long.
type EventHandler interface {
	HandleEvent(Event)
}

// HandlerFunc adapts a function to an EventHandler.
type HandlerFunc func(Event)

// HandleEvent calls f(e).
func (f HandlerFunc) HandleEvent(e Event) { f(e) }

// ChannelHandler forwards events to a channel. The send blocks until the
// receiver takes the event, so it needs a live reader or buffer room. An
// event is dropped only when the channel is closed.
type ChannelHandler chan<- Event

// HandleEvent implements EventHandler.
func (c ChannelHandler) HandleEvent(e Event) {
	defer func() {
		// send on closed channel
		_ = recover()
	}()
	c <- e
}

// EventLoopProxy enqueues values into an event loop owned by someone else,
// such as a UI framework's main loop.
type EventLoopProxy[T any] interface {
	SendEvent(T) error
}

// EventLoopProxyFunc adapts a function to an EventLoopProxy.
type EventLoopProxyFunc[T any] func(T) error

// SendEvent calls f(v).
func (f EventLoopProxyFunc[T]) SendEvent(v T) error { return f(v) }

// ProxyHandler wraps each event with Wrap and hands it to Proxy. Errors from
// the proxy are discarded.
type ProxyHandler[T any] struct {
	Proxy EventLoopProxy[T]
	Wrap  func(Event) T
}

// NewProxyHandler returns a handler that forwards wrapped events to proxy.
func NewProxyHandler[T any](proxy EventLoopProxy[T], wrap func(Event) T) *ProxyHandler[T] {
	return &ProxyHandler[T]{Proxy: proxy, Wrap: wrap}
}

// HandleEvent implements EventHandler.
func (p *ProxyHandler[T]) HandleEvent(e Event) {
	_ = p.Proxy.SendEvent(p.Wrap(e))
}
