package webview

import (
	"fmt"
	"io"
	"strings"
)

// Response is the content served for an in-app request.
type Response struct {
	// Body is read to the end and closed when it is an io.Closer.
	Body     io.Reader
	MIMEType string
}

// RequestHandler answers requests made to the wkview:// scheme. It runs on
// the UI thread while WebKit waits, so it should return quickly.
type RequestHandler interface {
	// Handle returns the response for path, or false when it has none.
	Handle(path string) (*Response, bool)
}

// PlatformRequest describes a scheme request with the details WebKit
// exposes.
type PlatformRequest struct {
	// URI is the request path.
	URI string
	// URL is the absolute request URL.
	URL string
}

// PlatformRequestHandler is implemented by request handlers that want the
// full request instead of just its path.
type PlatformRequestHandler interface {
	HandlePlatformRequest(PlatformRequest) (*Response, bool)
}

// RequestHandlerFunc adapts a function to a RequestHandler.
type RequestHandlerFunc func(path string) (*Response, bool)

// Handle calls f(path).
func (f RequestHandlerFunc) Handle(path string) (*Response, bool) { return f(path) }

// NullRequestHandler answers no request.
type NullRequestHandler struct{}

// Handle implements RequestHandler.
func (NullRequestHandler) Handle(string) (*Response, bool) { return nil, false }

// MissPolicy decides what happens to a request no handler answered.
type MissPolicy int

const (
	// MissIgnore leaves the request unanswered.
	MissIgnore MissPolicy = iota
	// MissFail fails the request with NSURLErrorFileDoesNotExist.
	MissFail
)

func (p MissPolicy) String() string {
	switch p {
	case MissIgnore:
		return "ignore"
	case MissFail:
		return "fail"
	default:
		return fmt.Sprintf("MissPolicy(%d)", int(p))
	}
}

// ParseMissPolicy parses "ignore" or "fail".
func ParseMissPolicy(s string) (MissPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ignore", "":
		return MissIgnore, nil
	case "fail":
		return MissFail, nil
	default:
		return MissIgnore, fmt.Errorf("unknown miss policy %q (want ignore or fail)", s)
	}
}

func dispatch(h RequestHandler, req PlatformRequest) (*Response, bool) {
	if ph, ok := h.(PlatformRequestHandler); ok {
		return ph.HandlePlatformRequest(req)
	}
	return h.Handle(req.URI)
}
