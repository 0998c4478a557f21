// Package host owns the native application and the window a web view lives
// in. Everything except Dispatch and Quit must be called from the main
// thread, which the caller locks before New.
package host

import "errors"

// ErrUnsupported is returned by New where no native windowing exists.
var ErrUnsupported = errors.New("native host windows are only available on macOS")

// Options describes the window to open.
type Options struct {
	Title  string
	Width  int
	Height int
	// OnTerminate runs on the main thread once, just before the process
	// exits because the application terminated.
	OnTerminate func()
}
