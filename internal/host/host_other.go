//go:build !darwin

package host

import "context"

// App is unavailable on this platform.
type App struct{}

// New reports ErrUnsupported.
func New(context.Context, Options) (*App, error) {
	return nil, ErrUnsupported
}

func (*App) NativeView() uintptr { return 0 }

func (*App) SetTitle(string) {}

func (*App) Dispatch(fn func()) {}

func (*App) Run() {}

func (*App) Quit() {}
