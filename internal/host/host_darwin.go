//go:build darwin

package host

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/ebitengine/purego/objc"
	"github.com/rs/zerolog"

	"github.com/bnema/wkview/internal/logging"
	"github.com/bnema/wkview/internal/native"
)

const appKitFramework = "/System/Library/Frameworks/AppKit.framework/AppKit"

const (
	nsApplicationActivationPolicyRegular = 0
	nsBackingStoreBuffered               = 2
	nsUTF8StringEncoding                 = 4

	// titled | closable | miniaturizable | resizable
	windowStyle = 1 | 2 | 4 | 8
)

type nsRect struct {
	X, Y, Width, Height float64
}

var loadAppKit = sync.OnceValue(func() error {
	if _, err := purego.Dlopen(appKitFramework, purego.RTLD_NOW|purego.RTLD_GLOBAL); err != nil {
		return fmt.Errorf("load %s: %w", appKitFramework, err)
	}
	return nil
})

func sel(name string) objc.SEL {
	return objc.RegisterName(name)
}

func nsString(s string) objc.ID {
	return objc.ID(objc.GetClass("NSString")).Send(sel("alloc")).Send(
		sel("initWithBytes:length:encoding:"),
		unsafe.Pointer(unsafe.StringData(s)), uint(len(s)), uint(nsUTF8StringEncoding),
	)
}

// App is the running NSApplication with a single window.
type App struct {
	app        objc.ID
	window     objc.ID
	delegate   native.ID
	dispatcher *Dispatcher
	logger     zerolog.Logger
}

// New creates the shared application and opens its window.
func New(ctx context.Context, opts Options) (*App, error) {
	if err := loadAppKit(); err != nil {
		return nil, err
	}
	logger := logging.FromContext(ctx).With().Str("component", "host").Logger()
	rt := native.ObjC{}

	app := objc.ID(objc.GetClass("NSApplication")).Send(sel("sharedApplication"))
	if app == 0 {
		return nil, fmt.Errorf("NSApplication sharedApplication returned nil")
	}
	app.Send(sel("setActivationPolicy:"), nsApplicationActivationPolicyRegular)

	delegate := newAppDelegate(ctx, rt, opts.OnTerminate)
	app.Send(sel("setDelegate:"), objc.ID(delegate))

	rect := nsRect{Width: float64(opts.Width), Height: float64(opts.Height)}
	window := objc.ID(objc.GetClass("NSWindow")).Send(sel("alloc")).Send(
		sel("initWithContentRect:styleMask:backing:defer:"),
		rect, uint(windowStyle), uint(nsBackingStoreBuffered), false,
	)
	if window == 0 {
		return nil, fmt.Errorf("NSWindow initWithContentRect:styleMask:backing:defer: returned nil")
	}
	window.Send(sel("setReleasedWhenClosed:"), false)
	window.Send(sel("center"))

	a := &App{
		app:      app,
		window:   window,
		delegate: delegate,
		logger:   logger,
	}
	a.dispatcher = DispatcherFor(ctx, rt, func(obj native.ID) {
		objc.ID(obj).Send(sel("performSelectorOnMainThread:withObject:waitUntilDone:"), sel(string(selRun)), objc.ID(0), false)
	})
	a.SetTitle(opts.Title)

	logger.Debug().Int("width", opts.Width).Int("height", opts.Height).Msg("window created")
	return a, nil
}

// NativeView returns the window's content view.
func (a *App) NativeView() uintptr {
	return uintptr(a.window.Send(sel("contentView")))
}

// SetTitle sets the window title.
func (a *App) SetTitle(title string) {
	s := nsString(title)
	a.window.Send(sel("setTitle:"), s)
	s.Send(sel("release"))
}

// Dispatch runs fn on the main thread. Safe from any goroutine.
func (a *App) Dispatch(fn func()) {
	a.dispatcher.Post(fn)
}

// Run shows the window and runs the event loop. It returns only if the
// loop is stopped without terminating the process.
func (a *App) Run() {
	a.window.Send(sel("makeKeyAndOrderFront:"), objc.ID(0))
	a.app.Send(sel("activateIgnoringOtherApps:"), true)
	a.logger.Debug().Msg("entering run loop")
	a.app.Send(sel("run"))
}

// Quit terminates the application from any goroutine. OnTerminate runs
// before the process exits.
func (a *App) Quit() {
	a.Dispatch(func() {
		a.app.Send(sel("terminate:"), objc.ID(0))
	})
}
