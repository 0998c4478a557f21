package host

import (
	"context"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/rs/zerolog"

	"github.com/bnema/wkview/internal/logging"
	"github.com/bnema/wkview/internal/native"
)

const (
	appDelegateClassName = "WKViewAppDelegate"
	protocolAppDelegate  = "NSApplicationDelegate"

	selShouldTerminateAfterLastWindowClosed native.Selector = "applicationShouldTerminateAfterLastWindowClosed:"
	selWillTerminate                        native.Selector = "applicationWillTerminate:"
)

type appDelegateClassKey struct{}

// appDelegate quits the application with its last window and runs the
// terminate hook once before the process exits.
type appDelegate struct {
	onTerminate func()
	once        sync.Once
	logger      zerolog.Logger
}

// Instances are found by object id; the class is shared by every delegate
// on a runtime.
var appDelegates = xsync.NewMap[native.ID, *appDelegate]()

func newAppDelegate(ctx context.Context, rt native.Runtime, onTerminate func()) native.ID {
	d := &appDelegate{
		onTerminate: onTerminate,
		logger:      logging.FromContext(ctx).With().Str("component", "app-delegate").Logger(),
	}
	cls := native.RegistryFor(ctx, rt).GetOrRegister(appDelegateClassKey{}, func() native.ClassSpec {
		return appDelegateSpec(rt)
	})
	obj := rt.Send(rt.Alloc(cls), native.SelInit)
	appDelegates.Store(obj, d)
	return obj
}

func appDelegateSpec(rt native.Runtime) native.ClassSpec {
	return native.ClassSpec{
		Name:       appDelegateClassName,
		Superclass: "NSObject",
		Protocols:  []string{protocolAppDelegate},
		Methods: []native.Method{
			{Selector: selShouldTerminateAfterLastWindowClosed, Returns: native.ResultBool, Fn: func(native.ID, []native.ID) native.ID {
				return 1 // YES
			}},
			{Selector: selWillTerminate, Fn: func(self native.ID, _ []native.ID) native.ID {
				if d, ok := appDelegates.Load(self); ok {
					d.terminate()
				}
				return 0
			}},
			{Selector: native.SelDealloc, Fn: func(self native.ID, _ []native.ID) native.ID {
				appDelegates.Delete(self)
				rt.SendSuper(self, native.SelDealloc)
				return 0
			}},
		},
	}
}

func (d *appDelegate) terminate() {
	d.once.Do(func() {
		d.logger.Debug().Msg("application terminating")
		if d.onTerminate != nil {
			d.onTerminate()
		}
	})
}
