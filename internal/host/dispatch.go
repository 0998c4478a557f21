package host

import (
	"context"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/rs/zerolog"

	"github.com/bnema/wkview/internal/logging"
	"github.com/bnema/wkview/internal/native"
)

const (
	callClassName = "WKViewMainThreadCall"
	callSlot      = "callSlot"

	selRun native.Selector = "run"
)

type callClassKey struct{}

// Dispatcher runs Go functions on the UI thread. Each Post creates a small
// native object owning the function and hands it to a scheduler that invokes
// its run method from the main run loop.
type Dispatcher struct {
	rt       native.Runtime
	registry *native.ClassRegistry
	handles  *native.HandleTable
	schedule func(obj native.ID)
	logger   zerolog.Logger
}

var dispatchers = xsync.NewMap[native.Runtime, *Dispatcher]()

// DispatcherFor returns the dispatcher of rt, creating it with schedule on
// first use. schedule must arrange for run to be sent to obj on the UI
// thread and keep obj alive until then.
func DispatcherFor(ctx context.Context, rt native.Runtime, schedule func(obj native.ID)) *Dispatcher {
	if d, ok := dispatchers.Load(rt); ok {
		return d
	}
	d, _ := dispatchers.LoadOrStore(rt, &Dispatcher{
		rt:       rt,
		registry: native.RegistryFor(ctx, rt),
		handles:  native.NewHandleTable(),
		schedule: schedule,
		logger:   logging.FromContext(ctx).With().Str("component", "dispatcher").Logger(),
	})
	return d
}

// Post queues fn. It returns immediately and may be called from any
// goroutine.
func (d *Dispatcher) Post(fn func()) {
	cls := d.registry.GetOrRegister(callClassKey{}, d.classSpec)
	obj := d.rt.Send(d.rt.Alloc(cls), native.SelInit)
	d.rt.SetSlot(obj, callSlot, d.handles.Put(fn))
	d.schedule(obj)
	d.rt.Release(obj)
}

// Pending returns the number of posted functions that have not run.
func (d *Dispatcher) Pending() int {
	return d.handles.Len()
}

func (d *Dispatcher) classSpec() native.ClassSpec {
	return native.ClassSpec{
		Name:       callClassName,
		Superclass: "NSObject",
		Slots:      []string{callSlot},
		Methods: []native.Method{
			{Selector: selRun, Fn: d.run},
			{Selector: native.SelDealloc, Fn: d.dealloc},
		},
	}
}

func (d *Dispatcher) take(self native.ID) (func(), bool) {
	key := d.rt.Slot(self, callSlot)
	d.rt.SetSlot(self, callSlot, 0)
	v, ok := d.handles.Redeem(key)
	if !ok {
		return nil, false
	}
	fn, ok := v.(func())
	return fn, ok
}

func (d *Dispatcher) run(self native.ID, _ []native.ID) native.ID {
	if fn, ok := d.take(self); ok {
		fn()
	}
	return 0
}

func (d *Dispatcher) dealloc(self native.ID, _ []native.ID) native.ID {
	if _, ok := d.take(self); ok {
		d.logger.Debug().Msg("posted call dropped before it ran")
	}
	d.rt.SendSuper(self, native.SelDealloc)
	return 0
}
