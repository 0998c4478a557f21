package webview

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/rs/zerolog"

	"github.com/bnema/wkview/internal/logging"
	"github.com/bnema/wkview/internal/native"
	"github.com/bnema/wkview/internal/wk"
)

const (
	eventSlot   = "eventSlot"
	requestSlot = "requestSlot"

	selInitWithSlots native.Selector = "initWithEventSlot:requestSlot:"

	delegateClassPrefix = "WKViewDelegate_"
)

// requestState is what the request slot owns.
type requestState struct {
	handler RequestHandler
	policy  MissPolicy
}

func (s *requestState) Close() error {
	if c, ok := s.handler.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// classKey identifies one delegate class. Methods dispatch through the
// handler interfaces, so one class serves every instance whose handlers
// share concrete types.
type classKey struct {
	event   reflect.Type
	request reflect.Type
}

func (k classKey) className() string {
	h := xxhash.New()
	_, _ = h.WriteString(typeName(k.event))
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(typeName(k.request))
	return delegateClassPrefix + strconv.FormatUint(h.Sum64(), 16)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Name() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	if t.Kind() == reflect.Pointer {
		return "*" + typeName(t.Elem())
	}
	return t.String()
}

// bridge connects one engine's delegate instances to Go. Native callbacks
// find their handlers through the opaque keys stored in the two slots.
type bridge struct {
	engine   wk.Engine
	registry *native.ClassRegistry
	handles  *native.HandleTable
	logger   zerolog.Logger
	scheme   zerolog.Logger
}

var bridges = xsync.NewMap[wk.Engine, *bridge]()

func bridgeFor(ctx context.Context, engine wk.Engine) *bridge {
	if b, ok := bridges.Load(engine); ok {
		return b
	}
	logger := logging.FromContext(ctx)
	b, _ := bridges.LoadOrStore(engine, &bridge{
		engine:   engine,
		registry: native.RegistryFor(ctx, engine),
		handles:  native.NewHandleTable(),
		logger:   logger.With().Str("component", "delegate").Logger(),
		scheme:   logger.With().Str("component", "scheme-bridge").Logger(),
	})
	return b
}

var errDelegateInit = errors.New("delegate initializer returned nil")

// newDelegate creates a delegate instance owning events and req. The caller
// owns the returned reference.
func (b *bridge) newDelegate(events EventHandler, req *requestState) (native.ID, error) {
	key := classKey{event: reflect.TypeOf(events), request: reflect.TypeOf(req.handler)}
	cls := b.registry.GetOrRegister(key, func() native.ClassSpec {
		return b.classSpec(key.className())
	})

	eventKey := b.handles.Put(events)
	requestKey := b.handles.Put(req)

	obj := b.engine.Send(b.engine.Alloc(cls), selInitWithSlots, native.ID(eventKey), native.ID(requestKey))
	if obj == 0 {
		b.handles.Redeem(eventKey)
		b.handles.Redeem(requestKey)
		return 0, errDelegateInit
	}
	return obj, nil
}

func (b *bridge) classSpec(name string) native.ClassSpec {
	return native.ClassSpec{
		Name:       name,
		Superclass: wk.RootClass,
		Protocols: []string{
			wk.ProtocolNavigationDelegate,
			wk.ProtocolURLSchemeHandler,
			wk.ProtocolScriptMessageHandler,
		},
		Slots: []string{eventSlot, requestSlot},
		Methods: []native.Method{
			{Selector: selInitWithSlots, Returns: native.ResultObject, Fn: b.initWithSlots},
			{Selector: native.SelDealloc, Fn: b.dealloc},
			{Selector: wk.SelDidStartProvisionalNavigation, Fn: b.navigation(NavigationEventOf(NavigationStart))},
			{Selector: wk.SelDidReceiveServerRedirect, Fn: b.navigation(PlatformNavigationEventOf(PlatformNavigationRedirect))},
			{Selector: wk.SelDidCommitNavigation, Fn: b.navigation(NavigationEventOf(NavigationCommit))},
			{Selector: wk.SelDidFinishNavigation, Fn: b.navigation(NavigationEventOf(NavigationFinish))},
			{Selector: wk.SelDidReceiveScriptMessage, Fn: b.scriptMessage},
			{Selector: wk.SelStartURLSchemeTask, Fn: b.startTask},
			{Selector: wk.SelStopURLSchemeTask, Fn: b.stopTask},
		},
	}
}

func (b *bridge) initWithSlots(self native.ID, args []native.ID) native.ID {
	self = b.engine.SendSuper(self, native.SelInit)
	if self == 0 {
		return 0
	}
	b.engine.SetSlot(self, eventSlot, uintptr(args[0]))
	b.engine.SetSlot(self, requestSlot, uintptr(args[1]))
	return self
}

func (b *bridge) dealloc(self native.ID, _ []native.ID) native.ID {
	b.reclaim(self, eventSlot)
	b.reclaim(self, requestSlot)
	b.engine.SendSuper(self, native.SelDealloc)
	return 0
}

// reclaim takes back the value owned by slot. A zeroed slot or an already
// redeemed key is left alone.
func (b *bridge) reclaim(self native.ID, slot string) {
	key := b.engine.Slot(self, slot)
	b.engine.SetSlot(self, slot, 0)

	v, ok := b.handles.Redeem(key)
	if !ok {
		return
	}
	if c, ok := v.(io.Closer); ok {
		if err := c.Close(); err != nil {
			b.logger.Warn().Err(err).Str("slot", slot).Msg("closing reclaimed handler failed")
		}
	}
}

func (b *bridge) eventHandler(self native.ID) (EventHandler, bool) {
	v, ok := b.handles.Get(b.engine.Slot(self, eventSlot))
	if !ok {
		return nil, false
	}
	h, ok := v.(EventHandler)
	return h, ok
}

func (b *bridge) requestState(self native.ID) (*requestState, bool) {
	v, ok := b.handles.Get(b.engine.Slot(self, requestSlot))
	if !ok {
		return nil, false
	}
	s, ok := v.(*requestState)
	return s, ok
}

func (b *bridge) emit(self native.ID, e Event) {
	h, ok := b.eventHandler(self)
	if !ok {
		b.logger.Debug().Stringer("event", e).Msg("event after teardown dropped")
		return
	}
	b.logger.Debug().Stringer("event", e).Msg("delivering event")
	h.HandleEvent(e)
}

func (b *bridge) navigation(e Event) native.MethodFunc {
	return func(self native.ID, _ []native.ID) native.ID {
		b.emit(self, e)
		return 0
	}
}

func (b *bridge) scriptMessage(self native.ID, args []native.ID) native.ID {
	body, ok := b.engine.MessageBody(args[1])
	if !ok {
		b.logger.Debug().Msg("non-string script message dropped")
		return 0
	}
	b.emit(self, MessageEvent(body))
	return 0
}
