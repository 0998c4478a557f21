// Package nativetest provides an in-memory native.Runtime for tests. It
// keeps retain counts, dispatches registered methods, and panics on the
// same mistakes a real object runtime would crash on (unknown selectors,
// over-release, use after free).
package nativetest

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/wkview/internal/native"
)

// RootClass is the class every fake runtime knows about.
const RootClass = "NSObject"

// Object is a snapshot of a fake instance.
type Object struct {
	Class native.Class
	Refs  int
	Freed bool
	Slots map[string]uintptr
	Data  any
}

type object struct {
	class     native.Class
	refs      int
	freed     bool
	slots     map[string]uintptr
	data      any
	onDealloc func()
}

// Runtime is a fake native.Runtime.
type Runtime struct {
	mu        sync.Mutex
	next      uintptr
	classes   map[string]native.Class
	protocols map[string]native.Protocol
	defs      map[native.Class]*native.ClassDescriptor
	objects   map[native.ID]*object

	registrations atomic.Int64

	// RegisterDelay stalls RegisterClass to widen race windows in tests.
	RegisterDelay time.Duration
}

// New creates a runtime that knows RootClass and the given protocols.
func New(protocols ...string) *Runtime {
	r := &Runtime{
		classes:   make(map[string]native.Class),
		protocols: make(map[string]native.Protocol),
		defs:      make(map[native.Class]*native.ClassDescriptor),
		objects:   make(map[native.ID]*object),
	}
	r.classes[RootClass] = native.Class(r.ref())
	for _, name := range protocols {
		r.protocols[name] = native.Protocol(r.ref())
	}
	return r
}

func (r *Runtime) ref() uintptr {
	r.next += 0x10
	return r.next
}

// AddProtocol makes a protocol resolvable.
func (r *Runtime) AddProtocol(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.protocols[name]; !ok {
		r.protocols[name] = native.Protocol(r.ref())
	}
}

// LookupClass implements native.Runtime.
func (r *Runtime) LookupClass(name string) (native.Class, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cls, ok := r.classes[name]
	return cls, ok
}

// LookupProtocol implements native.Runtime.
func (r *Runtime) LookupProtocol(name string) (native.Protocol, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	proto, ok := r.protocols[name]
	return proto, ok
}

// RegisterClass implements native.Runtime.
func (r *Runtime) RegisterClass(desc *native.ClassDescriptor) (native.Class, error) {
	r.registrations.Add(1)
	if r.RegisterDelay > 0 {
		time.Sleep(r.RegisterDelay)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.classes[desc.Name]; exists {
		return 0, fmt.Errorf("class %q already exists", desc.Name)
	}
	if desc.Superclass != r.classes[RootClass] {
		return 0, fmt.Errorf("class %q: unknown superclass %#x", desc.Name, desc.Superclass)
	}

	cls := native.Class(r.ref())
	copied := *desc
	r.classes[desc.Name] = cls
	r.defs[cls] = &copied
	return cls, nil
}

// Registrations counts RegisterClass calls, including failed ones.
func (r *Runtime) Registrations() int {
	return int(r.registrations.Load())
}

// Descriptor returns the descriptor a class was registered with.
func (r *Runtime) Descriptor(cls native.Class) (*native.ClassDescriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	desc, ok := r.defs[cls]
	return desc, ok
}

// Alloc implements native.Runtime.
func (r *Runtime) Alloc(cls native.Class) native.ID {
	return r.newObject(cls, nil, nil)
}

// NewObject creates a root-class instance carrying data. onDealloc, when
// set, runs once as the object is freed.
func (r *Runtime) NewObject(data any, onDealloc func()) native.ID {
	r.mu.Lock()
	root := r.classes[RootClass]
	r.mu.Unlock()
	return r.newObject(root, data, onDealloc)
}

func (r *Runtime) newObject(cls native.Class, data any, onDealloc func()) native.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := native.ID(r.ref())
	r.objects[id] = &object{
		class:     cls,
		refs:      1,
		slots:     make(map[string]uintptr),
		data:      data,
		onDealloc: onDealloc,
	}
	return id
}

// Data returns the payload attached by NewObject.
func (r *Runtime) Data(id native.ID) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live(id).data
}

// Object returns a snapshot of id.
func (r *Runtime) Object(id native.ID) (Object, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, ok := r.objects[id]
	if !ok {
		return Object{}, false
	}
	slots := make(map[string]uintptr, len(obj.slots))
	for k, v := range obj.slots {
		slots[k] = v
	}
	return Object{Class: obj.class, Refs: obj.refs, Freed: obj.freed, Slots: slots, Data: obj.data}, true
}

// Live counts objects that have not been freed.
func (r *Runtime) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, obj := range r.objects {
		if !obj.freed {
			n++
		}
	}
	return n
}

// Send implements native.Runtime. Registered methods run without the
// runtime lock held so they may call back into the runtime. Results are
// converted the way the method's return type would be: void methods yield
// 0 and BOOL methods yield 0 or 1.
func (r *Runtime) Send(id native.ID, sel native.Selector, args ...native.ID) native.ID {
	desc := r.descriptorOf(id)
	if desc != nil {
		if m, ok := desc.Method(sel); ok {
			if len(args) != sel.Arity() {
				panic(fmt.Sprintf("nativetest: %s called with %d args", sel, len(args)))
			}
			out := m.Fn(id, args)
			switch m.Returns {
			case native.ResultVoid:
				return 0
			case native.ResultBool:
				if out != 0 {
					return 1
				}
				return 0
			default:
				return out
			}
		}
	}
	return r.root(id, sel)
}

// SendSuper implements native.Runtime. Every registered class derives from
// RootClass, so the superclass implementation is always the root one.
func (r *Runtime) SendSuper(id native.ID, sel native.Selector, _ ...native.ID) native.ID {
	return r.root(id, sel)
}

func (r *Runtime) root(id native.ID, sel native.Selector) native.ID {
	switch sel {
	case native.SelInit:
		return id
	case native.SelDealloc:
		r.free(id)
		return 0
	default:
		panic(fmt.Sprintf("nativetest: unrecognized selector %q sent to %#x", sel, id))
	}
}

func (r *Runtime) descriptorOf(id native.ID) *native.ClassDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.defs[r.live(id).class]
}

func (r *Runtime) free(id native.ID) {
	hook := func() func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		obj := r.live(id)
		obj.freed = true
		h := obj.onDealloc
		obj.onDealloc = nil
		return h
	}()
	if hook != nil {
		hook()
	}
}

// Retain implements native.Runtime.
func (r *Runtime) Retain(id native.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live(id).refs++
}

// Release implements native.Runtime.
func (r *Runtime) Release(id native.ID) {
	teardown := func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		obj := r.live(id)
		obj.refs--
		return obj.refs == 0
	}()
	if teardown {
		r.Send(id, native.SelDealloc)
	}
}

// SetSlot implements native.Runtime.
func (r *Runtime) SetSlot(id native.ID, name string, value uintptr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj := r.live(id)
	r.checkSlot(obj, name)
	obj.slots[name] = value
}

// Slot implements native.Runtime.
func (r *Runtime) Slot(id native.ID, name string) uintptr {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj := r.live(id)
	r.checkSlot(obj, name)
	return obj.slots[name]
}

func (r *Runtime) checkSlot(obj *object, name string) {
	desc := r.defs[obj.class]
	if desc == nil {
		panic(fmt.Sprintf("nativetest: slot %q on unregistered class", name))
	}
	for _, s := range desc.Slots {
		if s == name {
			return
		}
	}
	panic(fmt.Sprintf("nativetest: class %q has no slot %q", desc.Name, name))
}

// live must be called with r.mu held.
func (r *Runtime) live(id native.ID) *object {
	obj, ok := r.objects[id]
	if !ok {
		panic(fmt.Sprintf("nativetest: unknown object %#x", id))
	}
	if obj.freed {
		panic(fmt.Sprintf("nativetest: use of freed object %#x", id))
	}
	return obj
}
