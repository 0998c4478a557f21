//go:build darwin

package native

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/ebitengine/purego/objc"
)

// ObjC is the Objective-C runtime of the current process, reached through
// purego without cgo.
type ObjC struct{}

var _ Runtime = ObjC{}

func sel(s Selector) objc.SEL {
	return objc.RegisterName(string(s))
}

func objcArgs(args []ID) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = objc.ID(a)
	}
	return out
}

func goArgs(args ...objc.ID) []ID {
	out := make([]ID, len(args))
	for i, a := range args {
		out[i] = ID(a)
	}
	return out
}

// LookupClass implements Runtime.
func (ObjC) LookupClass(name string) (Class, bool) {
	cls := objc.GetClass(name)
	return Class(cls), cls != 0
}

// LookupProtocol implements Runtime.
func (ObjC) LookupProtocol(name string) (Protocol, bool) {
	p := objc.GetProtocol(name)
	if p == nil {
		return 0, false
	}
	return Protocol(uintptr(unsafe.Pointer(p))), true
}

// RegisterClass implements Runtime. Every slot becomes a pointer-sized ivar.
func (ObjC) RegisterClass(desc *ClassDescriptor) (Class, error) {
	protocols := make([]*objc.Protocol, 0, len(desc.Protocols))
	for _, p := range desc.Protocols {
		protocols = append(protocols, (*objc.Protocol)(unsafe.Pointer(uintptr(p))))
	}

	ivars := make([]objc.FieldDef, 0, len(desc.Slots))
	for _, name := range desc.Slots {
		ivars = append(ivars, objc.FieldDef{
			Name:      name,
			Type:      reflect.TypeOf(uintptr(0)),
			Attribute: objc.ReadWrite,
		})
	}

	methods := make([]objc.MethodDef, 0, len(desc.Methods))
	for _, m := range desc.Methods {
		fn, err := trampoline(m)
		if err != nil {
			return 0, fmt.Errorf("class %q: %w", desc.Name, err)
		}
		methods = append(methods, objc.MethodDef{Cmd: sel(m.Selector), Fn: fn})
	}

	cls, err := objc.RegisterClass(desc.Name, objc.Class(desc.Superclass), protocols, ivars, methods)
	if err != nil {
		return 0, err
	}
	return Class(cls), nil
}

// trampoline wraps a MethodFunc in a function whose signature matches the
// selector and return type, which is what the runtime derives the type
// encoding from.
func trampoline(m Method) (any, error) {
	fn := m.Fn
	call := func(self objc.ID, args ...objc.ID) ID { return fn(ID(self), goArgs(args...)) }

	switch m.Selector.Arity() {
	case 0:
		switch m.Returns {
		case ResultVoid:
			return func(self objc.ID, _ objc.SEL) { call(self) }, nil
		case ResultObject:
			return func(self objc.ID, _ objc.SEL) objc.ID { return objc.ID(call(self)) }, nil
		case ResultBool:
			return func(self objc.ID, _ objc.SEL) bool { return call(self) != 0 }, nil
		}
	case 1:
		switch m.Returns {
		case ResultVoid:
			return func(self objc.ID, _ objc.SEL, a objc.ID) { call(self, a) }, nil
		case ResultObject:
			return func(self objc.ID, _ objc.SEL, a objc.ID) objc.ID { return objc.ID(call(self, a)) }, nil
		case ResultBool:
			return func(self objc.ID, _ objc.SEL, a objc.ID) bool { return call(self, a) != 0 }, nil
		}
	case 2:
		switch m.Returns {
		case ResultVoid:
			return func(self objc.ID, _ objc.SEL, a, b objc.ID) { call(self, a, b) }, nil
		case ResultObject:
			return func(self objc.ID, _ objc.SEL, a, b objc.ID) objc.ID { return objc.ID(call(self, a, b)) }, nil
		case ResultBool:
			return func(self objc.ID, _ objc.SEL, a, b objc.ID) bool { return call(self, a, b) != 0 }, nil
		}
	case 3:
		switch m.Returns {
		case ResultVoid:
			return func(self objc.ID, _ objc.SEL, a, b, c objc.ID) { call(self, a, b, c) }, nil
		case ResultObject:
			return func(self objc.ID, _ objc.SEL, a, b, c objc.ID) objc.ID { return objc.ID(call(self, a, b, c)) }, nil
		case ResultBool:
			return func(self objc.ID, _ objc.SEL, a, b, c objc.ID) bool { return call(self, a, b, c) != 0 }, nil
		}
	default:
		return nil, fmt.Errorf("selector %q: unsupported arity %d", m.Selector, m.Selector.Arity())
	}
	return nil, fmt.Errorf("selector %q: unsupported return type %s", m.Selector, m.Returns)
}

// Alloc implements Runtime.
func (ObjC) Alloc(cls Class) ID {
	return ID(objc.ID(cls).Send(sel("alloc")))
}

// Send implements Runtime.
func (ObjC) Send(obj ID, s Selector, args ...ID) ID {
	return ID(objc.ID(obj).Send(sel(s), objcArgs(args)...))
}

// SendSuper implements Runtime.
func (ObjC) SendSuper(obj ID, s Selector, args ...ID) ID {
	return ID(objc.ID(obj).SendSuper(sel(s), objcArgs(args)...))
}

// Retain implements Runtime.
func (ObjC) Retain(obj ID) {
	objc.ID(obj).Send(sel("retain"))
}

// Release implements Runtime.
func (ObjC) Release(obj ID) {
	objc.ID(obj).Send(sel("release"))
}

// SetSlot implements Runtime.
func (ObjC) SetSlot(obj ID, name string, value uintptr) {
	*slotPointer(obj, name) = value
}

// Slot implements Runtime.
func (ObjC) Slot(obj ID, name string) uintptr {
	return *slotPointer(obj, name)
}

func slotPointer(obj ID, name string) *uintptr {
	ivar := objc.ID(obj).Class().InstanceVariable(name)
	if ivar == 0 {
		panic(fmt.Sprintf("native: object %#x has no slot %q", obj, name))
	}
	return (*uintptr)(unsafe.Add(unsafe.Pointer(uintptr(obj)), ivar.Offset()))
}
