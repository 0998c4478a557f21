// Package native models the object runtime the WebView bridge talks to.
// It defines opaque references (objects, classes, protocols, selectors), a
// plain-data class descriptor, a per-runtime class registry and the handle
// table used to carry Go-owned state across the native boundary.
package native

import "strings"

// ID is an opaque reference to a native object instance.
type ID uintptr

// Class is an opaque reference to a registered native class.
type Class uintptr

// Protocol is an opaque reference to a native protocol.
type Protocol uintptr

// Selector names a native method, e.g. "webView:didFinishNavigation:".
type Selector string

// Arity returns the number of arguments the selector takes, which is the
// number of colons in its name.
func (s Selector) Arity() int {
	return strings.Count(string(s), ":")
}

// Well-known selectors shared by every runtime implementation.
const (
	SelInit    Selector = "init"
	SelDealloc Selector = "dealloc"
)

// Runtime is the subset of the native object runtime the bridge needs.
//
// Implementations must be safe for concurrent use. Methods registered through
// RegisterClass are invoked by the runtime on whatever thread it chooses.
type Runtime interface {
	// LookupClass resolves a class by name.
	LookupClass(name string) (Class, bool)
	// LookupProtocol resolves a protocol by name.
	LookupProtocol(name string) (Protocol, bool)
	// RegisterClass defines a new class from desc and makes it available.
	RegisterClass(desc *ClassDescriptor) (Class, error)

	// Alloc creates an uninitialized instance of cls with a retain count of one.
	Alloc(cls Class) ID
	// Send dispatches sel on obj.
	Send(obj ID, sel Selector, args ...ID) ID
	// SendSuper dispatches sel on obj using the superclass implementation.
	SendSuper(obj ID, sel Selector, args ...ID) ID
	// Retain increments the retain count of obj.
	Retain(obj ID)
	// Release decrements the retain count of obj, tearing it down at zero.
	Release(obj ID)

	// SetSlot writes a pointer-sized value into a storage slot of obj.
	SetSlot(obj ID, name string, value uintptr)
	// Slot reads a pointer-sized storage slot of obj.
	Slot(obj ID, name string) uintptr
}
