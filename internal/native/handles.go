package native

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

// HandleTable owns Go values on behalf of native objects. A native object
// stores only the opaque key returned by Put; the key is redeemed exactly
// once when the object is torn down.
type HandleTable struct {
	values *xsync.Map[uintptr, any]
	next   atomic.Uintptr
}

// NewHandleTable creates an empty table.
func NewHandleTable() *HandleTable {
	return &HandleTable{values: xsync.NewMap[uintptr, any]()}
}

// Put stores v and returns its key. Keys are never zero and never reused.
func (t *HandleTable) Put(v any) uintptr {
	key := t.next.Add(1)
	t.values.Store(key, v)
	return key
}

// Get borrows the value stored under key without transferring ownership.
func (t *HandleTable) Get(key uintptr) (any, bool) {
	if key == 0 {
		return nil, false
	}
	return t.values.Load(key)
}

// Redeem removes and returns the value stored under key. Only the first
// redemption of a key succeeds.
func (t *HandleTable) Redeem(key uintptr) (any, bool) {
	if key == 0 {
		return nil, false
	}
	return t.values.LoadAndDelete(key)
}

// Len returns the number of values still owned by the table.
func (t *HandleTable) Len() int {
	return t.values.Size()
}
