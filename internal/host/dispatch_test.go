package host

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/wkview/internal/native"
	"github.com/bnema/wkview/internal/native/nativetest"
)

// mainLoop queues scheduled objects the way the main run loop would.
type mainLoop struct {
	rt    *nativetest.Runtime
	mu    sync.Mutex
	queue []native.ID
}

func (l *mainLoop) schedule(obj native.ID) {
	l.rt.Retain(obj)
	l.mu.Lock()
	l.queue = append(l.queue, obj)
	l.mu.Unlock()
}

func (l *mainLoop) drain() {
	l.mu.Lock()
	queue := l.queue
	l.queue = nil
	l.mu.Unlock()
	for _, obj := range queue {
		l.rt.Send(obj, selRun)
		l.rt.Release(obj)
	}
}

func (l *mainLoop) discard() {
	l.mu.Lock()
	queue := l.queue
	l.queue = nil
	l.mu.Unlock()
	for _, obj := range queue {
		l.rt.Release(obj)
	}
}

func newLoop() (*mainLoop, *Dispatcher) {
	rt := nativetest.New()
	loop := &mainLoop{rt: rt}
	return loop, DispatcherFor(context.Background(), rt, loop.schedule)
}

func TestDispatcher_RunsOnDrainInOrder(t *testing.T) {
	loop, d := newLoop()

	var got []int
	for i := 0; i < 3; i++ {
		d.Post(func() { got = append(got, i) })
	}

	assert.Empty(t, got, "nothing runs before the loop turns")
	assert.Equal(t, 3, d.Pending())

	loop.drain()

	assert.Equal(t, []int{0, 1, 2}, got)
	assert.Zero(t, d.Pending())
	assert.Zero(t, loop.rt.Live())
	assert.Equal(t, 1, loop.rt.Registrations())
}

func TestDispatcher_ConcurrentPost(t *testing.T) {
	loop, d := newLoop()

	const n = 32
	var mu sync.Mutex
	ran := 0
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Post(func() {
				mu.Lock()
				ran++
				mu.Unlock()
			})
		}()
	}
	wg.Wait()
	loop.drain()

	assert.Equal(t, n, ran)
	assert.Equal(t, 1, loop.rt.Registrations())
}

func TestDispatcher_DroppedCallIsReclaimed(t *testing.T) {
	loop, d := newLoop()

	ran := false
	d.Post(func() { ran = true })
	loop.discard()

	assert.False(t, ran)
	assert.Zero(t, d.Pending())
	assert.Zero(t, loop.rt.Live())
}

func TestDispatcherFor_SharedPerRuntime(t *testing.T) {
	rt := nativetest.New()
	a := DispatcherFor(context.Background(), rt, func(native.ID) {})
	b := DispatcherFor(context.Background(), rt, func(native.ID) {})
	require.Same(t, a, b)
}

func TestAppDelegate(t *testing.T) {
	rt := nativetest.New(protocolAppDelegate)
	calls := 0
	obj := newAppDelegate(context.Background(), rt, func() { calls++ })

	assert.Equal(t, native.ID(1), rt.Send(obj, selShouldTerminateAfterLastWindowClosed, 0))

	rt.Send(obj, selWillTerminate, 0)
	rt.Send(obj, selWillTerminate, 0)
	assert.Equal(t, 1, calls, "terminate hook runs once")

	rt.Release(obj)
	_, ok := appDelegates.Load(obj)
	assert.False(t, ok)
	assert.Zero(t, rt.Live())
}

func TestAppDelegateSpec_ReturnTypes(t *testing.T) {
	spec := appDelegateSpec(nativetest.New(protocolAppDelegate))
	require.NoError(t, spec.Validate())

	want := map[native.Selector]native.Result{
		selShouldTerminateAfterLastWindowClosed: native.ResultBool,
		selWillTerminate:                        native.ResultVoid,
		native.SelDealloc:                       native.ResultVoid,
	}
	for _, m := range spec.Methods {
		assert.Equal(t, want[m.Selector], m.Returns, string(m.Selector))
	}
}

func TestAppDelegate_MissingProtocolPanics(t *testing.T) {
	rt := nativetest.New()
	assert.Panics(t, func() {
		newAppDelegate(context.Background(), rt, nil)
	})
}
