package native_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/wkview/internal/native"
	"github.com/bnema/wkview/internal/native/nativetest"
)

func testSpec(name string) func() native.ClassSpec {
	return func() native.ClassSpec {
		return native.ClassSpec{
			Name:       name,
			Superclass: nativetest.RootClass,
			Protocols:  []string{"TestProtocol"},
			Methods: []native.Method{
				{Selector: "ping", Fn: func(self native.ID, _ []native.ID) native.ID { return self }, Returns: native.ResultObject},
			},
			Slots: []string{"state"},
		}
	}
}

func TestGetOrRegister_RegistersOnce(t *testing.T) {
	rt := nativetest.New("TestProtocol")
	reg := native.NewClassRegistry(context.Background(), rt)

	specCalls := 0
	spec := func() native.ClassSpec {
		specCalls++
		return testSpec("Once")()
	}

	first := reg.GetOrRegister("key", spec)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, reg.GetOrRegister("key", spec))
	}

	assert.Equal(t, 1, rt.Registrations())
	assert.Equal(t, 1, specCalls)
	assert.Equal(t, 1, reg.Len())
}

func TestGetOrRegister_DistinctKeys(t *testing.T) {
	rt := nativetest.New("TestProtocol")
	reg := native.NewClassRegistry(context.Background(), rt)

	a := reg.GetOrRegister("a", testSpec("ClassA"))
	b := reg.GetOrRegister("b", testSpec("ClassB"))

	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, rt.Registrations())
	assert.Equal(t, 2, reg.Len())
}

func TestGetOrRegister_ConcurrentFirstUse(t *testing.T) {
	rt := nativetest.New("TestProtocol")
	rt.RegisterDelay = 20 * time.Millisecond
	reg := native.NewClassRegistry(context.Background(), rt)

	const workers = 32
	results := make([]native.Class, workers)

	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer done.Done()
			start.Wait()
			results[i] = reg.GetOrRegister("shared", testSpec("Concurrent"))
		}(i)
	}
	start.Done()
	done.Wait()

	require.Equal(t, 1, rt.Registrations())
	for _, cls := range results {
		assert.Equal(t, results[0], cls)
	}
}

func TestGetOrRegister_DescriptorCarriesSpec(t *testing.T) {
	rt := nativetest.New("TestProtocol")
	reg := native.NewClassRegistry(context.Background(), rt)

	cls := reg.GetOrRegister("key", testSpec("Described"))
	desc, ok := rt.Descriptor(cls)
	require.True(t, ok)

	proto, _ := rt.LookupProtocol("TestProtocol")
	root, _ := rt.LookupClass(nativetest.RootClass)
	assert.Equal(t, "Described", desc.Name)
	assert.Equal(t, root, desc.Superclass)
	assert.Equal(t, []native.Protocol{proto}, desc.Protocols)
	assert.Equal(t, []string{"state"}, desc.Slots)

	m, ok := desc.Method("ping")
	require.True(t, ok)
	assert.Equal(t, native.ResultObject, m.Returns)
}

func TestValidate_ReturnTypes(t *testing.T) {
	spec := testSpec("Returns")()
	spec.Methods = append(spec.Methods,
		native.Method{Selector: "isReady", Returns: native.ResultBool, Fn: func(native.ID, []native.ID) native.ID { return 7 }},
		native.Method{Selector: "odd", Returns: native.Result(9), Fn: func(native.ID, []native.ID) native.ID { return 0 }},
	)

	err := spec.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"odd" has unknown return type Result(9)`)
	assert.NotContains(t, err.Error(), "isReady")
}

func TestSend_ConvertsResults(t *testing.T) {
	rt := nativetest.New("TestProtocol")
	reg := native.NewClassRegistry(context.Background(), rt)
	cls := reg.GetOrRegister("key", func() native.ClassSpec {
		spec := testSpec("Converted")()
		spec.Methods = append(spec.Methods,
			native.Method{Selector: "isReady", Returns: native.ResultBool, Fn: func(native.ID, []native.ID) native.ID { return 7 }},
			native.Method{Selector: "touch", Fn: func(native.ID, []native.ID) native.ID { return 7 }},
		)
		return spec
	})
	obj := rt.Send(rt.Alloc(cls), native.SelInit)

	assert.Equal(t, native.ID(1), rt.Send(obj, "isReady"))
	assert.Zero(t, rt.Send(obj, "touch"))
	assert.Equal(t, obj, rt.Send(obj, "ping"))
	rt.Release(obj)
}

func TestGetOrRegister_MissingProtocolPanics(t *testing.T) {
	rt := nativetest.New()
	reg := native.NewClassRegistry(context.Background(), rt)

	assert.Panics(t, func() {
		reg.GetOrRegister("key", testSpec("NoProtocol"))
	})
	assert.Equal(t, 0, rt.Registrations())
}

func TestGetOrRegister_FailureIsSticky(t *testing.T) {
	rt := nativetest.New()
	reg := native.NewClassRegistry(context.Background(), rt)

	var first any
	func() {
		defer func() { first = recover() }()
		reg.GetOrRegister("key", testSpec("Sticky"))
	}()
	require.NotNil(t, first)

	assert.PanicsWithValue(t, first, func() {
		reg.GetOrRegister("key", testSpec("Sticky"))
	})
	assert.Equal(t, 0, rt.Registrations())
}

func TestGetOrRegister_MissingSuperclassPanics(t *testing.T) {
	rt := nativetest.New("TestProtocol")
	reg := native.NewClassRegistry(context.Background(), rt)

	assert.Panics(t, func() {
		reg.GetOrRegister("key", func() native.ClassSpec {
			spec := testSpec("Orphan")()
			spec.Superclass = "NSMissing"
			return spec
		})
	})
}

func TestGetOrRegister_RuntimeRefusalPanics(t *testing.T) {
	rt := nativetest.New("TestProtocol")
	reg := native.NewClassRegistry(context.Background(), rt)
	reg.GetOrRegister("first", testSpec("Taken"))

	// A second key reusing the same class name is refused by the runtime.
	assert.Panics(t, func() {
		reg.GetOrRegister("second", testSpec("Taken"))
	})
}

func TestRegistryFor_SharedPerRuntime(t *testing.T) {
	rt := nativetest.New("TestProtocol")
	other := nativetest.New("TestProtocol")

	assert.Same(t, native.RegistryFor(context.Background(), rt), native.RegistryFor(context.Background(), rt))
	assert.NotSame(t, native.RegistryFor(context.Background(), rt), native.RegistryFor(context.Background(), other))
}

func TestClassSpecValidate(t *testing.T) {
	noop := func(native.ID, []native.ID) native.ID { return 0 }

	assert.NoError(t, testSpec("Valid")().Validate())

	err := native.ClassSpec{
		Name:       "Broken",
		Superclass: "NSObject",
		Methods: []native.Method{
			{Selector: "a", Fn: noop},
			{Selector: "a", Fn: noop},
			{Selector: "b"},
		},
		Slots: []string{"s", "s"},
	}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate selector "a"`)
	assert.Contains(t, err.Error(), `selector "b" has no implementation`)
	assert.Contains(t, err.Error(), `duplicate slot "s"`)

	assert.Error(t, native.ClassSpec{}.Validate())
}

func TestSelectorArity(t *testing.T) {
	assert.Equal(t, 0, native.SelDealloc.Arity())
	assert.Equal(t, 2, native.Selector("webView:didFinishNavigation:").Arity())
}
