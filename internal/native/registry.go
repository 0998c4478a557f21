package native

import (
	"context"
	"fmt"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/rs/zerolog"

	"github.com/bnema/wkview/internal/logging"
)

type classEntry struct {
	once  sync.Once
	class Class
	// failure is the panic value of a failed registration, raised again for
	// every later caller.
	failure any
}

type lookupEntry struct {
	once  sync.Once
	ref   uintptr
	found bool
}

// ClassRegistry registers classes on a Runtime at most once per key.
//
// Keys are arbitrary comparable values; the WebView bridge uses the pair of
// handler types. Superclass and protocol lookups are cached for the lifetime
// of the registry.
type ClassRegistry struct {
	rt      Runtime
	classes *xsync.Map[any, *classEntry]
	lookups *xsync.Map[string, *lookupEntry]
	logger  zerolog.Logger
}

// NewClassRegistry creates an empty registry bound to rt.
func NewClassRegistry(ctx context.Context, rt Runtime) *ClassRegistry {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ClassRegistry{
		rt:      rt,
		classes: xsync.NewMap[any, *classEntry](),
		lookups: xsync.NewMap[string, *lookupEntry](),
		logger:  logging.FromContext(ctx).With().Str("component", "class-registry").Logger(),
	}
}

var registries = xsync.NewMap[Runtime, *ClassRegistry]()

// RegistryFor returns the registry shared by every caller using rt. The
// first call for a runtime creates it.
func RegistryFor(ctx context.Context, rt Runtime) *ClassRegistry {
	if reg, ok := registries.Load(rt); ok {
		return reg
	}
	reg, _ := registries.LoadOrStore(rt, NewClassRegistry(ctx, rt))
	return reg
}

// GetOrRegister returns the class registered for key, registering it from
// spec on first use. Concurrent callers for the same key block until the
// first registration completes and then observe the same class.
//
// It panics when the runtime cannot satisfy the spec: a missing superclass
// or protocol means the host environment is broken. A key whose
// registration failed keeps panicking with the same value.
func (r *ClassRegistry) GetOrRegister(key any, spec func() ClassSpec) Class {
	entry, ok := r.classes.Load(key)
	if !ok {
		entry, _ = r.classes.LoadOrStore(key, &classEntry{})
	}
	entry.once.Do(func() {
		defer func() {
			if p := recover(); p != nil {
				entry.failure = p
			}
		}()
		entry.class = r.register(spec())
	})
	if entry.failure != nil {
		panic(entry.failure)
	}
	return entry.class
}

// Len returns the number of keys registered or attempted.
func (r *ClassRegistry) Len() int {
	return r.classes.Size()
}

func (r *ClassRegistry) register(spec ClassSpec) Class {
	if err := spec.Validate(); err != nil {
		r.fatal(err)
	}

	super, ok := r.resolve("class", spec.Superclass)
	if !ok {
		r.fatal(fmt.Errorf("superclass %q not found for %q", spec.Superclass, spec.Name))
	}

	protocols := make([]Protocol, 0, len(spec.Protocols))
	for _, name := range spec.Protocols {
		proto, ok := r.resolve("protocol", name)
		if !ok {
			r.fatal(fmt.Errorf("protocol %q not found for %q", name, spec.Name))
		}
		protocols = append(protocols, Protocol(proto))
	}

	desc := &ClassDescriptor{
		Name:       spec.Name,
		Superclass: Class(super),
		Protocols:  protocols,
		Methods:    spec.Methods,
		Slots:      spec.Slots,
	}

	cls, err := r.rt.RegisterClass(desc)
	if err != nil {
		r.fatal(fmt.Errorf("register class %q: %w", spec.Name, err))
	}

	r.logger.Debug().
		Str("class", spec.Name).
		Int("methods", len(spec.Methods)).
		Int("protocols", len(protocols)).
		Msg("native class registered")

	return cls
}

func (r *ClassRegistry) resolve(kind, name string) (uintptr, bool) {
	key := kind + ":" + name
	entry, ok := r.lookups.Load(key)
	if !ok {
		entry, _ = r.lookups.LoadOrStore(key, &lookupEntry{})
	}
	entry.once.Do(func() {
		switch kind {
		case "class":
			cls, found := r.rt.LookupClass(name)
			entry.ref, entry.found = uintptr(cls), found
		case "protocol":
			proto, found := r.rt.LookupProtocol(name)
			entry.ref, entry.found = uintptr(proto), found
		}
	})
	return entry.ref, entry.found
}

func (r *ClassRegistry) fatal(err error) {
	r.logger.Error().Err(err).Msg("native class registration failed")
	panic(err)
}
