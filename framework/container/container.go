package container

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotBound is returned by TryMake for an abstract nothing was registered under.
var ErrNotBound = errors.New("container: no binding registered")

// Factory builds a concrete value from the container.
type Factory func(c *Container) any

// Extender decorates a resolved instance.
type Extender func(instance any, c *Container) any

type binding struct {
	factory   Factory
	singleton bool
}

// Container is the service container. Services are registered under
// string keys ("abstracts") and built by explicit factories.
type Container struct {
	mu sync.RWMutex

	bindings  map[string]*binding
	instances map[string]any
	aliases   map[string]string
	extenders map[string][]Extender
	tags      map[string][]string

	// building serialises singleton construction per key.
	building map[string]*sync.Mutex
}

// New creates an empty container bound to itself under "container".
func New() *Container {
	c := &Container{
		bindings:  make(map[string]*binding),
		instances: make(map[string]any),
		aliases:   make(map[string]string),
		extenders: make(map[string][]Extender),
		tags:      make(map[string][]string),
		building:  make(map[string]*sync.Mutex),
	}
	c.Instance("container", c)
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient factory: every Make builds a new value.
//
//	c.Bind("validation.builder", func(c *container.Container) any {
//	    return container.Resolve[*validation.Engine](c, "validation").Values(nil)
//	})
func (c *Container) Bind(abstract string, factory Factory) {
	c.bind(abstract, factory, false)
}

// Singleton registers a factory whose result is cached after the first Make.
//
//	c.Singleton("validation.registry", func(c *container.Container) any {
//	    return validation.NewDefaultRegistry()
//	})
func (c *Container) Singleton(abstract string, factory Factory) {
	c.bind(abstract, factory, true)
}

func (c *Container) bind(abstract string, factory Factory, singleton bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	// A rebind drops the cached instance so the new factory is used.
	delete(c.instances, key)
	c.bindings[key] = &binding{factory: factory, singleton: singleton}
}

// Instance registers a pre-built value. Extenders already registered for
// the abstract are applied to it.
//
//	c.Instance("config", cfg)
func (c *Container) Instance(abstract string, instance any) {
	c.mu.Lock()
	key := c.canonical(abstract)
	delete(c.bindings, key)
	c.mu.Unlock()

	instance = c.applyExtenders(key, instance)

	c.mu.Lock()
	c.instances[key] = instance
	c.mu.Unlock()
}

// Alias registers an alternative name for an abstract.
//
//	c.Alias("validation", "validator")
func (c *Container) Alias(abstract, alias string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if abstract == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", abstract))
	}
	c.aliases[alias] = c.canonical(abstract)
}

// Extend decorates the instance of an abstract. An already resolved
// singleton is decorated in place.
//
//	c.Extend("validation.registry", func(instance any, c *container.Container) any {
//	    reg := instance.(*validation.Registry)
//	    reg.Register("even", even)
//	    return reg
//	})
func (c *Container) Extend(abstract string, fn Extender) {
	c.mu.Lock()
	key := c.canonical(abstract)
	c.extenders[key] = append(c.extenders[key], fn)
	inst, resolved := c.instances[key]
	c.mu.Unlock()

	if resolved {
		extended := fn(inst, c)
		c.mu.Lock()
		c.instances[key] = extended
		c.mu.Unlock()
	}
}

// Tag groups abstracts under a name.
//
//	c.Tag([]string{"rules.documents", "rules.network"}, "validation.rules")
func (c *Container) Tag(abstracts []string, tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags[tag] = append(c.tags[tag], abstracts...)
}

// Tagged resolves every abstract registered under tag, in tagging order.
func (c *Container) Tagged(tag string) []any {
	c.mu.RLock()
	abstracts := append([]string(nil), c.tags[tag]...)
	c.mu.RUnlock()

	out := make([]any, 0, len(abstracts))
	for _, abs := range abstracts {
		out = append(out, c.Make(abs))
	}
	return out
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Make resolves an abstract. It panics when nothing is registered under it;
// use TryMake where a missing service is expected.
func (c *Container) Make(abstract string) any {
	inst, err := c.TryMake(abstract)
	if err != nil {
		panic(err.Error())
	}
	return inst
}

// TryMake resolves an abstract, returning ErrNotBound when nothing is
// registered under it.
func (c *Container) TryMake(abstract string) (any, error) {
	c.mu.RLock()
	key := c.canonical(abstract)
	inst, ok := c.instances[key]
	b, bound := c.bindings[key]
	c.mu.RUnlock()

	if ok {
		return inst, nil
	}
	if !bound {
		return nil, fmt.Errorf("%w for [%s]", ErrNotBound, abstract)
	}
	if !b.singleton {
		return c.build(key, b.factory), nil
	}

	lock := c.buildLock(key)
	lock.Lock()
	defer lock.Unlock()

	c.mu.RLock()
	inst, ok = c.instances[key]
	c.mu.RUnlock()
	if ok {
		return inst, nil
	}

	inst = c.build(key, b.factory)
	c.mu.Lock()
	// Skip caching when the binding was replaced while building.
	if c.bindings[key] == b {
		c.instances[key] = inst
	}
	c.mu.Unlock()
	return inst, nil
}

func (c *Container) build(key string, f Factory) any {
	return c.applyExtenders(key, f(c))
}

func (c *Container) buildLock(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.building[key]
	if !ok {
		l = &sync.Mutex{}
		c.building[key] = l
	}
	return l
}

// applyExtenders runs without mu held so extenders may resolve other
// services.
func (c *Container) applyExtenders(key string, instance any) any {
	c.mu.RLock()
	exts := append([]Extender(nil), c.extenders[key]...)
	c.mu.RUnlock()
	for _, ext := range exts {
		instance = ext(instance, c)
	}
	return instance
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound reports whether an abstract has a binding or an instance.
func (c *Container) Bound(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := c.canonical(abstract)
	_, hasBinding := c.bindings[key]
	_, hasInstance := c.instances[key]
	return hasBinding || hasInstance
}

// Resolved reports whether an abstract holds a cached instance.
func (c *Container) Resolved(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[c.canonical(abstract)]
	return ok
}

// Forget removes the binding and the instance of an abstract.
func (c *Container) Forget(abstract string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	delete(c.bindings, key)
	delete(c.instances, key)
}

// Keys returns every registered abstract, sorted.
func (c *Container) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]bool, len(c.bindings)+len(c.instances))
	for k := range c.bindings {
		seen[k] = true
	}
	for k := range c.instances {
		seen[k] = true
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// canonical must be called with mu held.
func (c *Container) canonical(abstract string) string {
	if target, ok := c.aliases[abstract]; ok {
		return target
	}
	return abstract
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve calls Make and type-asserts the result, panicking on a mismatch.
//
//	engine := container.Resolve[*validation.Engine](c, "validation")
func Resolve[T any](c *Container, abstract string) T {
	instance := c.Make(abstract)
	typed, ok := instance.(T)
	if !ok {
		panic(fmt.Sprintf("container: Resolve[%T]: [%s] resolved to %T", *new(T), abstract, instance))
	}
	return typed
}

// TryResolve is Resolve without panics: ok is false when the abstract is
// unbound or holds another type.
func TryResolve[T any](c *Container, abstract string) (T, bool) {
	instance, err := c.TryMake(abstract)
	if err != nil {
		var zero T
		return zero, false
	}
	typed, ok := instance.(T)
	return typed, ok
}
