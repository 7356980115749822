// Package di provides a minimal dependency-injection container: named
// singletons, either registered eagerly (Register) or lazily via a factory
// that resolves (and memoizes) on first access (RegisterToken).
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry is the read side of the container, handed to factories so
// they can pull their own dependencies by name.
type ServiceRegistry interface {
	Get(name string) any
}

// Container is the full container: register eagerly-known values (config,
// logger, ...) and lazily-constructed services (token -> factory).
type Container interface {
	ServiceRegistry
	Register(name string, value any)
	RegisterFactory(name string, factory func(ServiceRegistry) any)
}

type container struct {
	mu        sync.Mutex
	values    map[string]any
	factories map[string]func(ServiceRegistry) any
	resolving map[string]bool
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{
		values:    make(map[string]any),
		factories: make(map[string]func(ServiceRegistry) any),
		resolving: make(map[string]bool),
	}
}

func (c *container) Register(name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] = value
}

func (c *container) RegisterFactory(name string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[name] = factory
}

func (c *container) Get(name string) any {
	c.mu.Lock()
	if v, ok := c.values[name]; ok {
		c.mu.Unlock()
		return v
	}
	factory, ok := c.factories[name]
	if !ok {
		c.mu.Unlock()
		panic(fmt.Sprintf("di: no service registered for %q", name))
	}
	if c.resolving[name] {
		c.mu.Unlock()
		panic(fmt.Sprintf("di: circular dependency resolving %q", name))
	}
	c.resolving[name] = true
	c.mu.Unlock()

	value := factory(c)

	c.mu.Lock()
	c.values[name] = value
	delete(c.factories, name)
	delete(c.resolving, name)
	c.mu.Unlock()

	return value
}

// RegisterToken registers a typed, lazily-resolved singleton factory under
// token. The factory runs at most once; its result is memoized.
func RegisterToken[T any](c Container, token string, factory func(sr ServiceRegistry) T) {
	c.RegisterFactory(token, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// MustGet resolves token and asserts it to type T, panicking on a type
// mismatch or missing registration. Modules use this to build their own
// typed GetXxx(sr) accessors on top of the untyped registry.
func MustGet[T any](sr ServiceRegistry, token string) T {
	v := sr.Get(token)
	t, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has unexpected type %T", token, v))
	}
	return t
}
