package container

import "sync"

// ServiceProvider registers a group of related services.
//
// Register only binds; it must not resolve other services. Boot runs once
// every provider is registered and may resolve anything.
//
//	type RuleSetServiceProvider struct{ container.BaseProvider }
//
//	func (p *RuleSetServiceProvider) Register(app *container.Container) {
//	    app.Singleton("rulesets", func(c *container.Container) any {
//	        return rulesets.NewStore()
//	    })
//	}
type ServiceProvider interface {
	Register(app *Container)
	Boot(app *Container)

	// Provides lists the abstracts a deferred provider registers. Its
	// Register must bind every one of them.
	Provides() []string

	// IsDeferred providers are registered and booted on the first Make of
	// one of their Provides abstracts.
	IsDeferred() bool
}

// BaseProvider supplies no-op Boot, Provides and IsDeferred.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container)  {}
func (p *BaseProvider) Provides() []string { return nil }
func (p *BaseProvider) IsDeferred() bool   { return false }

// ProviderRegistry registers and boots providers against one container.
type ProviderRegistry struct {
	app *Container

	mu         sync.Mutex
	eager      []ServiceProvider
	deferred   []ServiceProvider
	loaded     []ServiceProvider // deferred providers already registered
	once       map[ServiceProvider]*sync.Once
	registered map[ServiceProvider]bool
	booted     bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		once:       make(map[ServiceProvider]*sync.Once),
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider. Eager providers are registered at once, and
// booted at once when the registry already booted. Registering the same
// provider twice is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		r.deferred = append(r.deferred, provider)
		r.once[provider] = &sync.Once{}
		r.mu.Unlock()
		r.deferProvider(provider)
		return
	}

	r.eager = append(r.eager, provider)
	booted := r.booted
	r.mu.Unlock()

	provider.Register(r.app)
	if booted {
		provider.Boot(r.app)
	}
}

// deferProvider binds a placeholder for every abstract of a deferred provider.
// The first Make registers the provider for real, which rebinds the
// abstracts, and resolves again.
func (r *ProviderRegistry) deferProvider(provider ServiceProvider) {
	for _, abstract := range provider.Provides() {
		abs := abstract
		r.app.Bind(abs, func(c *Container) any {
			r.load(provider)
			return c.Make(abs)
		})
	}
}

func (r *ProviderRegistry) load(provider ServiceProvider) {
	r.mu.Lock()
	once := r.once[provider]
	r.mu.Unlock()

	once.Do(func() {
		provider.Register(r.app)
		r.mu.Lock()
		r.loaded = append(r.loaded, provider)
		booted := r.booted
		r.mu.Unlock()
		if booted {
			provider.Boot(r.app)
		}
	})
}

// Boot calls Boot on every eager provider and on deferred providers loaded
// so far. Later calls are no-ops.
func (r *ProviderRegistry) Boot() {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return
	}
	r.booted = true
	pending := append(append([]ServiceProvider(nil), r.eager...), r.loaded...)
	r.mu.Unlock()

	for _, provider := range pending {
		provider.Boot(r.app)
	}
}

// Booted reports whether Boot has run.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns the eager providers in registration order.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}

// Deferred returns the deferred providers in registration order.
func (r *ProviderRegistry) Deferred() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.deferred...)
}
