// Package container is the service container and service-provider system
// the application is assembled with.
//
// Go has no constructor reflection, so every service is built by an
// explicit factory registered under a string key.
//
// # Lifecycle
//
//  1. c := container.New()
//  2. registry.Register(&providers.ValidationServiceProvider{})
//  3. registry.Boot(), after which everything may be resolved
//  4. serve requests
//
// # Bindings
//
//	c.Bind("key", factory)       // new value per Make
//	c.Singleton("key", factory)  // built once
//	c.Instance("config", cfg)    // pre-built value
//	c.Alias("validation", "validator")
//
// # Resolving
//
//	raw := c.Make("validation")
//	engine := container.Resolve[*validation.Engine](c, "validation")
//	store, ok := container.TryResolve[*rulesets.Store](c, "rulesets")
//
// # Tags and extenders
//
// Tags group abstracts; extenders decorate a service when it is built. The
// validation provider combines both to install rule packs:
//
//	c.Tag([]string{"rules.documents"}, "validation.rules")
//	c.Extend("validation.registry", func(inst any, c *container.Container) any { ... })
//
// # Deferred providers
//
// A provider whose IsDeferred returns true is only registered when one of
// its Provides abstracts is first resolved.
package container
