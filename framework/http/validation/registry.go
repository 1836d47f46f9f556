package validation

import (
	"sort"
	"sync"
)

// Template decides one rule token for one value.
//
// It returns an empty string when the value passes and the failure message
// otherwise. A non-nil error means the rule itself is malformed (for example
// "min:abc") and aborts the whole Build like an unknown rule does.
//
// By convention every template except `required` passes an absent value.
type Template func(value Value, field, param, rule string, tokens []Token) (string, error)

// Registry maps rule names to templates. Lookups are exact and
// case-sensitive. It is safe for concurrent use, but templates registered
// while a Build is running may or may not be seen by it, so register
// everything at start-up.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]Template
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]Template)}
}

// NewDefaultRegistry returns a registry holding the built-in catalog.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	registerBuiltins(r)
	return r
}

// Register inserts or overwrites the template under name.
//
//	registry.Register("even", func(v validation.Value, field, _, _ string, _ []validation.Token) (string, error) {
//	    if n, ok := v.Number(); ok && int(n)%2 != 0 {
//	        return fmt.Sprintf("Field '%s' must be even", field), nil
//	    }
//	    return "", nil
//	})
func (r *Registry) Register(name string, t Template) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[name] = t
}

// Lookup returns the template registered under name.
func (r *Registry) Lookup(name string) (Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[name]
	return t, ok
}

// Names returns the registered rule names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.templates))
	for n := range r.templates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy, handy for isolated test registries.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := NewRegistry()
	for n, t := range r.templates {
		c.templates[n] = t
	}
	return c
}

// Predicate wraps a plain check into a Template that only runs on present
// values. A false check fails the rule with msg(field, param).
func Predicate(check func(v Value, param string) bool, msg func(field, param string) string) Template {
	return func(v Value, field, param, _ string, _ []Token) (string, error) {
		if v.Absent() || check(v, param) {
			return "", nil
		}
		return msg(field, param), nil
	}
}
