package platform

import (
	"sync"

	"eventverteiler/internal/evidence"
	"eventverteiler/internal/model"
)

type adapterKey struct {
	platform model.Platform
	method   model.Method
}

// Target names one (platform, method) publish destination.
type Target struct {
	Platform model.Platform `json:"platform"`
	Method   model.Method   `json:"method"`
}

// BehaviorFunc supplies the simulated outcome per adapter. The default
// succeeds everywhere.
type BehaviorFunc func(p model.Platform, m model.Method) StubBehavior

// Registry owns the live adapter instances, keyed by (platform, method).
// Lookups are read-locked; Reconfigure replaces the whole set atomically.
type Registry struct {
	mu       sync.RWMutex
	adapters map[adapterKey]Adapter
	evidence evidence.Store
	behavior BehaviorFunc
}

type RegistryOption func(*Registry)

func WithBehavior(fn BehaviorFunc) RegistryOption {
	return func(r *Registry) { r.behavior = fn }
}

func NewRegistry(creds Credentials, ev evidence.Store, opts ...RegistryOption) *Registry {
	r := &Registry{
		evidence: ev,
		behavior: func(model.Platform, model.Method) StubBehavior { return StubBehavior{} },
	}
	for _, opt := range opts {
		opt(r)
	}
	r.adapters = r.build(creds)
	return r
}

func (r *Registry) build(creds Credentials) map[adapterKey]Adapter {
	adapters := make(map[adapterKey]Adapter)
	for p, pc := range creds {
		if !p.Valid() {
			continue
		}
		if pc.API != nil {
			adapters[adapterKey{p, model.MethodAPI}] = NewAPIAdapter(p, *pc.API, r.behavior(p, model.MethodAPI))
		}
		if pc.Automation != nil {
			adapters[adapterKey{p, model.MethodAutomation}] = NewAutomationAdapter(p, *pc.Automation, r.evidence, r.behavior(p, model.MethodAutomation))
		}
	}
	return adapters
}

// Adapter returns the live adapter for the pair, or false when the pair has
// no configured credentials. Absence is a per-target condition, not an
// error.
func (r *Registry) Adapter(p model.Platform, m model.Method) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[adapterKey{p, m}]
	return a, ok
}

// Available lists the constructed pairs in stable platform order.
func (r *Registry) Available() []Target {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var targets []Target
	for _, p := range model.Platforms() {
		for _, m := range []model.Method{model.MethodAPI, model.MethodAutomation} {
			if _, ok := r.adapters[adapterKey{p, m}]; ok {
				targets = append(targets, Target{Platform: p, Method: m})
			}
		}
	}
	return targets
}

// Reconfigure discards every adapter and rebuilds from the new credential
// set. Full replace: pairs absent from creds disappear, and any in-memory
// session state goes with them.
func (r *Registry) Reconfigure(creds Credentials) {
	rebuilt := r.build(creds)
	r.mu.Lock()
	r.adapters = rebuilt
	r.mu.Unlock()
}
