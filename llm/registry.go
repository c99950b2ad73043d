package llm

import (
	"sync"
	"sync/atomic"

	"github.com/llmrouter/core/llm/config"
)

// Registry resolves a logical model name to an ordered list of bindings and
// selects one according to a configured policy. For any logical name with
// more than one binding, the order reflects registration order.
type Registry struct {
	mu       sync.RWMutex
	policy   config.Policy
	bindings map[string][]Binding // logical name -> ordered bindings
	cursors  map[string]*atomic.Uint64
}

// NewRegistry creates an empty registry using the given selection policy.
func NewRegistry(policy config.Policy) *Registry {
	if policy == "" {
		policy = config.PolicyFirst
	}
	return &Registry{
		policy:   policy,
		bindings: make(map[string][]Binding),
		cursors:  make(map[string]*atomic.Uint64),
	}
}

// NewRegistryFromConfig builds a registry from a normalized Config, wiring
// every model name and alias to the provider that registered it.
func NewRegistryFromConfig(cfg config.Config) *Registry {
	r := NewRegistry(cfg.Policy)
	for _, entry := range cfg.Entries {
		for _, model := range entry.Models {
			price := PriceTable{InputPer1K: model.InputPer1K, OutputPer1K: model.OutputPer1K}
			r.Add(entry.Key, model.Name, price)
			for _, alias := range model.Aliases {
				r.addAlias(alias, Binding{ProviderKey: entry.Key, Model: model.Name, Price: price})
			}
		}
	}
	return r
}

// Add registers a provider's concrete model under its own name.
func (r *Registry) Add(providerKey, model string, price PriceTable) {
	r.addAlias(model, Binding{ProviderKey: providerKey, Model: model, Price: price})
}

// AddAlias registers an additional logical name (alias) for an existing
// binding. Aliases may map to multiple bindings across providers.
func (r *Registry) AddAlias(alias, providerKey, model string, price PriceTable) {
	r.addAlias(alias, Binding{ProviderKey: providerKey, Model: model, Price: price})
}

func (r *Registry) addAlias(logicalName string, b Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[logicalName] = append(r.bindings[logicalName], b)
	if _, ok := r.cursors[logicalName]; !ok {
		r.cursors[logicalName] = &atomic.Uint64{}
	}
}

// Resolve selects a binding for the given logical name per the registry's
// policy. Returns a ConfigError if the name is unknown.
func (r *Registry) Resolve(logicalName string) (Binding, error) {
	r.mu.RLock()
	list := r.bindings[logicalName]
	cursor := r.cursors[logicalName]
	r.mu.RUnlock()

	if len(list) == 0 {
		return Binding{}, NewError(KindConfigError, "unknown logical model name: "+logicalName)
	}

	switch r.policy {
	case config.PolicyRoundRobin:
		idx := cursor.Add(1) - 1
		return list[idx%uint64(len(list))], nil
	case config.PolicyCheapest:
		return cheapest(list), nil
	default: // config.PolicyFirst
		return list[0], nil
	}
}

// cheapest returns the binding with the minimum combined per-1K price,
// ties broken by registration order (the first minimum encountered).
func cheapest(list []Binding) Binding {
	best := list[0]
	bestCost := best.Price.InputPer1K + best.Price.OutputPer1K
	for _, b := range list[1:] {
		cost := b.Price.InputPer1K + b.Price.OutputPer1K
		if cost < bestCost {
			best, bestCost = b, cost
		}
	}
	return best
}

// Bindings returns the registered bindings for a logical name, for
// inspection/testing. The returned slice is a copy.
func (r *Registry) Bindings(logicalName string) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.bindings[logicalName]
	out := make([]Binding, len(list))
	copy(out, list)
	return out
}

// resolveBinding implements direct-addressing bypass: when req.Provider is
// set, the registry is skipped entirely and the binding is constructed from
// the request fields plus the provider's own price table.
func resolveBinding(registry *Registry, providers map[string]Provider, req *ChatRequest) (Binding, Provider, error) {
	if req.Provider != "" {
		p, ok := providers[req.Provider]
		if !ok {
			return Binding{}, nil, NewError(KindConfigError, "unknown provider: "+req.Provider)
		}
		price, _ := p.PriceTable(req.Model)
		return Binding{ProviderKey: req.Provider, Model: req.Model, Price: price}, p, nil
	}

	if registry == nil {
		return Binding{}, nil, NewError(KindConfigError, "no registry configured; direct addressing required")
	}
	b, err := registry.Resolve(req.Model)
	if err != nil {
		return Binding{}, nil, err
	}
	p, ok := providers[b.ProviderKey]
	if !ok {
		return Binding{}, nil, NewError(KindConfigError, "binding references unregistered provider: "+b.ProviderKey)
	}
	return b, p, nil
}
