package orchestrator

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ShayCichocki/agentnexus/internal/agent"
)

// ErrAgentNotFound indicates no agent is bound to the requested name.
var ErrAgentNotFound = errors.New("agent not found")

// Registry maps names to agent instances. It is safe for concurrent use.
type Registry struct {
	// mu protects agents.
	mu     sync.RWMutex
	agents map[string]agent.Agent
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]agent.Agent)}
}

// Register binds name to a, replacing any previous binding.
func (r *Registry) Register(name string, a agent.Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[name] = a
}

// SpawnIfAbsent binds name to an agent built by f unless name is already
// bound. It returns the bound agent and whether it was built by this call.
// At most one build happens per name even under concurrent callers.
func (r *Registry) SpawnIfAbsent(name string, f *agent.Factory) (agent.Agent, bool) {
	r.mu.RLock()
	a, ok := r.agents[name]
	r.mu.RUnlock()
	if ok {
		return a, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.agents[name]; ok {
		return a, false
	}
	a = f.Build(name)
	r.agents[name] = a
	return a, true
}

// Resolve returns the agent bound to name.
func (r *Registry) Resolve(name string) (agent.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	return a, nil
}

// Names returns the bound names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.agents))
	for n := range r.agents {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of bound names.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}

// SpawnCatalog binds every name in names using the catalog's factory for it.
// Names without a factory are returned.
func (r *Registry) SpawnCatalog(c agent.Catalog, names ...string) (missing []string) {
	for _, n := range names {
		f, ok := c.Lookup(n)
		if !ok {
			missing = append(missing, n)
			continue
		}
		r.SpawnIfAbsent(n, f)
	}
	return missing
}
