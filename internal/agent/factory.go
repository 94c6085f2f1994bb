package agent

import (
	"sort"
	"sync"

	"github.com/ShayCichocki/agentnexus/internal/decompose"
)

// Policy decides how many instances a Factory produces.
type Policy int

const (
	// PolicyPerRegistration builds a fresh instance for every registration.
	PolicyPerRegistration Policy = iota
	// PolicyShared builds one instance on first use and returns it for
	// every later registration, across names and registries.
	PolicyShared
)

// String returns the policy name.
func (p Policy) String() string {
	if p == PolicyShared {
		return "shared"
	}
	return "per-registration"
}

// Factory constructs agents.
type Factory struct {
	newAgent func(name string) Agent
	policy   Policy

	once   sync.Once
	shared Agent
}

// NewFactory creates a factory with the given policy.
func NewFactory(policy Policy, fn func(name string) Agent) *Factory {
	return &Factory{newAgent: fn, policy: policy}
}

// Policy returns the factory's instantiation policy.
func (f *Factory) Policy() Policy {
	return f.policy
}

// Build returns an agent for name according to the policy.
func (f *Factory) Build(name string) Agent {
	if f.policy != PolicyShared {
		return f.newAgent(name)
	}
	f.once.Do(func() {
		f.shared = f.newAgent(name)
	})
	return f.shared
}

// RoleDecomposer is the catalog name of the decomposer agent.
const RoleDecomposer = "decomposer"

// Catalog maps role names to factories.
type Catalog map[string]*Factory

// NewCatalog returns the built-in roles. The developer is shared; the other
// roles get one instance per registration.
func NewCatalog(deps Deps, opts ...DeveloperOption) Catalog {
	logger := deps.Logger
	return Catalog{
		decompose.RoleDeveloper: NewFactory(PolicyShared, func(name string) Agent {
			return NewDeveloper(name, deps, opts...)
		}),
		RoleDecomposer: NewFactory(PolicyPerRegistration, func(name string) Agent {
			return NewDecomposer(name, logger)
		}),
		decompose.RoleValidator: NewFactory(PolicyPerRegistration, func(name string) Agent {
			return NewValidator(name, logger)
		}),
		decompose.RoleTester: NewFactory(PolicyPerRegistration, func(name string) Agent {
			return NewTester(name, logger)
		}),
		decompose.RoleAuditor: NewFactory(PolicyPerRegistration, func(name string) Agent {
			return NewAuditor(name, logger)
		}),
	}
}

// AddCustom registers a per-registration factory for every definition.
// Definitions may not shadow built-in roles; those are returned as skipped.
func (c Catalog) AddCustom(defs []Definition, deps Deps) (skipped []string) {
	for _, def := range defs {
		if _, exists := c[def.Name]; exists {
			skipped = append(skipped, def.Name)
			continue
		}
		c[def.Name] = NewFactory(PolicyPerRegistration, func(name string) Agent {
			d := def
			d.Name = name
			return NewCustom(d, deps)
		})
	}
	return skipped
}

// Lookup returns the factory for name.
func (c Catalog) Lookup(name string) (*Factory, bool) {
	f, ok := c[name]
	return f, ok
}

// Names returns the catalog's role names, sorted.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for n := range c {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
