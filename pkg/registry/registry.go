package registry

import (
	"sort"
	"sync"

	"github.com/aretw0/canopy/pkg/ports"
)

// Registry maps component names to their modules.
// It implements ports.ModuleResolver and is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*ports.ComponentModule
}

// Ensure Registry implements ModuleResolver
var _ ports.ModuleResolver = (*Registry)(nil)

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]*ports.ComponentModule),
	}
}

// Register adds a module under a component name.
// If a module with the same name exists, it is overwritten.
func (r *Registry) Register(componentName string, module *ports.ComponentModule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[componentName] = module
}

// RegisterServerSide registers (or extends) a module with a request-time loader.
func (r *Registry) RegisterServerSide(componentName string, fn ports.Loader) {
	r.update(componentName, func(m *ports.ComponentModule) { m.GetServerSideProps = fn })
}

// RegisterStatic registers (or extends) a module with a build-time loader.
func (r *Registry) RegisterStatic(componentName string, fn ports.Loader) {
	r.update(componentName, func(m *ports.ComponentModule) { m.GetStaticProps = fn })
}

func (r *Registry) update(componentName string, apply func(*ports.ComponentModule)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := &ports.ComponentModule{}
	if existing, ok := r.modules[componentName]; ok && existing != nil {
		*next = *existing
	}
	apply(next)
	r.modules[componentName] = next
}

// Module looks up the module registered for componentName.
func (r *Registry) Module(componentName string) (*ports.ComponentModule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[componentName]
	return m, ok
}

// Names returns the registered component names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
