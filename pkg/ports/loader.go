package ports

import (
	"context"

	"github.com/aretw0/canopy/pkg/domain"
)

// LoaderKind selects which loader of a component module is invoked.
type LoaderKind string

const (
	// LoaderServerSide runs at request time; the loader context carries the request.
	LoaderServerSide LoaderKind = "server-side"
	// LoaderStatic runs at build time.
	LoaderStatic LoaderKind = "static"
)

// Loader produces the data for one rendering.
// lctx is passed through untouched from the caller; layout is the full tree the
// rendering belongs to, for loaders that need ancestor context.
type Loader func(ctx context.Context, rendering *domain.ComponentRendering, lctx any, layout *domain.LayoutServiceData) (any, error)

// ComponentModule groups the loaders a component exposes. Either may be nil.
type ComponentModule struct {
	GetServerSideProps Loader
	GetStaticProps     Loader
}

// Loader returns the loader for kind, or nil when the module has none.
func (m *ComponentModule) Loader(kind LoaderKind) Loader {
	if m == nil {
		return nil
	}
	switch kind {
	case LoaderServerSide:
		return m.GetServerSideProps
	case LoaderStatic:
		return m.GetStaticProps
	default:
		return nil
	}
}

// ModuleResolver looks up the module registered for a component name.
// A missing module is not an error.
type ModuleResolver interface {
	Module(componentName string) (*ComponentModule, bool)
}

// ModuleResolverFunc adapts a function to ModuleResolver.
type ModuleResolverFunc func(componentName string) (*ComponentModule, bool)

// Module implements ModuleResolver.
func (f ModuleResolverFunc) Module(componentName string) (*ComponentModule, bool) {
	return f(componentName)
}
