package dsl

import (
	"fmt"

	"github.com/aretw0/canopy/pkg/domain"
)

// Builder manages the layout construction.
type Builder struct {
	route        domain.RouteData
	context      map[string]any
	placeholders []*PlaceholderBuilder
	uniqueUIDs   bool
}

// New creates a new layout builder for the named route.
func New(routeName string) *Builder {
	return &Builder{route: domain.RouteData{Name: routeName}}
}

// ItemID sets the route item id.
func (b *Builder) ItemID(id string) *Builder {
	b.route.ItemID = id
	return b
}

// Field sets a route field.
func (b *Builder) Field(name string, value any) *Builder {
	if b.route.Fields == nil {
		b.route.Fields = make(map[string]any)
	}
	b.route.Fields[name] = value
	return b
}

// Context sets a request context value.
func (b *Builder) Context(key string, value any) *Builder {
	if b.context == nil {
		b.context = make(map[string]any)
	}
	b.context[key] = value
	return b
}

// UniqueUIDs makes Build reject layouts where two renderings of the default tree
// share a uid. Without it duplicates are kept, and props for them resolve last
// write wins.
func (b *Builder) UniqueUIDs() *Builder {
	b.uniqueUIDs = true
	return b
}

// Placeholder returns the builder for a top-level placeholder, creating it in
// declaration order if needed.
func (b *Builder) Placeholder(name string) *PlaceholderBuilder {
	for _, p := range b.placeholders {
		if p.name == name {
			return p
		}
	}
	p := &PlaceholderBuilder{name: name}
	b.placeholders = append(b.placeholders, p)
	return p
}

// Build assembles the layout. With UniqueUIDs it fails on a repeated uid.
func (b *Builder) Build() (*domain.LayoutServiceData, error) {
	route := b.route
	route.Placeholders = buildPlaceholders(b.placeholders)

	if b.uniqueUIDs {
		if err := checkUIDs(route.Placeholders, make(map[string]struct{})); err != nil {
			return nil, err
		}
	}

	return &domain.LayoutServiceData{
		Sitecore: domain.LayoutServiceContextData{
			Context: b.context,
			Route:   &route,
		},
	}, nil
}

// MustBuild is Build for fixtures known to be valid. It panics on error.
func (b *Builder) MustBuild() *domain.LayoutServiceData {
	layout, err := b.Build()
	if err != nil {
		panic(err)
	}
	return layout
}

func buildPlaceholders(ps []*PlaceholderBuilder) *domain.Placeholders {
	if len(ps) == 0 {
		return nil
	}
	out := domain.NewPlaceholders()
	for _, p := range ps {
		out.Set(p.name, p.build())
	}
	return out
}

func checkUIDs(ps *domain.Placeholders, seen map[string]struct{}) error {
	var err error
	ps.Range(func(name string, nodes domain.Placeholder) bool {
		for _, n := range nodes {
			c, ok := n.(*domain.ComponentRendering)
			if !ok {
				continue
			}
			if c.UID != "" {
				if _, dup := seen[c.UID]; dup {
					err = fmt.Errorf("duplicate rendering uid %q in placeholder %q", c.UID, name)
					return false
				}
				seen[c.UID] = struct{}{}
			}
			if err = checkUIDs(c.Placeholders, seen); err != nil {
				return false
			}
		}
		return true
	})
	return err
}
