package dsl

import "github.com/aretw0/canopy/pkg/domain"

// Node is anything that can sit in a placeholder.
type Node interface {
	build() domain.RenderingNode
}

// PlaceholderBuilder collects the renderings of one placeholder.
type PlaceholderBuilder struct {
	name  string
	nodes []Node
}

// Add appends renderings to the placeholder.
func (p *PlaceholderBuilder) Add(nodes ...Node) *PlaceholderBuilder {
	p.nodes = append(p.nodes, nodes...)
	return p
}

func (p *PlaceholderBuilder) build() domain.Placeholder {
	out := make(domain.Placeholder, 0, len(p.nodes))
	for _, n := range p.nodes {
		out = append(out, n.build())
	}
	return out
}

// ComponentBuilder provides a fluent API for configuring a component rendering.
type ComponentBuilder struct {
	rendering    domain.ComponentRendering
	placeholders []*PlaceholderBuilder
	variants     map[string]*ComponentBuilder
	hidden       map[string]bool
}

// Component starts a rendering of the named component.
func Component(name string) *ComponentBuilder {
	return &ComponentBuilder{rendering: domain.ComponentRendering{ComponentName: name}}
}

// UID sets the rendering uid. Renderings without one are skipped by data loading.
func (c *ComponentBuilder) UID(uid string) *ComponentBuilder {
	c.rendering.UID = uid
	return c
}

// DataSource sets the rendering's data source item.
func (c *ComponentBuilder) DataSource(ds string) *ComponentBuilder {
	c.rendering.DataSource = ds
	return c
}

// Param sets a rendering parameter.
func (c *ComponentBuilder) Param(key, value string) *ComponentBuilder {
	if c.rendering.Params == nil {
		c.rendering.Params = make(map[string]string)
	}
	c.rendering.Params[key] = value
	return c
}

// Field sets a content field.
func (c *ComponentBuilder) Field(name string, value any) *ComponentBuilder {
	if c.rendering.Fields == nil {
		c.rendering.Fields = make(map[string]any)
	}
	c.rendering.Fields[name] = value
	return c
}

// Placeholder adds a nested placeholder holding nodes.
func (c *ComponentBuilder) Placeholder(name string, nodes ...Node) *ComponentBuilder {
	c.placeholders = append(c.placeholders, &PlaceholderBuilder{name: name, nodes: nodes})
	return c
}

// Variant replaces the rendering with v for segment.
func (c *ComponentBuilder) Variant(segment string, v *ComponentBuilder) *ComponentBuilder {
	if c.variants == nil {
		c.variants = make(map[string]*ComponentBuilder)
	}
	delete(c.hidden, segment)
	c.variants[segment] = v
	return c
}

// Hide removes the rendering for segment.
func (c *ComponentBuilder) Hide(segment string) *ComponentBuilder {
	if c.hidden == nil {
		c.hidden = make(map[string]bool)
	}
	delete(c.variants, segment)
	c.hidden[segment] = true
	return c
}

// Rendering returns the built component.
func (c *ComponentBuilder) Rendering() *domain.ComponentRendering {
	out := c.rendering.Clone()
	out.Placeholders = buildPlaceholders(c.placeholders)
	if len(c.variants)+len(c.hidden) > 0 {
		out.Experiences = make(domain.Experiences, len(c.variants)+len(c.hidden))
		for segment := range c.hidden {
			out.Experiences[segment] = domain.Hidden()
		}
		for segment, v := range c.variants {
			out.Experiences[segment] = domain.Replace(v.Rendering())
		}
	}
	return out
}

func (c *ComponentBuilder) build() domain.RenderingNode {
	return c.Rendering()
}

// MarkupBuilder configures a raw HTML element.
type MarkupBuilder struct {
	element domain.HTMLElementRendering
}

// Markup starts a raw element with the given tag name.
func Markup(name string) *MarkupBuilder {
	return &MarkupBuilder{element: domain.HTMLElementRendering{Name: name}}
}

// Contents sets the element's inner markup.
func (m *MarkupBuilder) Contents(html string) *MarkupBuilder {
	m.element.Contents = &html
	return m
}

// Attr sets an attribute.
func (m *MarkupBuilder) Attr(key, value string) *MarkupBuilder {
	if m.element.Attributes == nil {
		m.element.Attributes = make(map[string]string)
	}
	m.element.Attributes[key] = value
	return m
}

func (m *MarkupBuilder) build() domain.RenderingNode {
	el := m.element
	if m.element.Attributes != nil {
		el.Attributes = make(map[string]string, len(m.element.Attributes))
		for k, v := range m.element.Attributes {
			el.Attributes[k] = v
		}
	}
	return &el
}
