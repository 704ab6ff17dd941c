package domain

import (
	"encoding/json"
	"fmt"
)

// RenderingNode is a node inside a placeholder.
// The set of implementations is closed: *ComponentRendering and *HTMLElementRendering.
type RenderingNode interface {
	renderingNode()
}

// ComponentRendering is one instance of a named component.
type ComponentRendering struct {
	// UID identifies the rendering. Data loading only considers renderings that carry one.
	UID           string            `json:"uid,omitempty"`
	ComponentName string            `json:"componentName,omitempty"`
	DataSource    string            `json:"dataSource,omitempty"`
	Params        map[string]string `json:"params,omitempty"`
	Fields        map[string]any    `json:"fields,omitempty"`
	Placeholders  *Placeholders     `json:"placeholders,omitempty"`
	Experiences   Experiences       `json:"experiences,omitempty"`
}

// HTMLElementRendering is raw markup. The engine never looks inside it.
type HTMLElementRendering struct {
	Name       string            `json:"name"`
	Type       string            `json:"type,omitempty"`
	Contents   *string           `json:"contents"`
	Attributes map[string]string `json:"attributes"`
}

func (*ComponentRendering) renderingNode()   {}
func (*HTMLElementRendering) renderingNode() {}

// isEmpty reports whether no field of the rendering is set.
func (c *ComponentRendering) isEmpty() bool {
	return c.UID == "" &&
		c.ComponentName == "" &&
		c.DataSource == "" &&
		c.Params == nil &&
		c.Fields == nil &&
		c.Placeholders == nil &&
		c.Experiences == nil
}

// Clone copies the rendering and its nested placeholders.
func (c *ComponentRendering) Clone() *ComponentRendering {
	if c == nil {
		return nil
	}
	out := *c
	out.Params = copyMap(c.Params)
	out.Fields = copyMap(c.Fields)
	out.Placeholders = c.Placeholders.Clone()
	if c.Experiences != nil {
		out.Experiences = make(Experiences, len(c.Experiences))
		for segment, v := range c.Experiences {
			out.Experiences[segment] = Variant{Kind: v.Kind, Rendering: v.Rendering.Clone()}
		}
	}
	return &out
}

// Placeholder is the ordered list of renderings held by one named slot.
type Placeholder []RenderingNode

// Clone copies every rendering in the list. Markup nodes are copied by value.
func (p Placeholder) Clone() Placeholder {
	if p == nil {
		return nil
	}
	out := make(Placeholder, 0, len(p))
	for _, node := range p {
		switch n := node.(type) {
		case *ComponentRendering:
			out = append(out, n.Clone())
		case *HTMLElementRendering:
			el := *n
			el.Attributes = copyMap(n.Attributes)
			out = append(out, &el)
		}
	}
	return out
}

// UnmarshalJSON decodes the list, choosing the variant of each entry by its keys:
// an entry with "componentName", "uid" or "experiences" is a component, one with only
// "name" is markup, anything else is a component. Null entries are dropped.
func (p *Placeholder) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}

	nodes := make(Placeholder, 0, len(raws))
	for i, raw := range raws {
		node, err := decodeRenderingNode(raw)
		if err != nil {
			return fmt.Errorf("rendering %d: %w", i, err)
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}
	*p = nodes
	return nil
}

func decodeRenderingNode(raw json.RawMessage) (RenderingNode, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	if probe == nil {
		return nil, nil
	}

	_, hasComponentName := probe["componentName"]
	_, hasUID := probe["uid"]
	_, hasExperiences := probe["experiences"]
	_, hasName := probe["name"]

	if hasName && !hasComponentName && !hasUID && !hasExperiences {
		var el HTMLElementRendering
		if err := json.Unmarshal(raw, &el); err != nil {
			return nil, err
		}
		return &el, nil
	}

	var c ComponentRendering
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
