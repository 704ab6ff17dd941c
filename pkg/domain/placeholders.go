package domain

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Placeholders maps placeholder names to their renderings.
// Names keep the order in which they were stored (or appeared in the source document),
// and that order is used for traversal and for JSON output.
//
// A nil *Placeholders is valid and behaves as an empty mapping for reads.
type Placeholders struct {
	m *orderedmap.OrderedMap[string, Placeholder]
}

// NewPlaceholders creates an empty mapping.
func NewPlaceholders() *Placeholders {
	return &Placeholders{m: orderedmap.New[string, Placeholder]()}
}

// PlaceholdersOf builds a mapping from name/list pairs, keeping argument order.
// It panics on an odd number of arguments or a non-string name; it is meant for
// literals in code and tests.
func PlaceholdersOf(pairs ...any) *Placeholders {
	if len(pairs)%2 != 0 {
		panic("domain: PlaceholdersOf requires name/placeholder pairs")
	}
	p := NewPlaceholders()
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			panic("domain: PlaceholdersOf name must be a string")
		}
		nodes, _ := pairs[i+1].(Placeholder)
		p.Set(name, nodes)
	}
	return p
}

// Len returns the number of placeholders.
func (p *Placeholders) Len() int {
	if p == nil || p.m == nil {
		return 0
	}
	return p.m.Len()
}

// Get returns the renderings of a placeholder.
func (p *Placeholders) Get(name string) (Placeholder, bool) {
	if p == nil || p.m == nil {
		return nil, false
	}
	return p.m.Get(name)
}

// Set stores the renderings of a placeholder. Overwriting an existing name keeps its position.
func (p *Placeholders) Set(name string, nodes Placeholder) {
	if p.m == nil {
		p.m = orderedmap.New[string, Placeholder]()
	}
	p.m.Set(name, nodes)
}

// Names returns the placeholder names in stored order.
func (p *Placeholders) Names() []string {
	if p == nil || p.m == nil {
		return nil
	}
	names := make([]string, 0, p.m.Len())
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Range calls fn for every placeholder in stored order until fn returns false.
// fn may overwrite the current entry through Set.
func (p *Placeholders) Range(fn func(name string, nodes Placeholder) bool) {
	if p == nil || p.m == nil {
		return
	}
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Clone copies every placeholder and the renderings inside it.
func (p *Placeholders) Clone() *Placeholders {
	if p == nil {
		return nil
	}
	out := NewPlaceholders()
	p.Range(func(name string, nodes Placeholder) bool {
		out.Set(name, nodes.Clone())
		return true
	})
	return out
}

// MarshalJSON writes the placeholders as a JSON object in stored order.
func (p *Placeholders) MarshalJSON() ([]byte, error) {
	if p == nil || p.m == nil {
		return []byte("{}"), nil
	}
	return p.m.MarshalJSON()
}

// UnmarshalJSON reads a JSON object, keeping the document's key order.
func (p *Placeholders) UnmarshalJSON(data []byte) error {
	p.m = orderedmap.New[string, Placeholder]()
	return p.m.UnmarshalJSON(data)
}
