package runtime

import "github.com/aretw0/canopy/pkg/domain"

// Visitor decides the fate of one component rendering. It returns the rendering that
// takes the node's place (the original or a replacement) and false to drop the node.
type Visitor func(c *domain.ComponentRendering) (*domain.ComponentRendering, bool)

// WalkPlaceholder applies visit to every component rendering of nodes, depth first.
//
// Markup nodes are copied through without being visited. Dropped nodes are removed.
// A surviving rendering's own placeholders are walked right after it is visited,
// before its next sibling, and rewritten in place.
//
// The input order is preserved. When nothing in the list is dropped or replaced the
// input slice itself is returned, so a pass that keeps everything performs no writes.
func WalkPlaceholder(nodes domain.Placeholder, visit Visitor) domain.Placeholder {
	out, _ := walkPlaceholder(nodes, visit)
	return out
}

// WalkPlaceholders walks every placeholder of p in stored order, overwriting the
// entries whose lists changed. A nil or empty p is a no-op.
func WalkPlaceholders(p *domain.Placeholders, visit Visitor) {
	p.Range(func(name string, nodes domain.Placeholder) bool {
		if out, changed := walkPlaceholder(nodes, visit); changed {
			p.Set(name, out)
		}
		return true
	})
}

func walkPlaceholder(nodes domain.Placeholder, visit Visitor) (domain.Placeholder, bool) {
	// out stays nil until the first drop or replacement (copy on write).
	var out domain.Placeholder

	for i, node := range nodes {
		c, ok := node.(*domain.ComponentRendering)
		if !ok {
			if out != nil {
				out = append(out, node)
			}
			continue
		}

		next, keep := visit(c)
		if keep && next != nil {
			WalkPlaceholders(next.Placeholders, visit)
		}

		if keep && next == c {
			if out != nil {
				out = append(out, c)
			}
			continue
		}

		if out == nil {
			out = make(domain.Placeholder, i, len(nodes))
			copy(out, nodes[:i])
		}
		if keep && next != nil {
			out = append(out, next)
		}
	}

	if out == nil {
		return nodes, false
	}
	return out, true
}
