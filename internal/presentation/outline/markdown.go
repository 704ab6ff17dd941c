package outline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/canopy/internal/runtime"
	"github.com/aretw0/canopy/pkg/domain"
)

// GenerateMarkdown renders the layout as a nested Markdown list. Without an overlay
// every authored variant is listed under its rendering. With one, the tree shows
// what the segment gets: replacements stand in for their originals and hidden
// renderings are struck through.
func GenerateMarkdown(layout *domain.LayoutServiceData, overlay *Overlay) string {
	var sb strings.Builder

	routeName := "route"
	if layout != nil && layout.Sitecore.Route != nil && layout.Sitecore.Route.Name != "" {
		routeName = layout.Sitecore.Route.Name
	}
	fmt.Fprintf(&sb, "# %s\n\n", routeName)
	if overlay != nil {
		fmt.Fprintf(&sb, "Segment: `%s`\n\n", overlay.Segment)
	}

	if layout.Placeholders().Len() == 0 {
		sb.WriteString("_No placeholders._\n")
		return sb.String()
	}

	md := &markdown{sb: &sb, overlay: overlay}
	md.placeholders(layout.Placeholders(), 0)
	return sb.String()
}

type markdown struct {
	sb      *strings.Builder
	overlay *Overlay
}

func (m *markdown) item(depth int, format string, args ...any) {
	m.sb.WriteString(strings.Repeat("  ", depth))
	m.sb.WriteString("- ")
	fmt.Fprintf(m.sb, format, args...)
	m.sb.WriteString("\n")
}

func (m *markdown) placeholders(ps *domain.Placeholders, depth int) {
	ps.Range(func(name string, nodes domain.Placeholder) bool {
		m.item(depth, "**%s**", name)
		for _, node := range nodes {
			m.node(node, depth+1)
		}
		return true
	})
}

func (m *markdown) node(node domain.RenderingNode, depth int) {
	switch n := node.(type) {
	case *domain.HTMLElementRendering:
		m.item(depth, "`<%s>`", n.Name)
	case *domain.ComponentRendering:
		if m.overlay != nil && n.Experiences != nil {
			m.resolved(n, depth)
			return
		}
		m.item(depth, "%s", label(n))
		m.placeholders(n.Placeholders, depth+1)
		if m.overlay == nil {
			m.variants(n, depth+1)
		}
	}
}

func (m *markdown) resolved(c *domain.ComponentRendering, depth int) {
	chosen, outcome := runtime.ResolveVariant(c, m.overlay.Segment)
	switch outcome {
	case domain.OutcomeHidden:
		m.item(depth, "~~%s~~ _hidden_", label(c))
	case domain.OutcomeReplaced:
		m.item(depth, "%s _replaces %s_", label(chosen), label(c))
		m.placeholders(chosen.Placeholders, depth+1)
	default:
		m.item(depth, "%s", label(c))
		m.placeholders(c.Placeholders, depth+1)
	}
}

func (m *markdown) variants(c *domain.ComponentRendering, depth int) {
	segments := make([]string, 0, len(c.Experiences))
	for segment := range c.Experiences {
		segments = append(segments, segment)
	}
	sort.Strings(segments)

	for _, segment := range segments {
		variant := c.Experiences[segment]
		if variant.Hides() {
			m.item(depth, "_%s_: hidden", segment)
			continue
		}
		m.item(depth, "_%s_: %s", segment, label(variant.Rendering))
		m.placeholders(variant.Rendering.Placeholders, depth+1)
	}
}

func label(c *domain.ComponentRendering) string {
	name := c.ComponentName
	if name == "" {
		name = "(experience)"
	}
	if c.UID == "" {
		return "`" + name + "`"
	}
	return "`" + name + "` " + c.UID
}
