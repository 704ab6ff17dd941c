package outline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/canopy/internal/runtime"
	"github.com/aretw0/canopy/pkg/domain"
)

// Overlay highlights what one segment would see.
type Overlay struct {
	Segment string
}

// GenerateMermaid produces a Mermaid flowchart of a layout tree.
// It applies semantic styling:
// - Route: ((Circle))
// - Placeholder: [/Parallelogram/]
// - Component: [Rectangle], labelled with its uid when present
// - Markup: >Flag]
// Experience variants hang off their component on dotted edges labelled with the segment.
// With an overlay, renderings the segment sees are marked active and hidden ones hidden.
func GenerateMermaid(layout *domain.LayoutServiceData, overlay *Overlay) string {
	g := &generator{overlay: overlay}
	g.sb.WriteString("graph TD\n")

	routeName := "route"
	if layout != nil && layout.Sitecore.Route != nil && layout.Sitecore.Route.Name != "" {
		routeName = layout.Sitecore.Route.Name
	}
	g.line("%s((\"%s\"))", "route", escapeLabel(routeName))
	g.placeholders("route", layout.Placeholders(), true)

	g.sb.WriteString("\n    %% Styles\n")
	g.sb.WriteString("    classDef placeholder fill:#f5f5f5,stroke:#9e9e9e,color:#000;\n")
	g.sb.WriteString("    classDef personalized stroke:#6a1b9a,stroke-width:2px,stroke-dasharray:4 2;\n")
	for _, id := range g.personalized {
		g.line("class %s personalized;", id)
	}

	if overlay != nil {
		// Force black text (color:#000) for high-contrast on light backgrounds.
		g.sb.WriteString("    classDef active fill:#c8e6c9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		g.sb.WriteString("    classDef hidden fill:#eeeeee,stroke:#bdbdbd,color:#9e9e9e;\n")
		for _, id := range g.active {
			g.line("class %s active;", id)
		}
		for _, id := range g.hidden {
			g.line("class %s hidden;", id)
		}
	}

	return g.sb.String()
}

type generator struct {
	sb      strings.Builder
	overlay *Overlay

	personalized []string
	active       []string
	hidden       []string
}

func (g *generator) line(format string, args ...any) {
	g.sb.WriteString("    ")
	g.sb.WriteString(fmt.Sprintf(format, args...))
	g.sb.WriteString("\n")
}

// placeholders draws every placeholder of a rendering. visible is false below
// renderings the overlay segment will not see.
func (g *generator) placeholders(parentID string, placeholders *domain.Placeholders, visible bool) {
	placeholders.Range(func(name string, nodes domain.Placeholder) bool {
		phID := parentID + "__" + sanitizeMermaidID(name)
		g.line("%s[/\"%s\"/]", phID, escapeLabel(name))
		g.line("class %s placeholder;", phID)
		g.line("%s --> %s", parentID, phID)

		for i, node := range nodes {
			nodeID := fmt.Sprintf("%s_%d", phID, i)
			g.node(phID, nodeID, node, visible)
		}
		return true
	})
}

func (g *generator) node(parentID, id string, node domain.RenderingNode, visible bool) {
	switch n := node.(type) {
	case *domain.HTMLElementRendering:
		g.line("%s>\"%s\"]", id, escapeLabel("<"+n.Name+">"))
		g.line("%s --> %s", parentID, id)
		g.mark(id, visible)
	case *domain.ComponentRendering:
		g.line("%s[\"%s\"]", id, componentLabel(n))
		g.line("%s --> %s", parentID, id)

		if n.Experiences == nil {
			g.mark(id, visible)
			g.placeholders(id, n.Placeholders, visible)
			return
		}

		g.personalized = append(g.personalized, id)
		var outcome domain.PersonalizeOutcome
		if g.overlay != nil {
			_, outcome = runtime.ResolveVariant(n, g.overlay.Segment)
		}
		g.mark(id, visible && outcome == domain.OutcomeKept)
		g.placeholders(id, n.Placeholders, visible && outcome == domain.OutcomeKept)
		g.variants(id, n, visible && outcome == domain.OutcomeReplaced)
	}
}

// variants draws one dotted edge per authored segment. chosen marks the overlay
// segment's replacement as visible.
func (g *generator) variants(id string, c *domain.ComponentRendering, chosen bool) {
	segments := make([]string, 0, len(c.Experiences))
	for segment := range c.Experiences {
		segments = append(segments, segment)
	}
	sort.Strings(segments)

	for i, segment := range segments {
		variant := c.Experiences[segment]
		variantID := fmt.Sprintf("%s_v%d", id, i)
		if variant.Hides() {
			g.line("%s((\"∅\"))", variantID)
		} else {
			g.line("%s[\"%s\"]", variantID, componentLabel(variant.Rendering))
		}
		g.line("%s -. \"%s\" .-> %s", id, escapeLabel(segment), variantID)

		isOverlay := g.overlay != nil && g.overlay.Segment == segment
		if variant.Hides() {
			continue
		}
		g.mark(variantID, chosen && isOverlay)
		g.placeholders(variantID, variant.Rendering.Placeholders, chosen && isOverlay)
	}
}

func (g *generator) mark(id string, visible bool) {
	if g.overlay == nil {
		return
	}
	if visible {
		g.active = append(g.active, id)
	} else {
		g.hidden = append(g.hidden, id)
	}
}

func componentLabel(c *domain.ComponentRendering) string {
	name := c.ComponentName
	if name == "" {
		name = "(experience)"
	}
	if c.UID == "" {
		return escapeLabel(name)
	}
	return escapeLabel(name) + " <br/> " + escapeLabel(c.UID)
}

// escapeLabel keeps labels inside Mermaid's double quotes.
func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
