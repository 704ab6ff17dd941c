package runtime

import (
	"time"

	"github.com/aretw0/canopy/pkg/domain"
)

// Personalize rewrites layout in place so it holds exactly what segment should see,
// reporting every decision to the configured hooks. See PersonalizeLayout.
func (e *Engine) Personalize(layout *domain.LayoutServiceData, segment string) {
	counts := map[domain.PersonalizeOutcome]int{}
	p := personalizer{
		segment: segment,
		report: func(c *domain.ComponentRendering, outcome domain.PersonalizeOutcome) {
			counts[outcome]++
			if e.hooks.OnPersonalize != nil {
				e.hooks.OnPersonalize(&domain.PersonalizeEvent{
					EventBase:     domain.EventBase{Timestamp: time.Now(), Type: domain.EventPersonalize},
					Segment:       segment,
					UID:           c.UID,
					ComponentName: c.ComponentName,
					Outcome:       outcome,
				})
			}
		},
	}
	p.layout(layout)

	e.logger.Debug("layout personalized",
		"segment", segment,
		"kept", counts[domain.OutcomeKept],
		"replaced", counts[domain.OutcomeReplaced],
		"hidden", counts[domain.OutcomeHidden],
	)
}

// PersonalizeLayout applies the segment's experiences to every placeholder of the
// layout, recursively, mutating the layout in place. A layout without placeholders is
// left untouched.
func PersonalizeLayout(layout *domain.LayoutServiceData, segment string) {
	personalizer{segment: segment}.layout(layout)
}

// PersonalizePlaceholder returns the renderings of nodes with the segment's
// experiences applied. Hidden renderings are removed; order is preserved.
func PersonalizePlaceholder(nodes domain.Placeholder, segment string) domain.Placeholder {
	p := personalizer{segment: segment}
	return WalkPlaceholder(nodes, p.visit)
}

// PersonalizeComponent returns the rendering that should stand in for c for the
// segment (c itself or its replacement, with nested placeholders personalized), or
// nil when the rendering is hidden.
func PersonalizeComponent(c *domain.ComponentRendering, segment string) *domain.ComponentRendering {
	p := personalizer{segment: segment}
	next, keep := p.visit(c)
	if !keep {
		return nil
	}
	WalkPlaceholders(next.Placeholders, p.visit)
	return next
}

type personalizer struct {
	segment string
	report  func(*domain.ComponentRendering, domain.PersonalizeOutcome)
}

func (p personalizer) layout(layout *domain.LayoutServiceData) {
	placeholders := layout.Placeholders()
	if placeholders.Len() == 0 {
		return
	}
	WalkPlaceholders(placeholders, p.visit)
}

// visit applies ResolveVariant and reports the outcome of renderings that carry experiences.
func (p personalizer) visit(c *domain.ComponentRendering) (*domain.ComponentRendering, bool) {
	next, outcome := ResolveVariant(c, p.segment)
	if c.Experiences != nil {
		p.record(c, outcome)
	}
	return next, outcome != domain.OutcomeHidden
}

// ResolveVariant decides what stands in for c for the segment without touching the
// tree: c itself (kept), the authored replacement (replaced), or nothing (hidden).
// Renderings without experiences are always kept.
func ResolveVariant(c *domain.ComponentRendering, segment string) (*domain.ComponentRendering, domain.PersonalizeOutcome) {
	if c.Experiences == nil {
		return c, domain.OutcomeKept
	}

	variant, authored := c.Experiences[segment]
	switch {
	case !authored && c.ComponentName == "":
		// The default content of a pure experience container is nothing.
		return nil, domain.OutcomeHidden
	case authored && variant.Hides():
		return nil, domain.OutcomeHidden
	case authored:
		return variant.Rendering, domain.OutcomeReplaced
	default:
		return c, domain.OutcomeKept
	}
}

func (p personalizer) record(c *domain.ComponentRendering, outcome domain.PersonalizeOutcome) {
	if p.report != nil {
		p.report(c, outcome)
	}
}
