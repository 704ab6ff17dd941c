// Package validator checks layouts for problems that would make props or
// personalization misbehave silently.
package validator

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/hashicorp/go-multierror"
)

// ValidateLayout walks the whole tree, variants included, and reports:
//   - renderings of the default tree sharing a uid (props are keyed by uid)
//   - renderings with neither a component name nor experiences
//   - experiences authored for an empty segment
//   - component names the resolver has no module for, when resolver is not nil
//
// Every problem is reported, each prefixed with its path in the tree.
func ValidateLayout(layout *domain.LayoutServiceData, resolver ports.ModuleResolver) error {
	if layout == nil || layout.Sitecore.Route == nil {
		return nil
	}
	v := &crawler{resolver: resolver, seen: make(map[string]string)}
	v.placeholders("", layout.Sitecore.Route.Placeholders, true)
	return v.result.ErrorOrNil()
}

type crawler struct {
	resolver ports.ModuleResolver
	seen     map[string]string // uid -> first path
	result   *multierror.Error
}

func (v *crawler) fail(path, format string, args ...any) {
	v.result = multierror.Append(v.result, fmt.Errorf("%s: %s", path, fmt.Sprintf(format, args...)))
}

func (v *crawler) placeholders(prefix string, ps *domain.Placeholders, defaultTree bool) {
	ps.Range(func(name string, nodes domain.Placeholder) bool {
		for i, n := range nodes {
			c, ok := n.(*domain.ComponentRendering)
			if !ok {
				continue
			}
			v.component(prefix+name+"["+strconv.Itoa(i)+"]", c, defaultTree)
		}
		return true
	})
}

func (v *crawler) component(path string, c *domain.ComponentRendering, defaultTree bool) {
	if defaultTree && c.UID != "" {
		if first, dup := v.seen[c.UID]; dup {
			v.fail(path, "duplicate uid %q (first seen at %s)", c.UID, first)
		} else {
			v.seen[c.UID] = path
		}
	}

	if c.ComponentName == "" {
		if c.Experiences == nil {
			v.fail(path, "rendering %q has no componentName", c.UID)
		}
	} else if v.resolver != nil {
		if _, ok := v.resolver.Module(c.ComponentName); !ok {
			v.fail(path, "no module registered for component %q", c.ComponentName)
		}
	}

	v.placeholders(path+"/", c.Placeholders, defaultTree)

	segments := make([]string, 0, len(c.Experiences))
	for segment := range c.Experiences {
		segments = append(segments, segment)
	}
	sort.Strings(segments)
	for _, segment := range segments {
		if segment == "" {
			v.fail(path, "experience authored for an empty segment")
			continue
		}
		variant := c.Experiences[segment]
		if variant.Hides() {
			continue
		}
		v.component(path+"@"+segment, variant.Rendering, false)
	}
}
