package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
)

// Mask replaces masked values.
const Mask = "***"

type piiMiddleware struct {
	next     ports.EditingDataStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks layout context values whose keys
// match one of the patterns before the snapshot is stored. The caller's snapshot is
// left untouched.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid mask pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.EditingDataStore) ports.EditingDataStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Set(ctx context.Context, key string, data *domain.EditingData) error {
	if data == nil || data.LayoutData == nil || len(m.patterns) == 0 {
		return m.next.Set(ctx, key, data)
	}

	cloned := *data
	layout := *data.LayoutData
	layout.Sitecore.Context = deepCopyMap(data.LayoutData.Sitecore.Context)
	maskMap(layout.Sitecore.Context, m.patterns)
	cloned.LayoutData = &layout

	return m.next.Set(ctx, key, &cloned)
}

func (m *piiMiddleware) Get(ctx context.Context, key string) (*domain.EditingData, error) {
	return m.next.Get(ctx, key)
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				masked = true
				break
			}
		}
		if subMap, ok := v.(map[string]any); ok && !masked {
			maskMap(subMap, patterns)
		}
	}
}
