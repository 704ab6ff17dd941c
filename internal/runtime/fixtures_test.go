package runtime

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/stretchr/testify/require"
)

// rendering builds a component; the name defaults to "name<uid>".
func rendering(uid, name string) *domain.ComponentRendering {
	if name == "" {
		name = "name" + uid
	}
	return &domain.ComponentRendering{UID: uid, ComponentName: name}
}

func withPlaceholders(c *domain.ComponentRendering, pairs ...any) *domain.ComponentRendering {
	c.Placeholders = domain.PlaceholdersOf(pairs...)
	return c
}

// propsLayout is the nested tree used by the aggregation tests:
//
//	x11ph: x11, x12{ x12ph: x13, x14; x13ph: x15{ x14ph: x16, x161, x17, <no uid> } }
//	x21ph: x21, x22{ x22ph: x23 }, x24
func propsLayout() *domain.LayoutServiceData {
	return &domain.LayoutServiceData{
		Sitecore: domain.LayoutServiceContextData{
			Context: map[string]any{},
			Route: &domain.RouteData{
				Name: "route1",
				Placeholders: domain.PlaceholdersOf(
					"x11ph", domain.Placeholder{
						rendering("x11", ""),
						withPlaceholders(rendering("x12", ""),
							"x12ph", domain.Placeholder{rendering("x13", ""), rendering("x14", "")},
							"x13ph", domain.Placeholder{
								withPlaceholders(rendering("x15", ""),
									"x14ph", domain.Placeholder{
										rendering("x16", "MyCustomComponent"),
										rendering("x161", "MyCustomComponent"),
										rendering("x17", ""),
										rendering("", "MyCustomComponent"),
									},
								),
							},
						),
					},
					"x21ph", domain.Placeholder{
						rendering("x21", ""),
						withPlaceholders(rendering("x22", ""),
							"x22ph", domain.Placeholder{rendering("x23", "MyCustomComponent")},
						),
						rendering("x24", ""),
					},
				),
			},
		},
	}
}

func resolved(value any) ports.Loader {
	return func(ctx context.Context, _ *domain.ComponentRendering, _ any, _ *domain.LayoutServiceData) (any, error) {
		return value, nil
	}
}

func rejected(err error) ports.Loader {
	return func(ctx context.Context, _ *domain.ComponentRendering, _ any, _ *domain.LayoutServiceData) (any, error) {
		return nil, err
	}
}

func resolverOf(modules map[string]*ports.ComponentModule) ports.ModuleResolver {
	return ports.ModuleResolverFunc(func(name string) (*ports.ComponentModule, bool) {
		m, ok := modules[name]
		return m, ok
	})
}

// toJSON decodes the JSON form of v into generic values for structural comparison.
func toJSON(t *testing.T, v any) any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func parseJSON(t *testing.T, s string) any {
	t.Helper()
	var out any
	require.NoError(t, json.Unmarshal([]byte(s), &out))
	return out
}
