package runtime

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personalizedRoute = `{
	"sitecore": {
		"context": {"pageEditing": false},
		"route": {
			"name": "home",
			"placeholders": {
				"main": [
					{"uid": "a", "componentName": "Banner", "experiences": {"seg-A": null}},
					{"uid": "b", "componentName": "Hero", "experiences": {"seg-A": {"uid": "b-alt", "componentName": "Alt"}}},
					{"uid": "c", "componentName": "Text"},
					{"name": "hr"},
					{"uid": "d", "componentName": "Columns", "experiences": {"seg-B": null},
						"placeholders": {
							"left": [
								{"uid": "d1", "componentName": "Promo", "experiences": {"seg-A": {}}},
								{"uid": "d2", "componentName": "Promo"}
							]
						}
					},
					{"uid": "e", "experiences": {"seg-B": {"uid": "e-b", "componentName": "Card"}}},
					{"uid": "f", "experiences": {"seg-A": {"uid": "f-a", "componentName": "Card"}}}
				],
				"footer": [
					{"uid": "g", "componentName": "Links", "experiences": {"seg-A": {
						"uid": "g-alt", "componentName": "AltLinks",
						"placeholders": {"items": [
							{"uid": "g1", "componentName": "Link", "experiences": {"seg-A": null}},
							{"uid": "g2", "componentName": "Link"}
						]}
					}},
					"placeholders": {"items": [{"uid": "never", "componentName": "Link"}]}}
				]
			}
		}
	}
}`

func decodeLayout(t *testing.T, raw string) *domain.LayoutServiceData {
	t.Helper()
	var layout domain.LayoutServiceData
	require.NoError(t, json.Unmarshal([]byte(raw), &layout))
	return &layout
}

func TestPersonalizeLayout_SegmentA(t *testing.T) {
	layout := decodeLayout(t, personalizedRoute)

	PersonalizeLayout(layout, "seg-A")

	want := parseJSON(t, `{
		"main": [
			{"uid": "b-alt", "componentName": "Alt"},
			{"uid": "c", "componentName": "Text"},
			{"name": "hr", "contents": null, "attributes": null},
			{"uid": "d", "componentName": "Columns", "experiences": {"seg-B": null},
				"placeholders": {"left": [{"uid": "d2", "componentName": "Promo"}]}},
			{"uid": "f-a", "componentName": "Card"}
		],
		"footer": [
			{"uid": "g-alt", "componentName": "AltLinks",
				"placeholders": {"items": [{"uid": "g2", "componentName": "Link"}]}}
		]
	}`)
	if diff := cmp.Diff(want, toJSON(t, layout.Placeholders())); diff != "" {
		t.Errorf("personalized placeholders mismatch (-want +got):\n%s", diff)
	}
}

func TestPersonalizeLayout_SegmentWithoutVariants(t *testing.T) {
	layout := decodeLayout(t, personalizedRoute)

	PersonalizeLayout(layout, "seg-Z")

	main, ok := layout.Placeholders().Get("main")
	require.True(t, ok)
	var uids []string
	for _, n := range main {
		if c, ok := n.(*domain.ComponentRendering); ok {
			uids = append(uids, c.UID)
		}
	}
	// e and f have no component name, so without a variant they render nothing.
	assert.Equal(t, []string{"a", "b", "c", "d"}, uids)

	footer, _ := layout.Placeholders().Get("footer")
	require.Len(t, footer, 1)
	g := footer[0].(*domain.ComponentRendering)
	assert.Equal(t, "g", g.UID)
	items, _ := g.Placeholders.Get("items")
	require.Len(t, items, 1)
	assert.Equal(t, "never", items[0].(*domain.ComponentRendering).UID)
}

func TestPersonalizeLayout_PreservesPlaceholderOrder(t *testing.T) {
	layout := decodeLayout(t, personalizedRoute)
	PersonalizeLayout(layout, "seg-A")
	assert.Equal(t, []string{"main", "footer"}, layout.Placeholders().Names())
}

func TestPersonalizeLayout_NoPlaceholders(t *testing.T) {
	assert.NotPanics(t, func() {
		PersonalizeLayout(nil, "seg-A")
		PersonalizeLayout(&domain.LayoutServiceData{}, "seg-A")
		PersonalizeLayout(&domain.LayoutServiceData{Sitecore: domain.LayoutServiceContextData{Route: &domain.RouteData{}}}, "seg-A")
	})
}

func TestPersonalizeLayout_Idempotent(t *testing.T) {
	layout := decodeLayout(t, personalizedRoute)
	PersonalizeLayout(layout, "seg-A")
	once := toJSON(t, layout)
	PersonalizeLayout(layout, "seg-A")
	assert.Equal(t, once, toJSON(t, layout))
}

func TestPersonalizePlaceholder(t *testing.T) {
	alt := &domain.ComponentRendering{ComponentName: "Alt"}
	plain := &domain.ComponentRendering{UID: "plain", ComponentName: "Text"}
	nodes := domain.Placeholder{
		&domain.ComponentRendering{UID: "hidden", ComponentName: "Banner", Experiences: domain.Experiences{"seg-A": domain.Hidden()}},
		&domain.ComponentRendering{UID: "replaced", ComponentName: "Hero", Experiences: domain.Experiences{"seg-A": domain.Replace(alt)}},
		plain,
	}

	out := PersonalizePlaceholder(nodes, "seg-A")

	require.Len(t, out, 2)
	assert.Same(t, alt, out[0])
	assert.Same(t, plain, out[1])
}

func TestPersonalizeComponent(t *testing.T) {
	tests := []struct {
		name      string
		component *domain.ComponentRendering
		wantUID   string
		wantNil   bool
	}{
		{
			name:      "no experiences",
			component: &domain.ComponentRendering{UID: "x", ComponentName: "Text"},
			wantUID:   "x",
		},
		{
			name:      "absent variant keeps default",
			component: &domain.ComponentRendering{UID: "x", ComponentName: "Text", Experiences: domain.Experiences{"other": domain.Hidden()}},
			wantUID:   "x",
		},
		{
			name:      "absent variant without component name",
			component: &domain.ComponentRendering{UID: "x", Experiences: domain.Experiences{"other": domain.Hidden()}},
			wantNil:   true,
		},
		{
			name:      "explicit hide",
			component: &domain.ComponentRendering{UID: "x", ComponentName: "Text", Experiences: domain.Experiences{"seg": domain.Hidden()}},
			wantNil:   true,
		},
		{
			name:      "empty replacement hides",
			component: &domain.ComponentRendering{UID: "x", ComponentName: "Text", Experiences: domain.Experiences{"seg": domain.Replace(&domain.ComponentRendering{})}},
			wantNil:   true,
		},
		{
			name:      "replacement",
			component: &domain.ComponentRendering{UID: "x", ComponentName: "Text", Experiences: domain.Experiences{"seg": domain.Replace(&domain.ComponentRendering{UID: "y", ComponentName: "Alt"})}},
			wantUID:   "y",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PersonalizeComponent(tt.component, "seg")
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantUID, got.UID)
		})
	}
}

func TestEngine_PersonalizeReportsOutcomes(t *testing.T) {
	outcomes := map[string]domain.PersonalizeOutcome{}
	engine := NewEngine(WithLifecycleHooks(domain.LifecycleHooks{
		OnPersonalize: func(e *domain.PersonalizeEvent) {
			assert.Equal(t, "seg-A", e.Segment)
			assert.Equal(t, domain.EventPersonalize, e.Type)
			outcomes[e.UID] = e.Outcome
		},
	}))

	engine.Personalize(decodeLayout(t, personalizedRoute), "seg-A")

	assert.Equal(t, map[string]domain.PersonalizeOutcome{
		"a":  domain.OutcomeHidden,
		"b":  domain.OutcomeReplaced,
		"d":  domain.OutcomeKept,
		"d1": domain.OutcomeHidden,
		"e":  domain.OutcomeHidden,
		"f":  domain.OutcomeReplaced,
		"g":  domain.OutcomeReplaced,
		"g1": domain.OutcomeHidden,
	}, outcomes)
}

func TestPersonalizePlaceholder_AnyAuthoredKeyReplaces(t *testing.T) {
	for _, variant := range []string{`{"uid": ""}`, `{"fields": null}`, `{"name": "x"}`} {
		t.Run(variant, func(t *testing.T) {
			var nodes domain.Placeholder
			raw := `[{"uid": "a", "componentName": "A", "experiences": {"seg": ` + variant + `}}]`
			require.NoError(t, json.Unmarshal([]byte(raw), &nodes))

			out := PersonalizePlaceholder(nodes, "seg")

			require.Len(t, out, 1)
			c, ok := out[0].(*domain.ComponentRendering)
			require.True(t, ok)
			assert.NotEqual(t, "a", c.UID)
			assert.Empty(t, c.ComponentName)
		})
	}
}
