package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// VariantKind tells what an authored experience does to its rendering.
type VariantKind int

const (
	// VariantHidden removes the rendering for the segment (authored as null or {}).
	VariantHidden VariantKind = iota + 1
	// VariantReplace swaps the rendering for Variant.Rendering.
	VariantReplace
)

func (k VariantKind) String() string {
	switch k {
	case VariantHidden:
		return "hidden"
	case VariantReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Variant is the content authored for one segment.
// A segment with no entry in Experiences has no variant at all, which is distinct
// from a hidden one.
type Variant struct {
	Kind      VariantKind
	Rendering *ComponentRendering
}

// Hidden returns a variant hiding the rendering.
func Hidden() Variant {
	return Variant{Kind: VariantHidden}
}

// Replace returns a variant substituting the rendering with c.
// A nil or zero-value c yields a hidden variant, the same as authoring {}.
func Replace(c *ComponentRendering) Variant {
	if c == nil || c.isEmpty() {
		return Hidden()
	}
	return Variant{Kind: VariantReplace, Rendering: c}
}

// Hides reports whether the variant removes its rendering.
func (v Variant) Hides() bool {
	return v.Kind != VariantReplace || v.Rendering == nil
}

// Experiences maps segment ids to authored variants.
type Experiences map[string]Variant

// MarshalJSON writes hidden variants as null and replacements as objects.
func (e Experiences) MarshalJSON() ([]byte, error) {
	if e == nil {
		return []byte("null"), nil
	}
	out := make(map[string]*ComponentRendering, len(e))
	for segment, v := range e {
		if v.Hides() {
			out[segment] = nil
			continue
		}
		out[segment] = v.Rendering
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads null and {} as hidden and any other object as a replacement.
// Values of other JSON kinds are rejected.
func (e *Experiences) UnmarshalJSON(data []byte) error {
	var raws map[string]json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	if raws == nil {
		*e = nil
		return nil
	}

	out := make(Experiences, len(raws))
	for segment, raw := range raws {
		v, err := decodeVariant(raw)
		if err != nil {
			return fmt.Errorf("experience %q: %w", segment, err)
		}
		out[segment] = v
	}
	*e = out
	return nil
}

func decodeVariant(raw json.RawMessage) (Variant, error) {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return Hidden(), nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return Variant{}, fmt.Errorf("expected object or null: %w", err)
	}
	if len(probe) == 0 {
		return Hidden(), nil
	}

	// Any key makes a replacement, even when none of them maps to a rendering field.
	var c ComponentRendering
	if err := json.Unmarshal(trimmed, &c); err != nil {
		return Variant{}, err
	}
	return Variant{Kind: VariantReplace, Rendering: &c}, nil
}
