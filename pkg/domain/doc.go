/*
Package domain contains the layout tree model processed by the canopy engine.

A layout is a route owning named placeholders. Each placeholder is an ordered list of
rendering nodes, and a component rendering may in turn own further placeholders, so the
shape repeats to arbitrary depth. The package is kept free of I/O; everything else in the
module depends on it.

# Key Entities

  - LayoutServiceData: the root document returned by the layout service.
  - RenderingNode: a sealed sum type with two variants, ComponentRendering and HTMLElementRendering.
  - Placeholders: an ordered placeholder-name → Placeholder mapping (stored order is preserved).
  - Experiences / Variant: segment-keyed alternate content used by personalization.
  - ComponentPropsCollection: the flat uid → props (or shaped failure) map produced by data loading.

Personalization mutates a tree in place. Callers that need the original afterwards should
take a Clone first.
*/
package domain
