/*
Package canopy processes page layout trees: nested placeholders of component renderings,
as returned by a headless layout service.

It offers two operations over one tree.

# Component props

Every rendering that has a uid and whose component exposes a loader gets its loader
invoked. All loaders run concurrently and the call returns once each has settled. The
result maps uid to the loader's data; a loader that fails leaves a
domain.ComponentPropsError with the message

	Error during preload data for component <uid>: <message>

under its uid instead of failing the whole call. The tree is only read.

# Personalization

A rendering may carry experiences: variants keyed by audience segment. For one target
segment each such rendering is hidden (variant null or empty), replaced (variant
authored) or kept (no variant authored). Renderings that only exist to hold
experiences, i.e. without a component name, disappear when the segment has no variant.
The tree is rewritten in place and the procedure continues into the placeholders of
whichever rendering survived.

# Usage

	package main

	import (
		"context"
		"encoding/json"
		"log"
		"os"

		"github.com/aretw0/canopy"
		"github.com/aretw0/canopy/pkg/domain"
		"github.com/aretw0/canopy/pkg/registry"
	)

	func main() {
		modules := registry.NewRegistry()
		modules.RegisterServerSide("Hero", func(ctx context.Context, c *domain.ComponentRendering, req any, layout *domain.LayoutServiceData) (any, error) {
			return map[string]string{"title": "Hello"}, nil
		})

		eng, err := canopy.New(canopy.WithResolver(modules))
		if err != nil {
			log.Fatal(err)
		}

		var layout domain.LayoutServiceData
		if err := json.NewDecoder(os.Stdin).Decode(&layout); err != nil {
			log.Fatal(err)
		}

		eng.Personalize(&layout, "returning-visitor")
		props, err := eng.FetchServerSideProps(context.Background(), &layout, nil)
		if err != nil {
			log.Fatal(err)
		}
		log.Println(props)
	}
*/
package canopy
