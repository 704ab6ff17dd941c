/*
Package dsl provides a fluent Go builder for layout trees.

It is handy for tests, fixtures and for services that assemble layouts in code
rather than receiving them from a layout service.

Example usage:

	b := dsl.New("home")

	b.Placeholder("main").
		Add(dsl.Component("Hero").UID("hero").Field("title", "Welcome").
			Variant("returning", dsl.Component("Hero").UID("hero-back").Field("title", "Welcome back")).
			Hide("bots")).
		Add(dsl.Markup("hr"))

	layout, err := b.Build()
	// ... pass layout to canopy's Engine.Personalize or FetchServerSideProps
*/
package dsl
