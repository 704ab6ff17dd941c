package domain

// LayoutServiceData is the root document of a layout tree.
type LayoutServiceData struct {
	Sitecore LayoutServiceContextData `json:"sitecore"`
}

// LayoutServiceContextData holds the request context and the resolved route.
// Route is nil when the layout service found no item for the request.
type LayoutServiceContextData struct {
	Context map[string]any `json:"context,omitempty"`
	Route   *RouteData     `json:"route"`
}

// RouteData describes the page item and its top-level placeholders.
type RouteData struct {
	Name         string         `json:"name"`
	DisplayName  string         `json:"displayName,omitempty"`
	ItemID       string         `json:"itemId,omitempty"`
	ItemLanguage string         `json:"itemLanguage,omitempty"`
	ItemVersion  int            `json:"itemVersion,omitempty"`
	LayoutID     string         `json:"layoutId,omitempty"`
	TemplateID   string         `json:"templateId,omitempty"`
	TemplateName string         `json:"templateName,omitempty"`
	DatabaseName string         `json:"databaseName,omitempty"`
	Fields       map[string]any `json:"fields,omitempty"`
	Placeholders *Placeholders  `json:"placeholders,omitempty"`
}

// Placeholders returns the route's top-level placeholders, or nil when the layout has no route.
func (l *LayoutServiceData) Placeholders() *Placeholders {
	if l == nil || l.Sitecore.Route == nil {
		return nil
	}
	return l.Sitecore.Route.Placeholders
}

// Clone returns a copy of the layout whose tree structure can be mutated without
// affecting the receiver. Field and context values are shared.
func (l *LayoutServiceData) Clone() *LayoutServiceData {
	if l == nil {
		return nil
	}
	out := &LayoutServiceData{
		Sitecore: LayoutServiceContextData{
			Context: copyMap(l.Sitecore.Context),
		},
	}
	if r := l.Sitecore.Route; r != nil {
		route := *r
		route.Fields = copyMap(r.Fields)
		route.Placeholders = r.Placeholders.Clone()
		out.Sitecore.Route = &route
	}
	return out
}

func copyMap[V any](in map[string]V) map[string]V {
	if in == nil {
		return nil
	}
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
