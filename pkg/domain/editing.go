package domain

// EditingData is the snapshot an editor posts so a preview render can pick it up later.
type EditingData struct {
	Path       string             `json:"path"`
	Language   string             `json:"language,omitempty"`
	LayoutData *LayoutServiceData `json:"layoutData,omitempty"`
	Dictionary map[string]string  `json:"dictionary,omitempty"`
}

// PreviewData locates a stored EditingData snapshot.
type PreviewData struct {
	Key       string `json:"key"`
	ServerURL string `json:"serverUrl"`
}

// ItemID returns the route item id of the snapshot, or "" when there is none.
func (d *EditingData) ItemID() string {
	if d == nil || d.LayoutData == nil || d.LayoutData.Sitecore.Route == nil {
		return ""
	}
	return d.LayoutData.Sitecore.Route.ItemID
}

// Clone returns a copy whose layout tree and dictionary can be changed independently.
func (d *EditingData) Clone() *EditingData {
	if d == nil {
		return nil
	}
	out := *d
	out.LayoutData = d.LayoutData.Clone()
	out.Dictionary = copyMap(d.Dictionary)
	return &out
}
