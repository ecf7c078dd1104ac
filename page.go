package qubesite

// PageContext identifies the page being rendered.
type PageContext struct {
	PageID string
	Title  string
}

// MenuEntry is a single item in the site navigation.
type MenuEntry struct {
	Label       string
	TargetID    string
	IndentLevel int
}

// Current reports whether the entry points at the given page.
func (m MenuEntry) Current(pageID string) bool {
	return m.TargetID == pageID
}

// HRef is the relative link to the entry's page.
func (m MenuEntry) HRef() string {
	return m.TargetID + ".htm"
}

// Menu is the navigation shown on every page, in display order. There is no
// download entry, releases are published on a page outside of the menu.
var Menu = []MenuEntry{
	{Label: "Main", TargetID: "index", IndentLevel: 1},
	{Label: "Howto", TargetID: "howto", IndentLevel: 1},
}
