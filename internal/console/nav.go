package console

import "fmt"

// NavItem is one entry of the store navigation menu.
type NavItem struct {
	Href   string `json:"href"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// navRoutes is the fixed menu order. Every route is scoped under the
// store path prefix.
var navRoutes = []struct {
	suffix string
	label  string
}{
	{"", "Overview"},
	{"/billboards", "Billboards"},
	{"/categories", "Categories"},
	{"/sizes", "Sizes"},
	{"/colors", "Colors"},
	{"/products", "Products"},
	{"/orders", "Orders"},
	{"/settings", "Settings"},
}

// MainNav builds the navigation for one store. An item is active only
// when currentPath equals its href exactly, so "/1/products/5" lights
// up nothing.
func MainNav(storeID int64, currentPath string) []NavItem {
	base := fmt.Sprintf("/%d", storeID)
	items := make([]NavItem, 0, len(navRoutes))
	for _, r := range navRoutes {
		href := base + r.suffix
		items = append(items, NavItem{
			Href:   href,
			Label:  r.label,
			Active: currentPath == href,
		})
	}
	return items
}
