package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainNav_OrderAndHrefs(t *testing.T) {
	items := MainNav(7, "/7")
	require.Len(t, items, 8)

	labels := make([]string, 0, len(items))
	hrefs := make([]string, 0, len(items))
	for _, it := range items {
		labels = append(labels, it.Label)
		hrefs = append(hrefs, it.Href)
	}

	assert.Equal(t, []string{
		"Overview", "Billboards", "Categories", "Sizes",
		"Colors", "Products", "Orders", "Settings",
	}, labels)
	assert.Equal(t, []string{
		"/7", "/7/billboards", "/7/categories", "/7/sizes",
		"/7/colors", "/7/products", "/7/orders", "/7/settings",
	}, hrefs)
}

func TestMainNav_ActiveIsExactMatch(t *testing.T) {
	items := MainNav(7, "/7/products")
	for _, it := range items {
		assert.Equal(t, it.Href == "/7/products", it.Active, "item %s", it.Label)
	}
}

func TestMainNav_DetailPathActivatesNothing(t *testing.T) {
	for _, it := range MainNav(1, "/1/products/5") {
		assert.False(t, it.Active, "item %s", it.Label)
	}
}

func TestMainNav_OtherStorePathActivatesNothing(t *testing.T) {
	for _, it := range MainNav(2, "/7/orders") {
		assert.False(t, it.Active, "item %s", it.Label)
	}
}
