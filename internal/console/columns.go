package console

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Column kinds tell the grid and the exporters how to render a cell.
const (
	ColText  = "text"
	ColDate  = "date"
	ColMoney = "money"
	ColBool  = "bool"
	ColColor = "color"
)

// Column describes one data grid column.
type Column struct {
	Key    string `json:"key"`
	Header string `json:"header"`
	Kind   string `json:"kind"`
}

var columnSets = map[string][]Column{
	ResourceBillboards.Name: {
		{Key: "label", Header: "Label", Kind: ColText},
		{Key: "created_at", Header: "Date", Kind: ColDate},
	},
	ResourceCategories.Name: {
		{Key: "name", Header: "Name", Kind: ColText},
		{Key: "billboard_label", Header: "Billboard", Kind: ColText},
		{Key: "created_at", Header: "Date", Kind: ColDate},
	},
	ResourceSizes.Name: {
		{Key: "name", Header: "Name", Kind: ColText},
		{Key: "value", Header: "Value", Kind: ColText},
		{Key: "created_at", Header: "Date", Kind: ColDate},
	},
	ResourceColors.Name: {
		{Key: "name", Header: "Name", Kind: ColText},
		{Key: "value", Header: "Value", Kind: ColColor},
		{Key: "created_at", Header: "Date", Kind: ColDate},
	},
	ResourceProducts.Name: {
		{Key: "name", Header: "Name", Kind: ColText},
		{Key: "is_archived", Header: "Archived", Kind: ColBool},
		{Key: "is_featured", Header: "Featured", Kind: ColBool},
		{Key: "price", Header: "Price", Kind: ColMoney},
		{Key: "category_name", Header: "Category", Kind: ColText},
		{Key: "size_name", Header: "Size", Kind: ColText},
		{Key: "color_value", Header: "Color", Kind: ColColor},
		{Key: "created_at", Header: "Date", Kind: ColDate},
	},
	ResourceOrders.Name: {
		{Key: "products", Header: "Products", Kind: ColText},
		{Key: "phone", Header: "Phone", Kind: ColText},
		{Key: "address", Header: "Address", Kind: ColText},
		{Key: "total_price", Header: "Total price", Kind: ColMoney},
		{Key: "is_paid", Header: "Paid", Kind: ColBool},
	},
}

// ColumnsFor returns the grid columns for the named resource.
func ColumnsFor(resource string) ([]Column, bool) {
	cols, okc := columnSets[strings.ToLower(resource)]
	return cols, okc
}

// Format renders a cell value for export surfaces.
func (col Column) Format(v any) string {
	switch col.Kind {
	case ColDate:
		switch t := v.(type) {
		case time.Time:
			return FormatDate(t)
		case string:
			return t
		default:
			return cast.ToString(v)
		}
	case ColMoney:
		return FormatUSD(v)
	case ColBool:
		if cast.ToBool(v) {
			return "true"
		}
		return "false"
	default:
		return cast.ToString(v)
	}
}
