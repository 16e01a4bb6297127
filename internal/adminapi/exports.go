package adminapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"

	"github.com/merchkit/storeadmin/internal/console"
	"github.com/merchkit/storeadmin/internal/domain"
	"github.com/merchkit/storeadmin/internal/webserver"
)

// registerExportRoutes registers per resource download endpoints.
// The format query selects csv (default) or xlsx.
func registerExportRoutes() {
	webserver.ApiGET("/:store_id/billboards/export", exportBillboards, storeGuard)
	webserver.ApiGET("/:store_id/categories/export", exportCategories, storeGuard)
	webserver.ApiGET("/:store_id/sizes/export", exportSizes, storeGuard)
	webserver.ApiGET("/:store_id/colors/export", exportColors, storeGuard)
	webserver.ApiGET("/:store_id/products/export", exportProducts, storeGuard)
	webserver.ApiGET("/:store_id/orders/export", exportOrders, storeGuard)
}

type cellRow interface {
	cells() []string
}

func cellsOf[T cellRow](rows []T) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.cells())
	}
	return out
}

func exportHeaders(resource string) []string {
	cols, _ := console.ColumnsFor(resource)
	headers := make([]string, 0, len(cols))
	for _, col := range cols {
		headers = append(headers, col.Key)
	}
	return headers
}

func writeCSV(c echo.Context, name string, rows any) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.csv"`, name))
	c.Response().WriteHeader(http.StatusOK)
	return gocsv.Marshal(rows, c.Response())
}

func writeXLSX(c echo.Context, name string, headers []string, rows [][]string) error {
	f := excelize.NewFile()
	for i, h := range headers {
		f.SetCellValue("Sheet1", excelize.ToAlphaString(i)+"1", h)
	}
	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			axis := fmt.Sprintf("%s%d", excelize.ToAlphaString(colIdx), rowIdx+2)
			f.SetCellValue("Sheet1", axis, cell)
		}
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.xlsx"`, name))
	c.Response().WriteHeader(http.StatusOK)
	return f.Write(c.Response())
}

func wantsXLSX(c echo.Context) bool {
	return strings.EqualFold(c.QueryParam("format"), "xlsx")
}

type billboardExport struct {
	Label     string `csv:"label"`
	CreatedAt string `csv:"created_at"`
}

func (r billboardExport) cells() []string { return []string{r.Label, r.CreatedAt} }

func exportBillboards(c echo.Context) error {
	var billboards []domain.Billboard
	err := GetDB(c).Where("store_id = ?", storeID(c)).Order("created_at DESC").Find(&billboards).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query billboards", err.Error())
	}
	rows := make([]billboardExport, 0, len(billboards))
	for _, b := range billboards {
		rows = append(rows, billboardExport{
			Label:     b.Label,
			CreatedAt: console.FormatDate(b.CreatedAt),
		})
	}
	if wantsXLSX(c) {
		return writeXLSX(c, "billboards", exportHeaders("billboards"), cellsOf(rows))
	}
	return writeCSV(c, "billboards", rows)
}

type categoryExport struct {
	Name           string `csv:"name"`
	BillboardLabel string `csv:"billboard_label"`
	CreatedAt      string `csv:"created_at"`
}

func (r categoryExport) cells() []string { return []string{r.Name, r.BillboardLabel, r.CreatedAt} }

func exportCategories(c echo.Context) error {
	var cats []categoryRow
	err := GetDB(c).Model(&domain.Category{}).
		Select("category.*, billboard.label AS billboard_label").
		Joins("LEFT JOIN billboard ON billboard.id = category.billboard_id").
		Where("category.store_id = ?", storeID(c)).
		Order("category.created_at DESC").
		Scan(&cats).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query categories", err.Error())
	}
	rows := make([]categoryExport, 0, len(cats))
	for _, cat := range cats {
		rows = append(rows, categoryExport{
			Name:           cat.Name,
			BillboardLabel: cat.BillboardLabel,
			CreatedAt:      console.FormatDate(cat.CreatedAt),
		})
	}
	if wantsXLSX(c) {
		return writeXLSX(c, "categories", exportHeaders("categories"), cellsOf(rows))
	}
	return writeCSV(c, "categories", rows)
}

type sizeExport struct {
	Name      string `csv:"name"`
	Value     string `csv:"value"`
	CreatedAt string `csv:"created_at"`
}

func (r sizeExport) cells() []string { return []string{r.Name, r.Value, r.CreatedAt} }

func exportSizes(c echo.Context) error {
	var sizes []domain.Size
	err := GetDB(c).Where("store_id = ?", storeID(c)).Order("created_at DESC").Find(&sizes).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query sizes", err.Error())
	}
	rows := make([]sizeExport, 0, len(sizes))
	for _, s := range sizes {
		rows = append(rows, sizeExport{Name: s.Name, Value: s.Value, CreatedAt: console.FormatDate(s.CreatedAt)})
	}
	if wantsXLSX(c) {
		return writeXLSX(c, "sizes", exportHeaders("sizes"), cellsOf(rows))
	}
	return writeCSV(c, "sizes", rows)
}

type colorExport struct {
	Name      string `csv:"name"`
	Value     string `csv:"value"`
	CreatedAt string `csv:"created_at"`
}

func (r colorExport) cells() []string { return []string{r.Name, r.Value, r.CreatedAt} }

func exportColors(c echo.Context) error {
	var colors []domain.Color
	err := GetDB(c).Where("store_id = ?", storeID(c)).Order("created_at DESC").Find(&colors).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query colors", err.Error())
	}
	rows := make([]colorExport, 0, len(colors))
	for _, col := range colors {
		rows = append(rows, colorExport{Name: col.Name, Value: col.Value, CreatedAt: console.FormatDate(col.CreatedAt)})
	}
	if wantsXLSX(c) {
		return writeXLSX(c, "colors", exportHeaders("colors"), cellsOf(rows))
	}
	return writeCSV(c, "colors", rows)
}

type productExport struct {
	Name         string `csv:"name"`
	IsArchived   string `csv:"is_archived"`
	IsFeatured   string `csv:"is_featured"`
	Price        string `csv:"price"`
	CategoryName string `csv:"category_name"`
	SizeName     string `csv:"size_name"`
	ColorValue   string `csv:"color_value"`
	CreatedAt    string `csv:"created_at"`
}

func (r productExport) cells() []string {
	return []string{r.Name, r.IsArchived, r.IsFeatured, r.Price, r.CategoryName, r.SizeName, r.ColorValue, r.CreatedAt}
}

func exportProducts(c echo.Context) error {
	var products []domain.Product
	err := GetDB(c).Preload("Category").Preload("Size").Preload("Color").
		Where("store_id = ?", storeID(c)).Order("created_at DESC").Find(&products).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	boolCol := console.Column{Kind: console.ColBool}
	rows := make([]productExport, 0, len(products))
	for _, p := range products {
		rows = append(rows, productExport{
			Name:         p.Name,
			IsArchived:   boolCol.Format(p.IsArchived),
			IsFeatured:   boolCol.Format(p.IsFeatured),
			Price:        console.FormatUSD(p.Price),
			CategoryName: p.Category.Name,
			SizeName:     p.Size.Name,
			ColorValue:   p.Color.Value,
			CreatedAt:    console.FormatDate(p.CreatedAt),
		})
	}
	if wantsXLSX(c) {
		return writeXLSX(c, "products", exportHeaders("products"), cellsOf(rows))
	}
	return writeCSV(c, "products", rows)
}

type orderExport struct {
	Products   string `csv:"products"`
	Phone      string `csv:"phone"`
	Address    string `csv:"address"`
	TotalPrice string `csv:"total_price"`
	IsPaid     string `csv:"is_paid"`
}

func (r orderExport) cells() []string {
	return []string{r.Products, r.Phone, r.Address, r.TotalPrice, r.IsPaid}
}

func exportOrders(c echo.Context) error {
	var orders []domain.Order
	err := GetDB(c).Preload("Items").Preload("Items.Product").
		Where("store_id = ?", storeID(c)).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	boolCol := console.Column{Kind: console.ColBool}
	rows := make([]orderExport, 0, len(orders))
	for _, o := range orders {
		view := orderToView(o)
		rows = append(rows, orderExport{
			Products:   view.Products,
			Phone:      o.Phone,
			Address:    o.Address,
			TotalPrice: console.FormatUSD(o.Total()),
			IsPaid:     boolCol.Format(o.IsPaid),
		})
	}
	if wantsXLSX(c) {
		return writeXLSX(c, "orders", exportHeaders("orders"), cellsOf(rows))
	}
	return writeCSV(c, "orders", rows)
}
