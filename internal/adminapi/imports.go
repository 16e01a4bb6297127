package adminapi

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"github.com/panjf2000/ants/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/merchkit/storeadmin/internal/domain"
	"github.com/merchkit/storeadmin/internal/events"
	"github.com/merchkit/storeadmin/internal/webserver"
	"github.com/merchkit/storeadmin/pkg/common"
)

const importWorkers = 4

// registerImportRoutes registers the product CSV import endpoint
func registerImportRoutes() {
	webserver.ApiPOST("/:store_id/products/import", importProducts, storeGuard)
}

type productImportRow struct {
	Name       string `csv:"name"`
	Price      string `csv:"price"`
	Category   string `csv:"category"`
	Size       string `csv:"size"`
	Color      string `csv:"color"`
	ImageURL   string `csv:"image_url"`
	IsFeatured string `csv:"is_featured"`
	IsArchived string `csv:"is_archived"`
}

type importRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type importResult struct {
	Imported int              `json:"imported"`
	Failed   int              `json:"failed"`
	Errors   []importRowError `json:"errors,omitempty"`
}

// importRefs caches the store's reference entities by lowercased name
// so workers resolve rows without per row queries.
type importRefs struct {
	categories map[string]int64
	sizes      map[string]int64
	colors     map[string]int64
}

func loadImportRefs(db *gorm.DB, sid int64) (*importRefs, error) {
	refs := &importRefs{
		categories: map[string]int64{},
		sizes:      map[string]int64{},
		colors:     map[string]int64{},
	}
	var categories []domain.Category
	if err := db.Where("store_id = ?", sid).Find(&categories).Error; err != nil {
		return nil, err
	}
	for _, cat := range categories {
		refs.categories[strings.ToLower(cat.Name)] = cat.ID
	}
	var sizes []domain.Size
	if err := db.Where("store_id = ?", sid).Find(&sizes).Error; err != nil {
		return nil, err
	}
	for _, s := range sizes {
		refs.sizes[strings.ToLower(s.Name)] = s.ID
	}
	var colors []domain.Color
	if err := db.Where("store_id = ?", sid).Find(&colors).Error; err != nil {
		return nil, err
	}
	for _, col := range colors {
		refs.colors[strings.ToLower(col.Name)] = col.ID
	}
	return refs, nil
}

// importOneProduct validates and stores a single row.
func importOneProduct(db *gorm.DB, refs *importRefs, sid int64, row productImportRow) (domain.Product, string) {
	name := scrub(row.Name)
	if name == "" {
		return domain.Product{}, "name is required"
	}
	price, err := decimal.NewFromString(strings.TrimSpace(row.Price))
	if err != nil || price.LessThanOrEqual(decimal.Zero) {
		return domain.Product{}, "price must be a number greater than 0"
	}
	categoryID, okc := refs.categories[strings.ToLower(strings.TrimSpace(row.Category))]
	if !okc {
		return domain.Product{}, "unknown category " + row.Category
	}
	sizeID, oks := refs.sizes[strings.ToLower(strings.TrimSpace(row.Size))]
	if !oks {
		return domain.Product{}, "unknown size " + row.Size
	}
	colorID, okcol := refs.colors[strings.ToLower(strings.TrimSpace(row.Color))]
	if !okcol {
		return domain.Product{}, "unknown color " + row.Color
	}
	imageURL := strings.TrimSpace(row.ImageURL)
	if imageURL == "" {
		return domain.Product{}, "image_url is required"
	}

	product := domain.Product{
		ID:         common.UUIDint64(),
		StoreID:    sid,
		CategoryID: categoryID,
		SizeID:     sizeID,
		ColorID:    colorID,
		Name:       name,
		Price:      price,
		IsFeatured: cast.ToBool(strings.TrimSpace(row.IsFeatured)),
		IsArchived: cast.ToBool(strings.TrimSpace(row.IsArchived)),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
		Images: []domain.ProductImage{{
			ID:        common.UUIDint64(),
			URL:       imageURL,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}},
	}
	product.Images[0].ProductID = product.ID

	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&product).Error
	}); err != nil {
		return domain.Product{}, "database error: " + err.Error()
	}
	return product, ""
}

func importProducts(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Missing csv file upload", nil)
	}
	src, err := fileHeader.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read uploaded file", nil)
	}
	defer src.Close()

	var rows []productImportRow
	if err := gocsv.Unmarshal(src, &rows); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_CSV", "Unable to parse csv file", err.Error())
	}
	if len(rows) == 0 {
		return ok(c, importResult{})
	}

	sid := storeID(c)
	db := GetDB(c)
	refs, err := loadImportRefs(db, sid)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load reference entities", err.Error())
	}

	bus := GetApp(c).EventBus()
	oprIP := c.RealIP()

	pool, err := ants.NewPool(importWorkers)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "POOL_ERROR", "Failed to start import workers", err.Error())
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		imported int
		rowErrs  []importRowError
	)
	for i := range rows {
		i := i
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			product, msg := importOneProduct(db, refs, sid, rows[i])
			mu.Lock()
			defer mu.Unlock()
			if msg != "" {
				// rows are 1-based and follow the header line
				rowErrs = append(rowErrs, importRowError{Row: i + 2, Message: msg})
				return
			}
			imported++
			bus.PublishMutation(events.EntityMutation{
				StoreID:  sid,
				Resource: "products",
				EntityID: product.ID,
				Name:     product.Name,
				Action:   events.ActionCreated,
				OprIP:    oprIP,
			})
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			rowErrs = append(rowErrs, importRowError{Row: i + 2, Message: "worker unavailable"})
			mu.Unlock()
		}
	}
	wg.Wait()

	sort.Slice(rowErrs, func(a, b int) bool { return rowErrs[a].Row < rowErrs[b].Row })
	zap.S().Infof("product import finished: store=%d imported=%d failed=%d", sid, imported, len(rowErrs))

	return ok(c, importResult{Imported: imported, Failed: len(rowErrs), Errors: rowErrs})
}
