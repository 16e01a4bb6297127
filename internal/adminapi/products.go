package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/merchkit/storeadmin/internal/domain"
	"github.com/merchkit/storeadmin/internal/events"
	"github.com/merchkit/storeadmin/internal/webserver"
	"github.com/merchkit/storeadmin/pkg/common"
)

type productImagePayload struct {
	URL string `json:"url" validate:"required,url,max=1024"`
}

type productPayload struct {
	Name       string                `json:"name" validate:"required,min=1,max=200"`
	Price      decimal.Decimal       `json:"price"`
	CategoryID int64                 `json:"category_id,string" validate:"required"`
	SizeID     int64                 `json:"size_id,string" validate:"required"`
	ColorID    int64                 `json:"color_id,string" validate:"required"`
	Images     []productImagePayload `json:"images" validate:"required,min=1,dive"`
	IsFeatured bool                  `json:"is_featured"`
	IsArchived bool                  `json:"is_archived"`
}

type productUpdatePayload struct {
	Name       *string                `json:"name" validate:"omitempty,min=1,max=200"`
	Price      *decimal.Decimal       `json:"price"`
	CategoryID *int64                 `json:"category_id,string"`
	SizeID     *int64                 `json:"size_id,string"`
	ColorID    *int64                 `json:"color_id,string"`
	Images     *[]productImagePayload `json:"images" validate:"omitempty,min=1,dive"`
	IsFeatured *bool                  `json:"is_featured"`
	IsArchived *bool                  `json:"is_archived"`
}

// registerProductRoutes registers product CRUD routes
func registerProductRoutes() {
	webserver.ApiGET("/:store_id/products", listProducts, storeGuard)
	webserver.ApiGET("/:store_id/products/:id", getProduct, storeGuard)
	webserver.ApiPOST("/:store_id/products", createProduct, storeGuard)
	webserver.ApiPATCH("/:store_id/products/:id", updateProduct, storeGuard)
	webserver.ApiDELETE("/:store_id/products/:id", deleteProduct, storeGuard)
}

// refInStore verifies a referenced entity belongs to the store.
func refInStore(db *gorm.DB, model any, id, storeID int64) bool {
	var count int64
	db.Model(model).Where("id = ? AND store_id = ?", id, storeID).Count(&count)
	return count > 0
}

var productSortColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"created_at": "created_at",
}

func productListQuery(c echo.Context) *gorm.DB {
	db := GetDB(c).Model(&domain.Product{}).Where("store_id = ?", storeID(c))
	if v := c.QueryParam("category_id"); v != "" {
		db = db.Where("category_id = ?", common.ParseInt64(v, 0))
	}
	if v := c.QueryParam("size_id"); v != "" {
		db = db.Where("size_id = ?", common.ParseInt64(v, 0))
	}
	if v := c.QueryParam("color_id"); v != "" {
		db = db.Where("color_id = ?", common.ParseInt64(v, 0))
	}
	if v := c.QueryParam("is_featured"); v != "" {
		db = db.Where("is_featured = ?", strings.EqualFold(v, "true"))
	}
	if v := c.QueryParam("is_archived"); v != "" {
		db = db.Where("is_archived = ?", strings.EqualFold(v, "true"))
	}
	return searchLike(db, c.QueryParam("q"), "name")
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)
	db := productListQuery(c)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	var products []domain.Product
	err := db.Preload("Category").Preload("Size").Preload("Color").Preload("Images").
		Order(sortOrder(c, productSortColumns, "created_at DESC")).
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&products).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	return paged(c, products, total, page, pageSize)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	var p domain.Product
	err = GetDB(c).Preload("Category").Preload("Size").Preload("Color").Preload("Images").
		Where("id = ? AND store_id = ?", id, storeID(c)).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}

	return ok(c, p)
}

// checkProductRefs validates the category, size and color references.
// Returns a field scoped error map, empty when all exist in the store.
func checkProductRefs(db *gorm.DB, sid int64, categoryID, sizeID, colorID *int64) map[string]string {
	fields := map[string]string{}
	if categoryID != nil && !refInStore(db, &domain.Category{}, *categoryID, sid) {
		fields["category_id"] = "Unknown category"
	}
	if sizeID != nil && !refInStore(db, &domain.Size{}, *sizeID, sid) {
		fields["size_id"] = "Unknown size"
	}
	if colorID != nil && !refInStore(db, &domain.Color{}, *colorID, sid) {
		fields["color_id"] = "Unknown color"
	}
	return fields
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if payload.Price.LessThanOrEqual(decimal.Zero) {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed",
			map[string]string{"price": "Must be greater than 0"})
	}

	sid := storeID(c)
	if fields := checkProductRefs(GetDB(c), sid, &payload.CategoryID, &payload.SizeID, &payload.ColorID); len(fields) > 0 {
		return fail(c, http.StatusBadRequest, "REFERENCE_NOT_FOUND", "Referenced entity does not exist in this store", fields)
	}

	product := domain.Product{
		ID:         common.UUIDint64(),
		StoreID:    sid,
		CategoryID: payload.CategoryID,
		SizeID:     payload.SizeID,
		ColorID:    payload.ColorID,
		Name:       scrub(payload.Name),
		Price:      payload.Price,
		IsFeatured: payload.IsFeatured,
		IsArchived: payload.IsArchived,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	for _, img := range payload.Images {
		product.Images = append(product.Images, domain.ProductImage{
			ID:        common.UUIDint64(),
			ProductID: product.ID,
			URL:       img.URL,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		})
	}

	err := GetDB(c).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&product).Error
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}

	publishMutation(c, sid, "products", product.ID, product.Name, events.ActionCreated)
	return ok(c, product)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	var payload productUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if payload.Price != nil && payload.Price.LessThanOrEqual(decimal.Zero) {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed",
			map[string]string{"price": "Must be greater than 0"})
	}

	sid := storeID(c)
	var p domain.Product
	if err := GetDB(c).Where("id = ? AND store_id = ?", id, sid).First(&p).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}

	if fields := checkProductRefs(GetDB(c), sid, payload.CategoryID, payload.SizeID, payload.ColorID); len(fields) > 0 {
		return fail(c, http.StatusBadRequest, "REFERENCE_NOT_FOUND", "Referenced entity does not exist in this store", fields)
	}

	if payload.Name != nil {
		p.Name = scrub(*payload.Name)
	}
	if payload.Price != nil {
		p.Price = *payload.Price
	}
	if payload.CategoryID != nil {
		p.CategoryID = *payload.CategoryID
	}
	if payload.SizeID != nil {
		p.SizeID = *payload.SizeID
	}
	if payload.ColorID != nil {
		p.ColorID = *payload.ColorID
	}
	if payload.IsFeatured != nil {
		p.IsFeatured = *payload.IsFeatured
	}
	if payload.IsArchived != nil {
		p.IsArchived = *payload.IsArchived
	}
	p.UpdatedAt = time.Now()
	p.Images = nil

	err = GetDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Images").Save(&p).Error; err != nil {
			return err
		}
		if payload.Images != nil {
			// full image replacement, never a partial merge
			if err := tx.Where("product_id = ?", p.ID).Delete(&domain.ProductImage{}).Error; err != nil {
				return err
			}
			for _, img := range *payload.Images {
				rec := domain.ProductImage{
					ID:        common.UUIDint64(),
					ProductID: p.ID,
					URL:       img.URL,
					CreatedAt: time.Now(),
					UpdatedAt: time.Now(),
				}
				if err := tx.Create(&rec).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}

	GetDB(c).Preload("Images").Where("id = ?", p.ID).First(&p)
	publishMutation(c, sid, "products", p.ID, p.Name, events.ActionUpdated)
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	var p domain.Product
	if err := GetDB(c).Where("id = ? AND store_id = ?", id, storeID(c)).First(&p).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}

	// Prevent deletion while order items reference this product
	var orderItemCount int64
	GetDB(c).Model(&domain.OrderItem{}).Where("product_id = ?", id).Count(&orderItemCount)
	if orderItemCount > 0 {
		return fail(c, http.StatusConflict, "PRODUCT_IN_USE",
			"Make sure you removed all orders containing this product first.",
			map[string]any{"order_item_count": orderItemCount})
	}

	err = GetDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&domain.ProductImage{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Product{}).Error
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err.Error())
	}

	publishMutation(c, p.StoreID, "products", id, p.Name, events.ActionDeleted)
	return ok(c, map[string]any{"id": id})
}
