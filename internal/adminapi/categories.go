package adminapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/merchkit/storeadmin/internal/domain"
	"github.com/merchkit/storeadmin/internal/events"
	"github.com/merchkit/storeadmin/internal/webserver"
	"github.com/merchkit/storeadmin/pkg/common"
)

type categoryPayload struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	BillboardID int64  `json:"billboard_id,string" validate:"required"`
}

type categoryUpdatePayload struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	BillboardID *int64  `json:"billboard_id,string" validate:"omitempty"`
}

// categoryRow joins the referenced billboard label for the data grid.
type categoryRow struct {
	domain.Category
	BillboardLabel string `json:"billboard_label"`
}

// registerCategoryRoutes registers category CRUD routes
func registerCategoryRoutes() {
	webserver.ApiGET("/:store_id/categories", listCategories, storeGuard)
	webserver.ApiGET("/:store_id/categories/:id", getCategory, storeGuard)
	webserver.ApiPOST("/:store_id/categories", createCategory, storeGuard)
	webserver.ApiPATCH("/:store_id/categories/:id", updateCategory, storeGuard)
	webserver.ApiDELETE("/:store_id/categories/:id", deleteCategory, storeGuard)
}

var categorySortColumns = map[string]string{
	"name":       "category.name",
	"billboard":  "billboard.label",
	"created_at": "category.created_at",
}

// billboardInStore verifies the billboard belongs to the store.
func billboardInStore(db *gorm.DB, billboardID, storeID int64) bool {
	var count int64
	db.Model(&domain.Billboard{}).Where("id = ? AND store_id = ?", billboardID, storeID).Count(&count)
	return count > 0
}

func listCategories(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Category{}).Where("category.store_id = ?", storeID(c))
	db = searchLike(db, c.QueryParam("q"), "category.name")

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query categories", err.Error())
	}

	var rows []categoryRow
	err := db.Select("category.*, billboard.label AS billboard_label").
		Joins("LEFT JOIN billboard ON billboard.id = category.billboard_id").
		Order(sortOrder(c, categorySortColumns, "category.created_at DESC")).
		Offset((page - 1) * pageSize).Limit(pageSize).
		Scan(&rows).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query categories", err.Error())
	}

	return paged(c, rows, total, page, pageSize)
}

func getCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}

	var row categoryRow
	err = GetDB(c).Model(&domain.Category{}).
		Select("category.*, billboard.label AS billboard_label").
		Joins("LEFT JOIN billboard ON billboard.id = category.billboard_id").
		Where("category.id = ? AND category.store_id = ?", id, storeID(c)).
		Scan(&row).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query category", err.Error())
	}
	if row.ID == 0 {
		return fail(c, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found", nil)
	}

	return ok(c, row)
}

func createCategory(c echo.Context) error {
	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	if !billboardInStore(GetDB(c), payload.BillboardID, storeID(c)) {
		return fail(c, http.StatusBadRequest, "BILLBOARD_NOT_FOUND", "Billboard does not exist in this store",
			map[string]string{"billboard_id": "Unknown billboard"})
	}

	category := domain.Category{
		ID:          common.UUIDint64(),
		StoreID:     storeID(c),
		BillboardID: payload.BillboardID,
		Name:        scrub(payload.Name),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := GetDB(c).Create(&category).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create category", err.Error())
	}

	publishMutation(c, category.StoreID, "categories", category.ID, category.Name, events.ActionCreated)
	return ok(c, category)
}

func updateCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}

	var payload categoryUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var cat domain.Category
	if err := GetDB(c).Where("id = ? AND store_id = ?", id, storeID(c)).First(&cat).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query category", err.Error())
	}

	if payload.BillboardID != nil && *payload.BillboardID != cat.BillboardID {
		if !billboardInStore(GetDB(c), *payload.BillboardID, storeID(c)) {
			return fail(c, http.StatusBadRequest, "BILLBOARD_NOT_FOUND", "Billboard does not exist in this store",
				map[string]string{"billboard_id": "Unknown billboard"})
		}
		cat.BillboardID = *payload.BillboardID
	}
	if payload.Name != nil {
		cat.Name = scrub(*payload.Name)
	}
	cat.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&cat).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update category", err.Error())
	}

	publishMutation(c, cat.StoreID, "categories", cat.ID, cat.Name, events.ActionUpdated)
	return ok(c, cat)
}

func deleteCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}

	var cat domain.Category
	if err := GetDB(c).Where("id = ? AND store_id = ?", id, storeID(c)).First(&cat).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query category", err.Error())
	}

	// Prevent deletion while products reference this category
	var productCount int64
	GetDB(c).Model(&domain.Product{}).Where("category_id = ?", id).Count(&productCount)
	if productCount > 0 {
		return fail(c, http.StatusConflict, "CATEGORY_IN_USE",
			"Make sure you removed all products using this category first.",
			map[string]any{"product_count": productCount})
	}

	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Category{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete category", err.Error())
	}

	publishMutation(c, cat.StoreID, "categories", id, cat.Name, events.ActionDeleted)
	return ok(c, map[string]any{"id": id})
}
