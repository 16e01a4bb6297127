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

type sizePayload struct {
	Name  string `json:"name" validate:"required,min=1,max=200"`
	Value string `json:"value" validate:"required,min=1,max=50"`
}

type sizeUpdatePayload struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=200"`
	Value *string `json:"value" validate:"omitempty,min=1,max=50"`
}

// catalogSortColumns covers sizes and colors, both name/value tables.
var catalogSortColumns = map[string]string{
	"name":       "name",
	"value":      "value",
	"created_at": "created_at",
}

// registerSizeRoutes registers size CRUD routes
func registerSizeRoutes() {
	webserver.ApiGET("/:store_id/sizes", listSizes, storeGuard)
	webserver.ApiGET("/:store_id/sizes/:id", getSize, storeGuard)
	webserver.ApiPOST("/:store_id/sizes", createSize, storeGuard)
	webserver.ApiPATCH("/:store_id/sizes/:id", updateSize, storeGuard)
	webserver.ApiDELETE("/:store_id/sizes/:id", deleteSize, storeGuard)
}

func listSizes(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Size{}).Where("store_id = ?", storeID(c))
	db = searchLike(db, c.QueryParam("q"), "name", "value")

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query sizes", err.Error())
	}

	var sizes []domain.Size
	order := sortOrder(c, catalogSortColumns, "created_at DESC")
	if err := db.Order(order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&sizes).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query sizes", err.Error())
	}

	return paged(c, sizes, total, page, pageSize)
}

func getSize(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid size ID", nil)
	}

	var s domain.Size
	if err := GetDB(c).Where("id = ? AND store_id = ?", id, storeID(c)).First(&s).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "SIZE_NOT_FOUND", "Size not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query size", err.Error())
	}

	return ok(c, s)
}

func createSize(c echo.Context) error {
	var payload sizePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse size parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	size := domain.Size{
		ID:        common.UUIDint64(),
		StoreID:   storeID(c),
		Name:      scrub(payload.Name),
		Value:     scrub(payload.Value),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := GetDB(c).Create(&size).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create size", err.Error())
	}

	publishMutation(c, size.StoreID, "sizes", size.ID, size.Name, events.ActionCreated)
	return ok(c, size)
}

func updateSize(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid size ID", nil)
	}

	var payload sizeUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse size parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var s domain.Size
	if err := GetDB(c).Where("id = ? AND store_id = ?", id, storeID(c)).First(&s).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "SIZE_NOT_FOUND", "Size not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query size", err.Error())
	}

	if payload.Name != nil {
		s.Name = scrub(*payload.Name)
	}
	if payload.Value != nil {
		s.Value = scrub(*payload.Value)
	}
	s.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&s).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update size", err.Error())
	}

	publishMutation(c, s.StoreID, "sizes", s.ID, s.Name, events.ActionUpdated)
	return ok(c, s)
}

func deleteSize(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid size ID", nil)
	}

	var s domain.Size
	if err := GetDB(c).Where("id = ? AND store_id = ?", id, storeID(c)).First(&s).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "SIZE_NOT_FOUND", "Size not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query size", err.Error())
	}

	// Prevent deletion while products reference this size
	var productCount int64
	GetDB(c).Model(&domain.Product{}).Where("size_id = ?", id).Count(&productCount)
	if productCount > 0 {
		return fail(c, http.StatusConflict, "SIZE_IN_USE",
			"Make sure you removed all products using this size first.",
			map[string]any{"product_count": productCount})
	}

	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Size{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete size", err.Error())
	}

	publishMutation(c, s.StoreID, "sizes", id, s.Name, events.ActionDeleted)
	return ok(c, map[string]any{"id": id})
}
