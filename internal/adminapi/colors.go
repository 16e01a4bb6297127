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

type colorPayload struct {
	Name  string `json:"name" validate:"required,min=1,max=200"`
	Value string `json:"value" validate:"required,hexcolor"`
}

type colorUpdatePayload struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=200"`
	Value *string `json:"value" validate:"omitempty,hexcolor"`
}

// registerColorRoutes registers color CRUD routes
func registerColorRoutes() {
	webserver.ApiGET("/:store_id/colors", listColors, storeGuard)
	webserver.ApiGET("/:store_id/colors/:id", getColor, storeGuard)
	webserver.ApiPOST("/:store_id/colors", createColor, storeGuard)
	webserver.ApiPATCH("/:store_id/colors/:id", updateColor, storeGuard)
	webserver.ApiDELETE("/:store_id/colors/:id", deleteColor, storeGuard)
}

func listColors(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Color{}).Where("store_id = ?", storeID(c))
	db = searchLike(db, c.QueryParam("q"), "name", "value")

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query colors", err.Error())
	}

	var colors []domain.Color
	order := sortOrder(c, catalogSortColumns, "created_at DESC")
	if err := db.Order(order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&colors).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query colors", err.Error())
	}

	return paged(c, colors, total, page, pageSize)
}

func getColor(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid color ID", nil)
	}

	var col domain.Color
	if err := GetDB(c).Where("id = ? AND store_id = ?", id, storeID(c)).First(&col).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "COLOR_NOT_FOUND", "Color not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query color", err.Error())
	}

	return ok(c, col)
}

func createColor(c echo.Context) error {
	var payload colorPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse color parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	color := domain.Color{
		ID:        common.UUIDint64(),
		StoreID:   storeID(c),
		Name:      scrub(payload.Name),
		Value:     payload.Value,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := GetDB(c).Create(&color).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create color", err.Error())
	}

	publishMutation(c, color.StoreID, "colors", color.ID, color.Name, events.ActionCreated)
	return ok(c, color)
}

func updateColor(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid color ID", nil)
	}

	var payload colorUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse color parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var col domain.Color
	if err := GetDB(c).Where("id = ? AND store_id = ?", id, storeID(c)).First(&col).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "COLOR_NOT_FOUND", "Color not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query color", err.Error())
	}

	if payload.Name != nil {
		col.Name = scrub(*payload.Name)
	}
	if payload.Value != nil {
		col.Value = *payload.Value
	}
	col.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&col).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update color", err.Error())
	}

	publishMutation(c, col.StoreID, "colors", col.ID, col.Name, events.ActionUpdated)
	return ok(c, col)
}

func deleteColor(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid color ID", nil)
	}

	var col domain.Color
	if err := GetDB(c).Where("id = ? AND store_id = ?", id, storeID(c)).First(&col).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "COLOR_NOT_FOUND", "Color not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query color", err.Error())
	}

	// Prevent deletion while products reference this color
	var productCount int64
	GetDB(c).Model(&domain.Product{}).Where("color_id = ?", id).Count(&productCount)
	if productCount > 0 {
		return fail(c, http.StatusConflict, "COLOR_IN_USE",
			"Make sure you removed all products using this color first.",
			map[string]any{"product_count": productCount})
	}

	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Color{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete color", err.Error())
	}

	publishMutation(c, col.StoreID, "colors", id, col.Name, events.ActionDeleted)
	return ok(c, map[string]any{"id": id})
}
