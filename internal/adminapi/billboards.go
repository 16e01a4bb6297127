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

type billboardPayload struct {
	Label    string `json:"label" validate:"required,min=1,max=200"`
	ImageURL string `json:"image_url" validate:"required,url,max=1024"`
}

type billboardUpdatePayload struct {
	Label    *string `json:"label" validate:"omitempty,min=1,max=200"`
	ImageURL *string `json:"image_url" validate:"omitempty,url,max=1024"`
}

var billboardSortColumns = map[string]string{
	"label":      "label",
	"created_at": "created_at",
}

// registerBillboardRoutes registers billboard CRUD routes
func registerBillboardRoutes() {
	webserver.ApiGET("/:store_id/billboards", listBillboards, storeGuard)
	webserver.ApiGET("/:store_id/billboards/:id", getBillboard, storeGuard)
	webserver.ApiPOST("/:store_id/billboards", createBillboard, storeGuard)
	webserver.ApiPATCH("/:store_id/billboards/:id", updateBillboard, storeGuard)
	webserver.ApiDELETE("/:store_id/billboards/:id", deleteBillboard, storeGuard)
}

func listBillboards(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Billboard{}).Where("store_id = ?", storeID(c))
	db = searchLike(db, c.QueryParam("q"), "label")

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query billboards", err.Error())
	}

	var billboards []domain.Billboard
	order := sortOrder(c, billboardSortColumns, "created_at DESC")
	if err := db.Order(order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&billboards).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query billboards", err.Error())
	}

	return paged(c, billboards, total, page, pageSize)
}

func getBillboard(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid billboard ID", nil)
	}

	var b domain.Billboard
	if err := GetDB(c).Where("id = ? AND store_id = ?", id, storeID(c)).First(&b).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "BILLBOARD_NOT_FOUND", "Billboard not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query billboard", err.Error())
	}

	return ok(c, b)
}

func createBillboard(c echo.Context) error {
	var payload billboardPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse billboard parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	billboard := domain.Billboard{
		ID:        common.UUIDint64(),
		StoreID:   storeID(c),
		Label:     scrub(payload.Label),
		ImageURL:  payload.ImageURL,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := GetDB(c).Create(&billboard).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create billboard", err.Error())
	}

	publishMutation(c, billboard.StoreID, "billboards", billboard.ID, billboard.Label, events.ActionCreated)
	return ok(c, billboard)
}

func updateBillboard(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid billboard ID", nil)
	}

	var payload billboardUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse billboard parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var b domain.Billboard
	if err := GetDB(c).Where("id = ? AND store_id = ?", id, storeID(c)).First(&b).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "BILLBOARD_NOT_FOUND", "Billboard not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query billboard", err.Error())
	}

	if payload.Label != nil {
		b.Label = scrub(*payload.Label)
	}
	if payload.ImageURL != nil {
		b.ImageURL = *payload.ImageURL
	}
	b.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&b).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update billboard", err.Error())
	}

	publishMutation(c, b.StoreID, "billboards", b.ID, b.Label, events.ActionUpdated)
	return ok(c, b)
}

func deleteBillboard(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid billboard ID", nil)
	}

	var b domain.Billboard
	if err := GetDB(c).Where("id = ? AND store_id = ?", id, storeID(c)).First(&b).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "BILLBOARD_NOT_FOUND", "Billboard not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query billboard", err.Error())
	}

	// Prevent deletion while categories reference this billboard
	var categoryCount int64
	GetDB(c).Model(&domain.Category{}).Where("billboard_id = ?", id).Count(&categoryCount)
	if categoryCount > 0 {
		return fail(c, http.StatusConflict, "BILLBOARD_IN_USE",
			"Make sure you removed all categories using this billboard first.",
			map[string]any{"category_count": categoryCount})
	}

	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Billboard{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete billboard", err.Error())
	}

	publishMutation(c, b.StoreID, "billboards", id, b.Label, events.ActionDeleted)
	return ok(c, map[string]any{"id": id})
}
