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

type storePayload struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

type storeUpdatePayload struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=200"`
}

// registerStoreRoutes registers store CRUD routes
func registerStoreRoutes() {
	webserver.ApiGET("/stores", listStores)
	webserver.ApiGET("/stores/:id", getStore)
	webserver.ApiPOST("/stores", createStore)
	webserver.ApiPATCH("/stores/:id", updateStore)
	webserver.ApiDELETE("/stores/:id", deleteStore)
}

func listStores(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Store{})
	db = searchLike(db, c.QueryParam("q"), "name")

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query stores", err.Error())
	}

	var stores []domain.Store
	if err := db.Order("created_at ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&stores).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query stores", err.Error())
	}

	return paged(c, stores, total, page, pageSize)
}

func getStore(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid store ID", nil)
	}

	var s domain.Store
	if err := GetDB(c).Where("id = ?", id).First(&s).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "STORE_NOT_FOUND", "Store not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query store", err.Error())
	}

	return ok(c, s)
}

func createStore(c echo.Context) error {
	var payload storePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse store parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	store := domain.Store{
		ID:        common.UUIDint64(),
		Name:      scrub(payload.Name),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := GetDB(c).Create(&store).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create store", err.Error())
	}

	publishMutation(c, store.ID, "stores", store.ID, store.Name, events.ActionCreated)
	return ok(c, store)
}

func updateStore(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid store ID", nil)
	}

	var payload storeUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse store parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var s domain.Store
	if err := GetDB(c).Where("id = ?", id).First(&s).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "STORE_NOT_FOUND", "Store not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query store", err.Error())
	}

	if payload.Name != nil {
		s.Name = scrub(*payload.Name)
	}
	s.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&s).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update store", err.Error())
	}

	publishMutation(c, s.ID, "stores", s.ID, s.Name, events.ActionUpdated)
	return ok(c, s)
}

func deleteStore(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid store ID", nil)
	}

	var s domain.Store
	if err := GetDB(c).Where("id = ?", id).First(&s).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "STORE_NOT_FOUND", "Store not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query store", err.Error())
	}

	// Refuse while catalog entities still reference the store
	var productCount, categoryCount int64
	GetDB(c).Model(&domain.Product{}).Where("store_id = ?", id).Count(&productCount)
	GetDB(c).Model(&domain.Category{}).Where("store_id = ?", id).Count(&categoryCount)
	if productCount > 0 || categoryCount > 0 {
		return fail(c, http.StatusConflict, "STORE_IN_USE",
			"Make sure you removed all products and categories first.",
			map[string]any{"product_count": productCount, "category_count": categoryCount})
	}

	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Store{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete store", err.Error())
	}

	publishMutation(c, id, "stores", id, s.Name, events.ActionDeleted)
	return ok(c, map[string]any{"id": id})
}
