package adminapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/merchkit/storeadmin/internal/domain"
	"github.com/merchkit/storeadmin/internal/events"
	"github.com/merchkit/storeadmin/internal/webserver"
)

var orderSortColumns = map[string]string{
	"phone":      "phone",
	"is_paid":    "is_paid",
	"created_at": "created_at",
}

// registerOrderRoutes registers order management routes. Orders are
// created by checkout, so the admin API only reads and deletes them.
func registerOrderRoutes() {
	webserver.ApiGET("/:store_id/orders", listOrders, storeGuard)
	webserver.ApiGET("/:store_id/orders/:id", getOrder, storeGuard)
	webserver.ApiDELETE("/:store_id/orders/:id", deleteOrder, storeGuard)
}

// orderView flattens an order for the data grid.
type orderView struct {
	domain.Order
	Products   string `json:"products"`
	TotalPrice string `json:"total_price"`
}

func orderToView(o domain.Order) orderView {
	names := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		names = append(names, item.Product.Name)
	}
	return orderView{
		Order:      o,
		Products:   strings.Join(names, ", "),
		TotalPrice: o.Total().StringFixed(2),
	}
}

func listOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Order{}).Where("store_id = ?", storeID(c))
	if v := c.QueryParam("is_paid"); v != "" {
		db = db.Where("is_paid = ?", strings.EqualFold(v, "true"))
	}
	if v := c.QueryParam("from"); v != "" {
		if ts, err := dateparse.ParseAny(v); err == nil {
			db = db.Where("created_at >= ?", ts)
		}
	}
	if v := c.QueryParam("to"); v != "" {
		if ts, err := dateparse.ParseAny(v); err == nil {
			db = db.Where("created_at <= ?", ts)
		}
	}
	db = searchLike(db, c.QueryParam("q"), "phone", "address")

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	var orders []domain.Order
	err := db.Preload("Items").Preload("Items.Product").
		Order(sortOrder(c, orderSortColumns, "created_at DESC")).
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&orders).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, orderToView(o))
	}

	return paged(c, views, total, page, pageSize)
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}

	var o domain.Order
	err = GetDB(c).Preload("Items").Preload("Items.Product").
		Where("id = ? AND store_id = ?", id, storeID(c)).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query order", err.Error())
	}

	return ok(c, orderToView(o))
}

func deleteOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}

	var o domain.Order
	if err := GetDB(c).Where("id = ? AND store_id = ?", id, storeID(c)).First(&o).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query order", err.Error())
	}

	err = GetDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&domain.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Order{}).Error
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete order", err.Error())
	}

	publishMutation(c, o.StoreID, "orders", id, "", events.ActionDeleted)
	return ok(c, map[string]any{"id": id})
}
