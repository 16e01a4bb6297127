// Package adminapi implements the REST API behind the admin console:
// store scoped CRUD for catalog entities, order management, overview
// statistics, exports, imports and the console metadata endpoints.
package adminapi

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/merchkit/storeadmin/config"
	"github.com/merchkit/storeadmin/internal/domain"
	"github.com/merchkit/storeadmin/internal/events"
	"github.com/merchkit/storeadmin/internal/suggest"
	"github.com/merchkit/storeadmin/internal/webserver"
	"github.com/merchkit/storeadmin/pkg/common"
)

// AppContext is what handlers need from the application.
type AppContext interface {
	Config() *config.AppConfig
	DB() *gorm.DB
	EventBus() *events.Bus
	SuggestIndex() *suggest.Index
	InvalidateSettingsCache()
}

// InitRouter registers every admin API route. Call after webserver.Init.
func InitRouter() {
	registerStoreRoutes()
	registerBillboardRoutes()
	registerCategoryRoutes()
	registerSizeRoutes()
	registerColorRoutes()
	registerProductRoutes()
	registerOrderRoutes()
	registerOverviewRoutes()
	registerExportRoutes()
	registerImportRoutes()
	registerSuggestRoutes()
	registerConsoleRoutes()
	registerSettingsRoutes()
	registerSystemRoutes()
}

// GetDB returns the request scoped database handle.
func GetDB(c echo.Context) *gorm.DB {
	return c.Get(webserver.ContextKeyDB).(*gorm.DB)
}

// GetApp returns the application context.
func GetApp(c echo.Context) AppContext {
	return c.Get(webserver.ContextKeyApp).(AppContext)
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  any    `json:"detail,omitempty"`
}

type pageResult struct {
	Items    any   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}

func fail(c echo.Context, status int, code, message string, detail any) error {
	return c.JSON(status, apiError{Code: code, Message: message, Detail: detail})
}

func paged(c echo.Context, items any, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, pageResult{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func parsePagination(c echo.Context) (int, int) {
	page := int(common.ParseInt64(c.QueryParam("page"), 1))
	if page < 1 {
		page = 1
	}
	pageSize := int(common.ParseInt64(c.QueryParam("page_size"), 20))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	return page, pageSize
}

// sortOrder builds the ORDER BY clause from the sort/dir query params.
// Only whitelisted columns are accepted; anything else falls back to def.
func sortOrder(c echo.Context, allowed map[string]string, def string) string {
	col, oks := allowed[c.QueryParam("sort")]
	if !oks {
		return def
	}
	dir := "ASC"
	if strings.EqualFold(c.QueryParam("dir"), "desc") {
		dir = "DESC"
	}
	return col + " " + dir
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	id := common.ParseInt64(c.Param(name), 0)
	if id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

const contextKeyStoreID = "storeadmin_store_id"

// storeGuard resolves the :store_id path segment and rejects requests
// for unknown stores before the handler runs.
func storeGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := common.ParseInt64(c.Param("store_id"), 0)
		if id <= 0 {
			return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid store ID", nil)
		}
		var count int64
		GetDB(c).Model(&domain.Store{}).Where("id = ?", id).Count(&count)
		if count == 0 {
			return fail(c, http.StatusNotFound, "STORE_NOT_FOUND", "Store not found", nil)
		}
		c.Set(contextKeyStoreID, id)
		return next(c)
	}
}

// storeID returns the store resolved by storeGuard.
func storeID(c echo.Context) int64 {
	return c.Get(contextKeyStoreID).(int64)
}

var fastJson = jsoniter.ConfigCompatibleWithStandardLibrary

var htmlScrubber = bluemonday.StrictPolicy()

// scrub strips markup from operator supplied text before it is stored.
func scrub(s string) string {
	return strings.TrimSpace(htmlScrubber.Sanitize(s))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "hexcolor":
		return "Value must be a valid hex code"
	case "url":
		return "Must be a valid URL"
	case "min":
		return "Too short"
	case "max":
		return "Too long"
	case "gt":
		return "Must be greater than " + fe.Param()
	default:
		return "Invalid value"
	}
}

// handleValidationError converts validator errors into a field scoped
// 400 payload, one message per offending field.
func handleValidationError(c echo.Context, err error) error {
	if verrs, okv := err.(validator.ValidationErrors); okv {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = validationMessage(fe)
		}
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", fields)
	}
	return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", nil)
}

// publishMutation emits the entity change event that feeds the
// operation log and the suggestion index.
func publishMutation(c echo.Context, storeID int64, resource string, entityID int64, name string, action events.Action) {
	GetApp(c).EventBus().PublishMutation(events.EntityMutation{
		StoreID:  storeID,
		Resource: resource,
		EntityID: entityID,
		Name:     name,
		Action:   action,
		OprIP:    c.RealIP(),
	})
}

// searchLike appends a case-insensitive LIKE filter over the given
// columns. Postgres gets ILIKE, everything else LOWER(...) LIKE.
func searchLike(db *gorm.DB, q string, columns ...string) *gorm.DB {
	q = strings.TrimSpace(q)
	if q == "" || len(columns) == 0 {
		return db
	}
	if strings.EqualFold(db.Name(), "postgres") {
		clauses := make([]string, 0, len(columns))
		args := make([]any, 0, len(columns))
		for _, col := range columns {
			clauses = append(clauses, col+" ILIKE ?")
			args = append(args, "%"+q+"%")
		}
		return db.Where(strings.Join(clauses, " OR "), args...)
	}
	clauses := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, col := range columns {
		clauses = append(clauses, "LOWER("+col+") LIKE ?")
		args = append(args, "%"+strings.ToLower(q)+"%")
	}
	return db.Where(strings.Join(clauses, " OR "), args...)
}
