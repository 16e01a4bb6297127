package adminapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/merchkit/storeadmin/internal/console"
	"github.com/merchkit/storeadmin/internal/domain"
	"github.com/merchkit/storeadmin/internal/webserver"
	"github.com/merchkit/storeadmin/pkg/common"
)

// registerConsoleRoutes registers the console metadata endpoints: the
// navigation model, grid columns and form descriptors the UI renders.
func registerConsoleRoutes() {
	webserver.ApiGET("/:store_id/console/nav", getConsoleNav, storeGuard)
	webserver.ApiGET("/:store_id/console/columns/:resource", getConsoleColumns, storeGuard)
	webserver.ApiGET("/:store_id/console/forms/:resource", getConsoleForm, storeGuard)
}

func getConsoleNav(c echo.Context) error {
	return ok(c, console.MainNav(storeID(c), c.QueryParam("current")))
}

func getConsoleColumns(c echo.Context) error {
	cols, okc := console.ColumnsFor(c.Param("resource"))
	if !okc {
		return fail(c, http.StatusNotFound, "RESOURCE_NOT_FOUND", "Unknown resource", nil)
	}
	return ok(c, cols)
}

// formDescriptor is everything the UI needs to render an entity form:
// the field specs plus the mode derived labels and initial values.
type formDescriptor struct {
	Spec        console.FormSpec `json:"spec"`
	Edit        bool             `json:"edit"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Action      string           `json:"action"`
	Toast       string           `json:"toast"`
	Initial     console.Values   `json:"initial"`
}

// loadFormRecord fetches the entity under edit as generic form values.
func loadFormRecord(db *gorm.DB, resource string, sid, id int64) (console.Values, error) {
	var entity any
	switch resource {
	case console.ResourceStores.Name:
		entity = &domain.Store{}
	case console.ResourceBillboards.Name:
		entity = &domain.Billboard{}
	case console.ResourceCategories.Name:
		entity = &domain.Category{}
	case console.ResourceSizes.Name:
		entity = &domain.Size{}
	case console.ResourceColors.Name:
		entity = &domain.Color{}
	case console.ResourceProducts.Name:
		p := &domain.Product{}
		if err := db.Preload("Images").Where("id = ? AND store_id = ?", id, sid).First(p).Error; err != nil {
			return nil, err
		}
		return entityValues(p)
	default:
		return nil, gorm.ErrRecordNotFound
	}

	q := db.Where("id = ?", id)
	if resource != console.ResourceStores.Name {
		q = q.Where("store_id = ?", sid)
	}
	if err := q.First(entity).Error; err != nil {
		return nil, err
	}
	return entityValues(entity)
}

// entityValues converts an entity into form values through its json
// representation, so field names line up with the wire format.
func entityValues(entity any) (console.Values, error) {
	raw, err := fastJson.Marshal(entity)
	if err != nil {
		return nil, err
	}
	var values console.Values
	if err := fastJson.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func getConsoleForm(c echo.Context) error {
	spec, oks := console.SpecFor(c.Param("resource"))
	if !oks {
		return fail(c, http.StatusNotFound, "RESOURCE_NOT_FOUND", "No form for this resource", nil)
	}

	mode := console.CreateMode()
	if rawID := c.QueryParam("id"); rawID != "" {
		id := common.ParseInt64(rawID, 0)
		if id <= 0 {
			return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid entity ID", nil)
		}
		record, err := loadFormRecord(GetDB(c), spec.Resource.Name, storeID(c), id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "ENTITY_NOT_FOUND", "Entity not found", nil)
		} else if err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load entity", err.Error())
		}
		mode = console.EditMode(record)
	}

	initial := console.Values{}
	for _, f := range spec.Fields {
		initial[f.Name] = mode.Initial(f)
	}

	return ok(c, formDescriptor{
		Spec:        spec,
		Edit:        mode.IsEdit(),
		Title:       mode.Title(spec.Resource),
		Description: mode.Description(spec.Resource),
		Action:      mode.ActionLabel(),
		Toast:       mode.SuccessToast(spec.Resource),
		Initial:     initial,
	})
}
