package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/merchkit/storeadmin/internal/domain"
	"github.com/merchkit/storeadmin/internal/webserver"
)

type settingPayload struct {
	Type  string `json:"type" validate:"required,min=1,max=100"`
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Value string `json:"value" validate:"max=4000"`
}

type settingsUpdatePayload struct {
	Settings []settingPayload `json:"settings" validate:"required,min=1,dive"`
}

// registerSettingsRoutes registers the runtime settings endpoints.
// Settings are global, not store scoped.
func registerSettingsRoutes() {
	webserver.ApiGET("/settings", listSettings)
	webserver.ApiPUT("/settings", updateSettings)
}

func listSettings(c echo.Context) error {
	var rows []domain.SysConfig
	if err := GetDB(c).Order("type ASC, sort ASC, name ASC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query settings", err.Error())
	}

	grouped := map[string][]domain.SysConfig{}
	for _, row := range rows {
		grouped[row.Type] = append(grouped[row.Type], row)
	}
	return ok(c, grouped)
}

func updateSettings(c echo.Context) error {
	var payload settingsUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse settings parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	db := GetDB(c)
	updated := 0
	for _, item := range payload.Settings {
		res := db.Model(&domain.SysConfig{}).
			Where("type = ? AND name = ?", item.Type, item.Name).
			Updates(map[string]any{"value": item.Value, "updated_at": time.Now()})
		if res.Error != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update settings", res.Error.Error())
		}
		if res.RowsAffected == 0 {
			return fail(c, http.StatusNotFound, "SETTING_NOT_FOUND",
				"Unknown setting "+item.Type+"."+item.Name, nil)
		}
		updated += int(res.RowsAffected)
	}
	GetApp(c).InvalidateSettingsCache()

	return ok(c, map[string]any{"updated": updated})
}
