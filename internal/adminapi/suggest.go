package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/merchkit/storeadmin/internal/console"
	"github.com/merchkit/storeadmin/internal/suggest"
	"github.com/merchkit/storeadmin/internal/webserver"
	"github.com/merchkit/storeadmin/pkg/common"
)

// registerSuggestRoutes registers the typeahead endpoint backing the
// console's reference selects.
func registerSuggestRoutes() {
	webserver.ApiGET("/:store_id/suggest/:resource", getSuggestions, storeGuard)
}

func getSuggestions(c echo.Context) error {
	resource, okr := console.ResourceByName(c.Param("resource"))
	if !okr {
		return fail(c, http.StatusNotFound, "RESOURCE_NOT_FOUND", "Unknown resource", nil)
	}

	limit := int(common.ParseInt64(c.QueryParam("limit"), 10))
	entries := GetApp(c).SuggestIndex().Query(storeID(c), resource.Name, c.QueryParam("q"), limit)
	if entries == nil {
		entries = []suggest.Entry{}
	}
	return ok(c, map[string]any{"items": entries})
}
