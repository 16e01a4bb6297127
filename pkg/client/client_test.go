package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture remembers the last request the test server saw.
type capture struct {
	method string
	path   string
	query  map[string]string
	body   map[string]any
}

func newTestServer(t *testing.T, status int, response string) (*Client, *capture) {
	t.Helper()
	cap := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cap.method = r.Method
		cap.path = r.URL.Path
		cap.query = map[string]string{}
		for k := range r.URL.Query() {
			cap.query[k] = r.URL.Query().Get(k)
		}
		cap.body = nil
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&cap.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/", Timeout: 2 * time.Second}), cap
}

func TestClient_CreatePostsToResourcePath(t *testing.T) {
	c, cap := newTestServer(t, http.StatusCreated, `{"id":"55","name":"Shirts"}`)

	created, err := c.Create(context.Background(), 42, "categories", map[string]any{"name": "Shirts"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, cap.method)
	assert.Equal(t, "/api/42/categories", cap.path)
	assert.Equal(t, "Shirts", cap.body["name"])
	assert.Equal(t, "55", created["id"])
}

func TestClient_StoresBypassStoreScope(t *testing.T) {
	c, cap := newTestServer(t, http.StatusCreated, `{"id":"9"}`)

	_, err := c.Create(context.Background(), 42, "stores", map[string]any{"name": "Outlet"})
	require.NoError(t, err)
	assert.Equal(t, "/api/stores", cap.path)
}

func TestClient_UpdatePatchesEntityPath(t *testing.T) {
	c, cap := newTestServer(t, http.StatusOK, `{}`)

	err := c.Update(context.Background(), 3, "billboards", 17, map[string]any{"label": "Summer"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, cap.method)
	assert.Equal(t, "/api/3/billboards/17", cap.path)
	assert.Equal(t, "Summer", cap.body["label"])
}

func TestClient_RemoveHitsEntityPath(t *testing.T) {
	c, cap := newTestServer(t, http.StatusOK, `{}`)

	err := c.Remove(context.Background(), 3, "colors", 8)
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, cap.method)
	assert.Equal(t, "/api/3/colors/8", cap.path)
}

func TestClient_ConflictCarriesGuardMessage(t *testing.T) {
	const guard = "Make sure you removed all products using this color first."
	c, _ := newTestServer(t, http.StatusConflict,
		`{"code":"COLOR_IN_USE","message":"`+guard+`"}`)

	err := c.Remove(context.Background(), 3, "colors", 8)
	require.Error(t, err)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "COLOR_IN_USE", conflict.Code)
	assert.Equal(t, guard, conflict.Message)
}

func TestClient_NonConflictFailureIsRequestError(t *testing.T) {
	c, _ := newTestServer(t, http.StatusUnprocessableEntity,
		`{"code":"VALIDATION","message":"name: Required"}`)

	_, err := c.Create(context.Background(), 3, "sizes", map[string]any{})
	require.Error(t, err)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnprocessableEntity, reqErr.StatusCode)
	assert.Equal(t, "VALIDATION", reqErr.Code)

	var conflict *ConflictError
	assert.False(t, errors.As(err, &conflict))
}

func TestClient_ListSendsPaginationAndSearch(t *testing.T) {
	c, cap := newTestServer(t, http.StatusOK,
		`{"items":[{"id":"1","name":"Small"}],"total":41,"page":3,"page_size":20}`)

	page, err := c.List(context.Background(), 5, "sizes", ListQuery{
		Page:     3,
		PageSize: 20,
		Search:   "Sm",
		Filters:  map[string]string{"category_id": "12"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/5/sizes", cap.path)
	assert.Equal(t, "3", cap.query["page"])
	assert.Equal(t, "20", cap.query["page_size"])
	assert.Equal(t, "Sm", cap.query["q"])
	assert.Equal(t, "12", cap.query["category_id"])

	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(41), page.Total)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 20, page.PageSize)
}

func TestClient_ListOmitsZeroQueryValues(t *testing.T) {
	c, cap := newTestServer(t, http.StatusOK, `{"items":[],"total":0,"page":1,"page_size":20}`)

	_, err := c.List(context.Background(), 5, "orders", ListQuery{})
	require.NoError(t, err)

	assert.NotContains(t, cap.query, "page")
	assert.NotContains(t, cap.query, "page_size")
	assert.NotContains(t, cap.query, "q")
}

func TestClient_GetDecodesEntity(t *testing.T) {
	c, cap := newTestServer(t, http.StatusOK, `{"id":"17","label":"Hero"}`)

	var got map[string]any
	err := c.Get(context.Background(), 2, "billboards", 17, &got)
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, cap.method)
	assert.Equal(t, "/api/2/billboards/17", cap.path)
	assert.Equal(t, "Hero", got["label"])
}

func TestDecode_EmptyBodySuccess(t *testing.T) {
	var target map[string]any
	require.NoError(t, decode(http.StatusNoContent, nil, &target))
	assert.Nil(t, target)
}
