package adminapi

// Integration coverage for the store scoped handlers: dependency
// guards and cross-store visibility. These tests need a real
// PostgreSQL database and run only when STOREADMIN_TEST_DSN is set,
// for example:
//
//	STOREADMIN_TEST_DSN="host=127.0.0.1 user=postgres dbname=storeadmin_test sslmode=disable" go test ./internal/adminapi/

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/merchkit/storeadmin/config"
	"github.com/merchkit/storeadmin/internal/domain"
	"github.com/merchkit/storeadmin/internal/events"
	"github.com/merchkit/storeadmin/internal/suggest"
	"github.com/merchkit/storeadmin/internal/webserver"
	"github.com/merchkit/storeadmin/pkg/common"
)

type testAppCtx struct {
	db    *gorm.DB
	bus   *events.Bus
	index *suggest.Index
}

func (a *testAppCtx) Config() *config.AppConfig { return &config.AppConfig{} }

func (a *testAppCtx) DB() *gorm.DB { return a.db }

func (a *testAppCtx) EventBus() *events.Bus { return a.bus }

func (a *testAppCtx) SuggestIndex() *suggest.Index { return a.index }

func (a *testAppCtx) InvalidateSettingsCache() {}

// openGuardTx migrates the test database and hands back a transaction
// that is rolled back on cleanup, so fixtures never leak between runs.
func openGuardTx(t *testing.T) (*gorm.DB, *testAppCtx) {
	t.Helper()
	dsn := os.Getenv("STOREADMIN_TEST_DSN")
	if dsn == "" {
		t.Skip("STOREADMIN_TEST_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))

	tx := db.Begin()
	require.NoError(t, tx.Error)
	t.Cleanup(func() { tx.Rollback() })

	return tx, &testAppCtx{db: tx, bus: events.NewBus(), index: suggest.NewIndex()}
}

func apiContext(appCtx *testAppCtx, method, target string, params map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(method, target, nil), rec)
	c.Set(webserver.ContextKeyDB, appCtx.db)
	c.Set(webserver.ContextKeyApp, appCtx)

	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for k, v := range params {
		names = append(names, k)
		values = append(values, v)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

func seedStore(t *testing.T, tx *gorm.DB, name string) domain.Store {
	t.Helper()
	s := domain.Store{ID: common.UUIDint64(), Name: name, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, tx.Create(&s).Error)
	return s
}

func seedBillboard(t *testing.T, tx *gorm.DB, storeID int64, label string) domain.Billboard {
	t.Helper()
	b := domain.Billboard{
		ID: common.UUIDint64(), StoreID: storeID, Label: label,
		ImageURL: "https://cdn.example.com/" + label + ".png",
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, tx.Create(&b).Error)
	return b
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apiError {
	t.Helper()
	var body apiError
	require.NoError(t, fastJson.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestDeleteBillboard_GuardedByCategories(t *testing.T) {
	tx, appCtx := openGuardTx(t)

	store := seedStore(t, tx, "Guard Store")
	billboard := seedBillboard(t, tx, store.ID, "summer-sale")
	category := domain.Category{
		ID: common.UUIDint64(), StoreID: store.ID, BillboardID: billboard.ID,
		Name: "Shirts", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, tx.Create(&category).Error)

	params := map[string]string{
		"store_id": strconv.FormatInt(store.ID, 10),
		"id":       strconv.FormatInt(billboard.ID, 10),
	}

	c, rec := apiContext(appCtx, http.MethodDelete, "/api/billboards", params)
	require.NoError(t, storeGuard(deleteBillboard)(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "BILLBOARD_IN_USE", body.Code)
	assert.Equal(t, "Make sure you removed all categories using this billboard first.", body.Message)

	// Removing the dependent category unblocks the delete.
	require.NoError(t, tx.Delete(&category).Error)

	c, rec = apiContext(appCtx, http.MethodDelete, "/api/billboards", params)
	require.NoError(t, storeGuard(deleteBillboard)(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var count int64
	tx.Model(&domain.Billboard{}).Where("id = ?", billboard.ID).Count(&count)
	assert.Zero(t, count)
}

func TestDeleteColor_GuardedByProducts(t *testing.T) {
	tx, appCtx := openGuardTx(t)

	store := seedStore(t, tx, "Color Guard Store")
	billboard := seedBillboard(t, tx, store.ID, "main")
	category := domain.Category{
		ID: common.UUIDint64(), StoreID: store.ID, BillboardID: billboard.ID,
		Name: "Shoes", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, tx.Create(&category).Error)
	size := domain.Size{
		ID: common.UUIDint64(), StoreID: store.ID, Name: "Large", Value: "L",
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, tx.Create(&size).Error)
	color := domain.Color{
		ID: common.UUIDint64(), StoreID: store.ID, Name: "Crimson", Value: "#DC143C",
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, tx.Create(&color).Error)
	product := domain.Product{
		ID: common.UUIDint64(), StoreID: store.ID,
		CategoryID: category.ID, SizeID: size.ID, ColorID: color.ID,
		Name: "Runner", Price: decimal.NewFromInt(80),
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, tx.Create(&product).Error)

	params := map[string]string{
		"store_id": strconv.FormatInt(store.ID, 10),
		"id":       strconv.FormatInt(color.ID, 10),
	}

	c, rec := apiContext(appCtx, http.MethodDelete, "/api/colors", params)
	require.NoError(t, storeGuard(deleteColor)(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "COLOR_IN_USE", body.Code)
	assert.Equal(t, "Make sure you removed all products using this color first.", body.Message)

	require.NoError(t, tx.Delete(&product).Error)

	c, rec = apiContext(appCtx, http.MethodDelete, "/api/colors", params)
	require.NoError(t, storeGuard(deleteColor)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStoreScoping_ForeignRowsInvisible(t *testing.T) {
	tx, appCtx := openGuardTx(t)

	mine := seedStore(t, tx, "Mine")
	theirs := seedStore(t, tx, "Theirs")
	foreign := seedBillboard(t, tx, theirs.ID, "not-yours")

	// Fetching a foreign billboard through my store 404s.
	c, rec := apiContext(appCtx, http.MethodGet, "/api/billboards", map[string]string{
		"store_id": strconv.FormatInt(mine.ID, 10),
		"id":       strconv.FormatInt(foreign.ID, 10),
	})
	require.NoError(t, storeGuard(getBillboard)(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "BILLBOARD_NOT_FOUND", decodeError(t, rec).Code)

	// Listing my store never shows the foreign row.
	c, rec = apiContext(appCtx, http.MethodGet, "/api/billboards", map[string]string{
		"store_id": strconv.FormatInt(mine.ID, 10),
	})
	require.NoError(t, storeGuard(listBillboards)(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var mineList struct {
		Items []domain.Billboard `json:"items"`
		Total int64              `json:"total"`
	}
	require.NoError(t, fastJson.Unmarshal(rec.Body.Bytes(), &mineList))
	assert.Zero(t, mineList.Total)
	assert.Empty(t, mineList.Items)

	c, rec = apiContext(appCtx, http.MethodGet, "/api/billboards", map[string]string{
		"store_id": strconv.FormatInt(theirs.ID, 10),
	})
	require.NoError(t, storeGuard(listBillboards)(c))

	var theirList struct {
		Items []domain.Billboard `json:"items"`
		Total int64              `json:"total"`
	}
	require.NoError(t, fastJson.Unmarshal(rec.Body.Bytes(), &theirList))
	assert.Equal(t, int64(1), theirList.Total)
	require.Len(t, theirList.Items, 1)
	assert.Equal(t, foreign.ID, theirList.Items[0].ID)
}
