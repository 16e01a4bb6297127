package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/merchkit/storeadmin/internal/domain"
	"github.com/merchkit/storeadmin/internal/events"
)

// stubOrderRepo keeps orders in memory, indexed by id and session token.
type stubOrderRepo struct {
	mu      sync.Mutex
	orders  map[int64]*domain.Order
	byToken map[string]*domain.Order

	markPaidCalls int
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		orders:  make(map[int64]*domain.Order),
		byToken: make(map[string]*domain.Order),
	}
}

func (r *stubOrderRepo) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	r.byToken[order.SessionToken] = order
	return nil
}

func (r *stubOrderRepo) GetBySessionToken(_ context.Context, token string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, oko := r.byToken[token]
	if !oko {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (r *stubOrderRepo) MarkPaid(_ context.Context, id int64, phone, address string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markPaidCalls++
	order, oko := r.orders[id]
	if !oko {
		return gorm.ErrRecordNotFound
	}
	order.IsPaid = true
	order.Phone = phone
	order.Address = address
	return nil
}

func (r *stubOrderRepo) ExpiredUnpaid(_ context.Context, cutoff time.Time, limit int) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, order := range r.orders {
		if !order.IsPaid && order.CreatedAt.Before(cutoff) && len(out) < limit {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, oko := r.orders[id]
	if !oko {
		return gorm.ErrRecordNotFound
	}
	delete(r.byToken, order.SessionToken)
	delete(r.orders, id)
	return nil
}

func (r *stubOrderRepo) get(id int64) *domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[id]
}

func (r *stubOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

// stubProductRepo holds a fixed catalog keyed by product id.
type stubProductRepo struct {
	mu       sync.Mutex
	products map[int64]domain.Product
	archived []int64
}

func newStubProductRepo(products ...domain.Product) *stubProductRepo {
	r := &stubProductRepo{products: make(map[int64]domain.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *stubProductRepo) GetSellable(_ context.Context, storeID int64, ids []int64) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[int64]struct{}, len(ids))
	var out []domain.Product
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		p, okp := r.products[id]
		if okp && p.StoreID == storeID && !p.IsArchived {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Archive(_ context.Context, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		p := r.products[id]
		p.IsArchived = true
		r.products[id] = p
		r.archived = append(r.archived, id)
	}
	return nil
}

func (r *stubProductRepo) archivedIDs() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.archived...)
}

// stubSettings resolves "category.key" lookups from a plain map.
type stubSettings map[string]string

func (s stubSettings) GetSettingsStringValue(category, key string) string {
	return s[category+"."+key]
}

func price(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func catalogProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, StoreID: 42, Name: "Mug", Price: price("19.99")},
		{ID: 2, StoreID: 42, Name: "Poster", Price: price("9.99")},
		{ID: 3, StoreID: 42, Name: "Retired Cap", Price: price("14.99"), IsArchived: true},
		{ID: 4, StoreID: 77, Name: "Other Store Mug", Price: price("5.00")},
	}
}

func newTestService(t *testing.T, orders *stubOrderRepo, products *stubProductRepo, ttl time.Duration) *Service {
	t.Helper()
	return NewService(nil, orders, products, events.NewBus(), nil, stubSettings{}, "https://shop.example.com", ttl)
}

func TestCreateSession_EmptyCart(t *testing.T) {
	svc := newTestService(t, newStubOrderRepo(), newStubProductRepo(catalogProducts()...), time.Hour)

	_, err := svc.CreateSession(context.Background(), 42, nil)
	assert.True(t, errors.Is(err, ErrNoProducts))
}

func TestCreateSession_AllProductsUnsellable(t *testing.T) {
	svc := newTestService(t, newStubOrderRepo(), newStubProductRepo(catalogProducts()...), time.Hour)

	// Archived products are filtered out before the order opens.
	_, err := svc.CreateSession(context.Background(), 42, []int64{3})
	assert.True(t, errors.Is(err, ErrNoProducts))
}

func TestCreateSession_PartiallyUnknownCart(t *testing.T) {
	svc := newTestService(t, newStubOrderRepo(), newStubProductRepo(catalogProducts()...), time.Hour)

	for _, ids := range [][]int64{
		{1, 999}, // nonexistent
		{1, 3},   // archived
		{1, 4},   // belongs to another store
	} {
		_, err := svc.CreateSession(context.Background(), 42, ids)
		assert.True(t, errors.Is(err, ErrUnknownProducts), "ids %v", ids)
	}
}

func TestCreateSession_OpensUnpaidOrder(t *testing.T) {
	orders := newStubOrderRepo()
	svc := newTestService(t, orders, newStubProductRepo(catalogProducts()...), time.Hour)

	session, err := svc.CreateSession(context.Background(), 42, []int64{1, 2})
	require.NoError(t, err)

	assert.NotZero(t, session.OrderID)
	assert.Equal(t, "29.98", session.Total)
	assert.Equal(t, "USD", session.Currency)
	assert.Equal(t, "https://shop.example.com/cart?success=1", session.SuccessURL)
	assert.Equal(t, "https://shop.example.com/cart?canceled=1", session.CancelURL)

	_, err = uuid.Parse(session.SessionToken)
	assert.NoError(t, err, "session token should be a uuid")

	order := orders.get(session.OrderID)
	require.NotNil(t, order)
	assert.False(t, order.IsPaid)
	assert.Equal(t, int64(42), order.StoreID)
	require.Len(t, order.Items, 2)
	assert.Equal(t, order.CreatedAt.Add(time.Hour), session.ExpiresAt)
}

func TestCreateSession_PaymentURLFromSettings(t *testing.T) {
	orders := newStubOrderRepo()
	settings := stubSettings{"payment.provider_url": "https://pay.example.com/session/"}
	svc := NewService(nil, orders, newStubProductRepo(catalogProducts()...), events.NewBus(), nil, settings, "https://shop.example.com", time.Hour)

	session, err := svc.CreateSession(context.Background(), 42, []int64{1})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/session?session="+session.SessionToken, session.PaymentURL)
}

func TestCreateSession_NoProviderConfigured(t *testing.T) {
	svc := newTestService(t, newStubOrderRepo(), newStubProductRepo(catalogProducts()...), time.Hour)

	session, err := svc.CreateSession(context.Background(), 42, []int64{1})
	require.NoError(t, err)
	assert.Empty(t, session.PaymentURL)
}

func TestCreateSession_CollapsesDuplicateIDs(t *testing.T) {
	orders := newStubOrderRepo()
	svc := newTestService(t, orders, newStubProductRepo(catalogProducts()...), time.Hour)

	session, err := svc.CreateSession(context.Background(), 42, []int64{1, 1, 1})
	require.NoError(t, err)

	assert.Equal(t, "19.99", session.Total)
	require.Len(t, orders.get(session.OrderID).Items, 1)
}

func TestService_OrderTTLAdjustsAtRuntime(t *testing.T) {
	svc := newTestService(t, newStubOrderRepo(), newStubProductRepo(), 0)
	assert.Equal(t, 24*time.Hour, svc.OrderTTL(), "zero config falls back to a day")

	svc.SetOrderTTL(45 * time.Minute)
	assert.Equal(t, 45*time.Minute, svc.OrderTTL())

	svc.SetOrderTTL(-time.Minute)
	assert.Equal(t, 45*time.Minute, svc.OrderTTL(), "non positive values are ignored")
}

func TestSweepExpired_RemovesOnlyStaleUnpaidOrders(t *testing.T) {
	orders := newStubOrderRepo()
	svc := newTestService(t, orders, newStubProductRepo(), time.Hour)

	seed := func(id int64, age time.Duration, paid bool) {
		require.NoError(t, orders.Create(context.Background(), &domain.Order{
			ID:           id,
			StoreID:      42,
			IsPaid:       paid,
			SessionToken: uuid.NewString(),
			CreatedAt:    time.Now().Add(-age),
		}))
	}
	seed(1, 2*time.Hour, false)    // expired, unpaid: swept
	seed(2, 10*time.Minute, false) // fresh, unpaid: kept
	seed(3, 3*time.Hour, true)     // old but paid: kept

	svc.SweepExpired(context.Background())

	assert.Equal(t, 2, orders.count())
	assert.Nil(t, orders.get(1))
	assert.NotNil(t, orders.get(2))
	assert.NotNil(t, orders.get(3))
}

func TestSweepExpired_UsesCurrentTTL(t *testing.T) {
	orders := newStubOrderRepo()
	svc := newTestService(t, orders, newStubProductRepo(), time.Hour)

	require.NoError(t, orders.Create(context.Background(), &domain.Order{
		ID:           1,
		StoreID:      42,
		SessionToken: uuid.NewString(),
		CreatedAt:    time.Now().Add(-2 * time.Hour),
	}))

	// Raising the TTL past the order's age keeps it alive.
	svc.SetOrderTTL(6 * time.Hour)
	svc.SweepExpired(context.Background())
	assert.Equal(t, 1, orders.count())

	svc.SetOrderTTL(time.Hour)
	svc.SweepExpired(context.Background())
	assert.Zero(t, orders.count())
}
