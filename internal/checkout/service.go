// Package checkout turns storefront carts into orders and settles them
// through the payment webhook. Orders start unpaid; the webhook marks
// them paid, and a sweeper reclaims sessions that never settle.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/merchkit/storeadmin/internal/domain"
	"github.com/merchkit/storeadmin/internal/events"
	"github.com/merchkit/storeadmin/pkg/common"
	"github.com/merchkit/storeadmin/pkg/metrics"
)

var (
	ErrNoProducts      = errors.New("checkout: no sellable products in request")
	ErrUnknownProducts = errors.New("checkout: some products do not exist or are archived")
)

// Session is what the storefront needs to send the buyer to payment.
type Session struct {
	OrderID      int64     `json:"order_id,string"`
	SessionToken string    `json:"session_token"`
	Total        string    `json:"total"`
	Currency     string    `json:"currency"`
	ExpiresAt    time.Time `json:"expires_at"`
	PaymentURL   string    `json:"payment_url,omitempty"`
	SuccessURL   string    `json:"success_url"`
	CancelURL    string    `json:"cancel_url"`
}

// Service owns checkout sessions: creation, settlement and expiry.
type Service struct {
	db          *gorm.DB
	orderRepo   OrderRepository
	productRepo ProductRepository
	bus         *events.Bus
	dedupe      *EventDedupe
	settings    SettingsReader
	publicURL   string
	orderTTL    atomic.Int64 // nanoseconds, adjustable at runtime

	sweepTicker *time.Ticker
	stopChan    chan struct{}
}

// SettingsReader exposes the runtime settings the service needs.
type SettingsReader interface {
	GetSettingsStringValue(category, key string) string
}

// NewService creates a checkout service
func NewService(
	db *gorm.DB,
	orderRepo OrderRepository,
	productRepo ProductRepository,
	bus *events.Bus,
	dedupe *EventDedupe,
	settings SettingsReader,
	publicURL string,
	orderTTL time.Duration,
) *Service {
	if orderTTL <= 0 {
		orderTTL = 24 * time.Hour
	}
	s := &Service{
		db:          db,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		bus:         bus,
		dedupe:      dedupe,
		settings:    settings,
		publicURL:   publicURL,
		stopChan:    make(chan struct{}),
	}
	s.orderTTL.Store(int64(orderTTL))
	return s
}

// OrderTTL returns the current unpaid order lifetime.
func (s *Service) OrderTTL() time.Duration {
	return time.Duration(s.orderTTL.Load())
}

// SetOrderTTL adjusts the unpaid order lifetime; the next sweep and
// session use the new value.
func (s *Service) SetOrderTTL(d time.Duration) {
	if d > 0 {
		s.orderTTL.Store(int64(d))
	}
}

// CreateSession validates the cart and opens an unpaid order.
func (s *Service) CreateSession(ctx context.Context, storeID int64, productIDs []int64) (*Session, error) {
	if len(productIDs) == 0 {
		return nil, ErrNoProducts
	}

	products, err := s.productRepo.GetSellable(ctx, storeID, productIDs)
	if err != nil {
		return nil, errors.Wrap(err, "load products")
	}
	if len(products) == 0 {
		return nil, ErrNoProducts
	}
	if len(products) != len(uniqueIDs(productIDs)) {
		return nil, ErrUnknownProducts
	}

	order := &domain.Order{
		ID:           common.UUIDint64(),
		StoreID:      storeID,
		IsPaid:       false,
		SessionToken: uuid.NewString(),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	total := decimal.Zero
	for _, p := range products {
		order.Items = append(order.Items, domain.OrderItem{
			ID:        common.UUIDint64(),
			OrderID:   order.ID,
			ProductID: p.ID,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		})
		total = total.Add(p.Price)
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	metrics.AddCounter(metrics.OrderCreateTotal, 1)
	zap.S().Infof("checkout session opened: store=%d order=%d items=%d", storeID, order.ID, len(order.Items))

	session := &Session{
		OrderID:      order.ID,
		SessionToken: order.SessionToken,
		Total:        total.StringFixed(2),
		Currency:     "USD",
		ExpiresAt:    order.CreatedAt.Add(s.OrderTTL()),
		SuccessURL:   fmt.Sprintf("%s/cart?success=1", s.publicURL),
		CancelURL:    fmt.Sprintf("%s/cart?canceled=1", s.publicURL),
	}
	if base := s.settings.GetSettingsStringValue("payment", "provider_url"); base != "" {
		session.PaymentURL = fmt.Sprintf("%s?session=%s", strings.TrimRight(base, "/"), order.SessionToken)
	}
	return session, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// settle marks the order paid, archives the purchased products and
// fans out the paid event. Safe to call once per order; the webhook
// dedupe layer keeps retries away.
func (s *Service) settle(ctx context.Context, order *domain.Order, phone, address string) error {
	if err := s.orderRepo.MarkPaid(ctx, order.ID, phone, address); err != nil {
		return errors.Wrap(err, "mark order paid")
	}

	productIDs := make([]int64, 0, len(order.Items))
	for _, item := range order.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	if err := s.productRepo.Archive(ctx, productIDs); err != nil {
		zap.L().Error("failed to archive purchased products", zap.Int64("order_id", order.ID), zap.Error(err))
	}

	total := order.Total()
	totalCents := total.Mul(decimal.NewFromInt(100)).IntPart()
	metrics.AddCounter(metrics.OrderPaidTotal, 1)
	metrics.AddCounter(metrics.RevenueCents, totalCents)

	s.bus.PublishOrderPaid(events.OrderPaid{
		StoreID:    order.StoreID,
		OrderID:    order.ID,
		Phone:      phone,
		Address:    address,
		TotalCents: totalCents,
	})

	zap.S().Infof("order settled: store=%d order=%d total=%s", order.StoreID, order.ID, total.StringFixed(2))
	return nil
}

// Start begins the expired session sweeper
// interval: how often to look for unpaid orders past their TTL
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	s.sweepTicker = time.NewTicker(interval)
	go s.sweepLoop(ctx)

	zap.L().Info("checkout sweeper started",
		zap.Duration("sweep_interval", interval),
		zap.Duration("order_ttl", s.OrderTTL()),
	)
}

// Stop gracefully stops the sweeper
func (s *Service) Stop() {
	if s.sweepTicker != nil {
		s.sweepTicker.Stop()
	}
	close(s.stopChan)
	zap.L().Info("checkout sweeper stopped")
}

func (s *Service) sweepLoop(ctx context.Context) {
	for {
		select {
		case <-s.sweepTicker.C:
			s.SweepExpired(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// SweepExpired removes unpaid orders older than the TTL.
func (s *Service) SweepExpired(ctx context.Context) {
	cutoff := time.Now().Add(-s.OrderTTL())
	expired, err := s.orderRepo.ExpiredUnpaid(ctx, cutoff, 200)
	if err != nil {
		zap.L().Error("failed to list expired orders", zap.Error(err))
		return
	}
	if len(expired) == 0 {
		return
	}

	removed := 0
	for _, order := range expired {
		if err := s.orderRepo.Delete(ctx, order.ID); err != nil {
			zap.L().Error("failed to delete expired order", zap.Int64("order_id", order.ID), zap.Error(err))
			continue
		}
		removed++
	}
	zap.S().Infof("checkout sweep removed %d expired orders", removed)
}
