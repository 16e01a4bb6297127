package checkout

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/merchkit/storeadmin/internal/domain"
)

// OrderRepository handles database operations for checkout orders
type OrderRepository interface {
	// Create inserts a new order with its items
	Create(ctx context.Context, order *domain.Order) error

	// GetBySessionToken retrieves an order by its checkout session token
	GetBySessionToken(ctx context.Context, token string) (*domain.Order, error)

	// MarkPaid flips the order to paid and stores the buyer contact
	MarkPaid(ctx context.Context, id int64, phone, address string) error

	// ExpiredUnpaid lists unpaid orders created before the cutoff
	ExpiredUnpaid(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Order, error)

	// Delete removes an order and its items
	Delete(ctx context.Context, id int64) error
}

// ProductRepository handles product lookups for checkout
type ProductRepository interface {
	// GetSellable retrieves the store's non archived products among ids
	GetSellable(ctx context.Context, storeID int64, ids []int64) ([]domain.Product, error)

	// Archive marks the given products as archived
	Archive(ctx context.Context, ids []int64) error
}

// GormOrderRepository is the GORM implementation of OrderRepository
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
}

func (r *GormOrderRepository) GetBySessionToken(ctx context.Context, token string) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items").Preload("Items.Product").
		Where("session_token = ?", token).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) MarkPaid(ctx context.Context, id int64, phone, address string) error {
	return r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_paid":    true,
			"phone":      phone,
			"address":    address,
			"updated_at": time.Now(),
		}).Error
}

func (r *GormOrderRepository) ExpiredUnpaid(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := r.db.WithContext(ctx).
		Where("is_paid = ? AND created_at < ?", false, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *GormOrderRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&domain.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Order{}).Error
	})
}

// GormProductRepository is the GORM implementation of ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) GetSellable(ctx context.Context, storeID int64, ids []int64) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND id IN ? AND is_archived = ?", storeID, ids, false).
		Find(&products).Error
	return products, err
}

func (r *GormProductRepository) Archive(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"is_archived": true, "updated_at": time.Now()}).Error
}
