package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is created unpaid by checkout and marked paid by the payment
// webhook, which also fills phone and address. The admin only lists
// and deletes orders; there is no order form.
type Order struct {
	ID           int64  `json:"id,string" form:"id"`
	StoreID      int64  `gorm:"index" json:"store_id,string" form:"store_id"`
	IsPaid       bool   `gorm:"index" json:"is_paid" form:"is_paid"`
	Phone        string `json:"phone" form:"phone"`
	Address      string `json:"address" form:"address"`
	SessionToken string `gorm:"size:64;index" json:"-"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty" csv:"-"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "store_order"
}

// Total sums the prices of the order's item products. Items must be
// preloaded with their products.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Product.Price)
	}
	return total
}

// OrderItem links an order to one purchased product.
type OrderItem struct {
	ID        int64 `json:"id,string" form:"id"`
	OrderID   int64 `gorm:"index" json:"order_id,string" form:"order_id"`
	ProductID int64 `gorm:"index" json:"product_id,string" form:"product_id"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty" csv:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (OrderItem) TableName() string {
	return "store_order_item"
}
