package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item. Price is stored as decimal(10,2);
// never use floats for money. Archived products stay out of the
// storefront and of checkout; featured products surface on the landing
// page.
type Product struct {
	ID         int64           `json:"id,string" form:"id"`
	StoreID    int64           `gorm:"index" json:"store_id,string" form:"store_id"`
	CategoryID int64           `gorm:"index" json:"category_id,string" form:"category_id"`
	SizeID     int64           `gorm:"index" json:"size_id,string" form:"size_id"`
	ColorID    int64           `gorm:"index" json:"color_id,string" form:"color_id"`
	Name       string          `gorm:"index" json:"name" form:"name"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2)" json:"price" form:"price"`
	IsFeatured bool            `json:"is_featured" form:"is_featured"`
	IsArchived bool            `json:"is_archived" form:"is_archived"`

	Category Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty" csv:"-"`
	Size     Size           `gorm:"foreignKey:SizeID" json:"size,omitempty" csv:"-"`
	Color    Color          `gorm:"foreignKey:ColorID" json:"color,omitempty" csv:"-"`
	Images   []ProductImage `gorm:"foreignKey:ProductID" json:"images,omitempty" csv:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "product"
}

// ProductImage is one image URL attached to a product.
type ProductImage struct {
	ID        int64     `json:"id,string" form:"id"`
	ProductID int64     `gorm:"index" json:"product_id,string" form:"product_id"`
	URL       string    `gorm:"size:1024" json:"url" form:"url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (ProductImage) TableName() string {
	return "product_image"
}
