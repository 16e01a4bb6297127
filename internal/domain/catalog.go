package domain

import "time"

// Catalog reference entities: categories, sizes and colors. Products
// reference one of each; all are store scoped.

type Category struct {
	ID          int64     `json:"id,string" form:"id"`
	StoreID     int64     `gorm:"index" json:"store_id,string" form:"store_id"`
	BillboardID int64     `gorm:"index" json:"billboard_id,string" form:"billboard_id"`
	Name        string    `gorm:"index" json:"name" form:"name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Category) TableName() string {
	return "category"
}

type Size struct {
	ID        int64     `json:"id,string" form:"id"`
	StoreID   int64     `gorm:"index" json:"store_id,string" form:"store_id"`
	Name      string    `gorm:"index" json:"name" form:"name"`
	Value     string    `json:"value" form:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Size) TableName() string {
	return "size"
}

// Color value holds a hex code (#fff or #ffffff).
type Color struct {
	ID        int64     `json:"id,string" form:"id"`
	StoreID   int64     `gorm:"index" json:"store_id,string" form:"store_id"`
	Name      string    `gorm:"index" json:"name" form:"name"`
	Value     string    `gorm:"size:16" json:"value" form:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Color) TableName() string {
	return "color"
}
