package domain

import "time"

// Billboard is a promotional banner: a label over an image. Categories
// reference a billboard for their landing section.
type Billboard struct {
	ID        int64     `json:"id,string" form:"id"`
	StoreID   int64     `gorm:"index" json:"store_id,string" form:"store_id"`
	Label     string    `gorm:"index" json:"label" form:"label"`
	ImageURL  string    `gorm:"size:1024" json:"image_url" form:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Billboard) TableName() string {
	return "billboard"
}
