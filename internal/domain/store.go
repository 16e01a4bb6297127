package domain

import "time"

// Store is the tenant boundary. Every catalog entity and order belongs
// to exactly one store, and every admin API route is scoped by store id.
type Store struct {
	ID        int64     `json:"id,string" form:"id"`
	Name      string    `gorm:"index" json:"name" form:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Store) TableName() string {
	return "store"
}
