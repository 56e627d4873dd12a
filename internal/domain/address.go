package domain

import "time"

// Address Model
type Address struct {
	ID          uint      `gorm:"primaryKey" json:"id"`          // Primary key
	UserID      uint      `gorm:"index;not null" json:"user_id"` // Foreign key to User
	AddressType string    `gorm:"size:50" json:"address_type"`   // e.g. home, work
	Street      string    `gorm:"size:50" json:"street"`
	City        string    `gorm:"size:50" json:"city"`
	Status      string    `gorm:"size:50" json:"status"`
	Country     string    `gorm:"size:50" json:"country"`
	PostIndex   string    `gorm:"size:10" json:"post_index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
