package domain

import "time"

// Order Model
type Order struct {
	ID        uint      `gorm:"primaryKey" json:"id"`           // Primary key
	OwnerID   uint      `gorm:"index;not null" json:"owner_id"` // Foreign key to User
	Name      string    `gorm:"size:50;not null" json:"name"`   // Order name
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
