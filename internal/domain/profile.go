package domain

import "time"

// Profile Model
type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"-"`                 // Primary key
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"` // Foreign key to User, one profile per user
	FirstName string    `gorm:"size:50;not null;default:''" json:"first_name"`
	LastName  string    `gorm:"size:50;not null;default:''" json:"last_name"`
	Phone     string    `gorm:"size:15;not null;default:''" json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
