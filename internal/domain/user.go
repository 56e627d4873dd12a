package domain

import "time"

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User Model
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`                                         // Primary key
	Username     string    `gorm:"size:15;uniqueIndex;not null" json:"username"`                 // Unique login, stored lowercase
	Email        string    `gorm:"size:254;uniqueIndex;not null" json:"email"`                   // Unique email, stored lowercase
	PasswordHash string    `gorm:"size:256;not null" json:"-"`                                   // bcrypt hash, never serialized
	Role         string    `gorm:"size:16;not null;default:user" json:"role"`                    // Role: user or admin
	Profile      *Profile  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"profile"` // One-to-one relationship with Profile
	Addresses    []Address `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`       // One-to-many relationship with Address
	Orders       []Order   `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE;" json:"-"`     // One-to-many relationship with Order
	CreatedAt    time.Time `json:"created_at"`                                                   // Creation timestamp
	UpdatedAt    time.Time `json:"updated_at"`                                                   // Last update timestamp
}

// IsAdmin reports whether the user holds the admin role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
