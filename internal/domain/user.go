package domain

import "time"

// User Model
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                          // Primary key
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`    // Unique login email
	Name      string    `gorm:"size:255;not null" json:"name"`                 // Display name
	Account   *Account  `gorm:"constraint:OnDelete:CASCADE;" json:"-"`        // One-to-one relationship with Account
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
