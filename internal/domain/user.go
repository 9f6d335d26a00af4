package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that can own todos. Passwords are stored as bcrypt
// hashes only.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string {
	return "users"
}
