package models

import (
	"time"
)

// User is an account holder. Records are immutable after registration;
// there is no update or delete path.
type User struct {
	ID           string    `gorm:"type:text;primaryKey" json:"id"`
	Username     string    `gorm:"not null;size:255;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
