package model

import "time"

// DefaultSignupCredits is the credit grant for a freshly signed-up user.
const DefaultSignupCredits = 4

// User represents an account allowed to clone voices and synthesize speech.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:20;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	FirstName    string    `json:"first_name" gorm:"size:50;not null"`
	LastName     string    `json:"last_name" gorm:"size:50;not null"`
	IsAdmin      bool      `json:"is_admin" gorm:"not null"`
	Credits      int       `json:"credits" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
