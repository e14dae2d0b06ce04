package domain

import "time"

// User is the account an evaluation is submitted under. Registration
// and authentication live outside this service; evaluations only need
// an active-user lookup by username.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"size:255;uniqueIndex;not null"`
	Status    string `gorm:"type:enum('active','deleted');default:'active'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
