package domain

import "time"

// Request is one row of the AI usage ledger: a single LLM invocation
// attempt for a Process. Rows are append-only and never mutated;
// TokenUsed is 0 when the call never completed.
type Request struct {
	ID        uint   `gorm:"primaryKey"`
	ProcessID uint   `gorm:"not null"`
	TokenUsed int    `gorm:"column:token_used"`
	Status    string `gorm:"type:enum('active','deleted');default:'active'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
