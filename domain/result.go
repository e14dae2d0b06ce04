package domain

import "time"

// Result holds the validated scoring output for a successful Process.
// CVMatchRate is in [0,1], ProjectScore in [1,10]; both ranges are
// enforced before a Result row is ever written.
type Result struct {
	ID              uint    `gorm:"primaryKey"`
	CVMatchRate     float64 `gorm:"column:cv_match_rate"`
	CVFeedback      string  `gorm:"column:cv_feedback;type:text"`
	ProjectScore    float64
	ProjectFeedback string  `gorm:"type:text"`
	OverallSummary  string  `gorm:"type:text"`
	Status          string  `gorm:"type:enum('active','deleted');default:'active'"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
