package domain

import "time"

// Lifecycle states of an evaluation Process.
const (
	ProcessPending    = "pending"
	ProcessQueued     = "queued"
	ProcessProcessing = "processing"
	ProcessSuccess    = "success"
	ProcessFailed     = "failed"
	ProcessCanceled   = "canceled"
)

// Soft-delete states shared by every collection. Records are flagged
// deleted instead of being removed physically.
const (
	RecordActive  = "active"
	RecordDeleted = "deleted"
)

// Process tracks one evaluation through its lifecycle. ResultID stays
// NULL until the process reaches success; FailureReason is set only
// when it reaches failed.
type Process struct {
	ID            uint    `gorm:"primaryKey"`
	StatusProcess string  `gorm:"column:status_process;type:enum('pending','queued','processing','success','failed','canceled');default:'pending'"`
	FailureReason string  `gorm:"type:text"`
	UserID        uint    `gorm:"not null"`
	ParameterID   uint    `gorm:"not null"`
	ResultID      *uint
	Result        *Result `gorm:"foreignKey:ResultID"`
	Status        string  `gorm:"type:enum('active','deleted');default:'active'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
