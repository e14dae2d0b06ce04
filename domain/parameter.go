package domain

import "time"

// Declared file types accepted at submission. Legacy "doc" is not a
// valid declared type but is still handled at extraction time.
const (
	FileTypePDF  = "pdf"
	FileTypeTXT  = "txt"
	FileTypeDOC  = "doc"
	FileTypeDOCX = "docx"
)

// Parameter is the input bundle for one evaluation: the stored upload
// plus the texts the candidate is scored against. Immutable after
// creation except for soft delete.
type Parameter struct {
	ID             uint   `gorm:"primaryKey"`
	FileName       string `gorm:"size:255;not null"`
	FileType       string `gorm:"type:enum('pdf','txt','docx');default:'pdf'"`
	JobDescription string `gorm:"type:text;not null"`
	StudyCase      string `gorm:"type:text;not null"`
	Status         string `gorm:"type:enum('active','deleted');default:'active'"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
