package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	DocumentTypePolicy    = "policy"
	DocumentTypeProcedure = "procedure"
	DocumentTypeGuideline = "guideline"
)

// CompanyDocument is a policy text indexed into the vector store. EmbeddingID
// is the chunk id prefix written back after indexing.
type CompanyDocument struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"type:varchar(255);not null" json:"title"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	DocumentType string         `gorm:"type:varchar(50);index" json:"document_type"` // "policy", "procedure" or "guideline"
	Category     string         `gorm:"type:varchar(255);index" json:"category"`     // "hr", "it", "finance"
	Version      string         `gorm:"type:varchar(50)" json:"version"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	EmbeddingID  string         `gorm:"type:varchar(255)" json:"embedding_id"`
	Metadata     datatypes.JSON `json:"metadata"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
