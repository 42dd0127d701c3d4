package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ReportTypeAttendance = "attendance"
	ReportTypeTask       = "task"
	ReportTypeWeekly     = "weekly"
)

// Report is a persisted summary produced by a report tool. GeneratedByID is
// nil for scheduler-produced reports.
type Report struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Title         string         `gorm:"type:varchar(255);not null" json:"title"`
	Type          string         `gorm:"type:varchar(50);index" json:"type"` // "attendance", "task" or "weekly"
	Content       datatypes.JSON `json:"content"`
	GeneratedByID *uint          `gorm:"index" json:"generated_by_id"`
	DateFrom      time.Time      `json:"date_from"`
	DateTo        time.Time      `json:"date_to"`
	CreatedAt     time.Time      `json:"created_at"`

	GeneratedBy *User `gorm:"foreignKey:GeneratedByID;references:ID" json:"-"`
}
