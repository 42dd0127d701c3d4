package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	AttendanceClockedIn  = "clocked_in"
	AttendanceClockedOut = "clocked_out"
	AttendanceBreak      = "break"
	AttendanceLunch      = "lunch"
)

// ClockRecord is one attendance interval. While the record is open (no clock
// out yet) OpenMarker holds the user id; closing the record nulls it. The
// unique index on OpenMarker is what enforces at most one open record per
// user, so two concurrent clock-ins cannot both commit.
type ClockRecord struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"index;not null" json:"user_id"`
	ClockIn    time.Time      `gorm:"not null;index" json:"clock_in"`
	ClockOut   *time.Time     `json:"clock_out"`
	Status     string         `gorm:"type:varchar(50);default:clocked_in" json:"status"` // "clocked_in", "clocked_out", "break", "lunch"
	Location   datatypes.JSON `json:"location"`                                          // {"lat": 0.0, "lng": 0.0, "address": "Office"}
	Notes      string         `gorm:"type:text" json:"notes"`
	TotalHours *float64       `json:"total_hours"`
	OpenMarker *uint          `gorm:"uniqueIndex" json:"-"`

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}
