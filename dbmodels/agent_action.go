package models

import (
	"time"

	"gorm.io/datatypes"
)

// AgentAction is the audit record of one agent invocation. Rows are append
// only: nothing mutates them after insert except the one-way override
// transition, which may happen exactly once.
type AgentAction struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	AgentName       string         `gorm:"type:varchar(255);not null;index" json:"agent_name"`
	ActionType      string         `gorm:"type:varchar(255);not null" json:"action_type"`
	InputData       datatypes.JSON `json:"input_data"`
	OutputData      datatypes.JSON `json:"output_data"`
	Success         bool           `gorm:"index" json:"success"`
	ErrorMessage    string         `gorm:"type:text" json:"error_message"`
	UserID          *uint          `gorm:"index" json:"user_id"`
	ExecutionTimeMS int64          `json:"execution_time_ms"`
	Timestamp       time.Time      `gorm:"autoCreateTime;index" json:"timestamp"`

	Overridden       bool           `gorm:"default:false" json:"overridden"`
	OverriddenByID   *uint          `json:"overridden_by_id"`
	OverrideReason   string         `gorm:"type:text" json:"override_reason"`
	CorrectiveAction datatypes.JSON `json:"corrective_action"`

	User         *User `gorm:"foreignKey:UserID;references:ID" json:"-"`
	OverriddenBy *User `gorm:"foreignKey:OverriddenByID;references:ID" json:"-"`
}
