package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai/jsonschema"
	"gorm.io/gorm"

	"github.com/workmate-ai/workmate/core/types"
	models "github.com/workmate-ai/workmate/dbmodels"
)

func NewAttendanceStatus(db *gorm.DB) *AttendanceStatusAction {
	return &AttendanceStatusAction{db: db}
}

// AttendanceStatusAction reports whether a user is clocked in right now.
type AttendanceStatusAction struct {
	db *gorm.DB
}

func (a *AttendanceStatusAction) Run(ctx context.Context, params types.ActionParams) (types.ActionResult, error) {
	request := struct {
		UserID uint `json:"user_id"`
	}{}
	if err := params.Unmarshal(&request); err != nil {
		return types.ActionResult{}, err
	}

	db := a.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, request.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorResult("Error: User with ID %d not found", request.UserID), nil
		}
		return types.ActionResult{}, err
	}

	var open models.ClockRecord
	err := db.Where("user_id = ? AND clock_out IS NULL", request.UserID).First(&open).Error
	if err == nil {
		duration := time.Now().UTC().Sub(open.ClockIn)
		hours := int(duration.Hours())
		minutes := int(duration.Minutes()) % 60
		return types.ActionResult{Result: fmt.Sprintf("%s is currently clocked in since %s (%dh %dm ago)",
			user.FullName, open.ClockIn.Format(clockLayout), hours, minutes)}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return types.ActionResult{}, err
	}

	var last models.ClockRecord
	err = db.Where("user_id = ? AND clock_out IS NOT NULL", request.UserID).Order("clock_out DESC").First(&last).Error
	if err == nil && last.ClockOut != nil {
		return types.ActionResult{Result: fmt.Sprintf("%s is currently clocked out. Last clocked out at %s",
			user.FullName, last.ClockOut.Format(lastSeenLayout))}, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return types.ActionResult{}, err
	}

	return types.ActionResult{Result: fmt.Sprintf("%s has never clocked in", user.FullName)}, nil
}

func (a *AttendanceStatusAction) Definition() types.ActionDefinition {
	return types.ActionDefinition{
		Name:        "get_attendance_status",
		Description: "Get the current attendance status for a user: clocked in since when, or when they last clocked out.",
		Properties: map[string]jsonschema.Definition{
			"user_id": {
				Type:        jsonschema.Integer,
				Description: "ID of the user to check",
			},
		},
		Required: []string{"user_id"},
	}
}
