package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai/jsonschema"
	"gorm.io/gorm"

	"github.com/workmate-ai/workmate/core/types"
	models "github.com/workmate-ai/workmate/dbmodels"
)

func NewClockOut(db *gorm.DB) *ClockOutAction {
	return &ClockOutAction{db: db}
}

// ClockOutAction closes the open attendance record and computes hours worked.
type ClockOutAction struct {
	db *gorm.DB
}

func (a *ClockOutAction) Run(ctx context.Context, params types.ActionParams) (types.ActionResult, error) {
	request := struct {
		UserID uint   `json:"user_id"`
		Notes  string `json:"notes"`
	}{}
	if err := params.Unmarshal(&request); err != nil {
		return types.ActionResult{}, err
	}

	var result types.ActionResult
	now := time.Now().UTC()

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, request.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result = errorResult("Error: User with ID %d not found", request.UserID)
				return nil
			}
			return err
		}

		var record models.ClockRecord
		if err := tx.Where("user_id = ? AND clock_out IS NULL", request.UserID).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result = errorResult("Error: %s is not currently clocked in", user.FullName)
				return nil
			}
			return err
		}

		hours := round2(now.Sub(record.ClockIn).Seconds() / 3600)

		notes := record.Notes
		if request.Notes != "" {
			notes = strings.TrimSpace(notes + "\nClock out: " + request.Notes)
		}

		updates := map[string]interface{}{
			"clock_out":   now,
			"status":      models.AttendanceClockedOut,
			"total_hours": hours,
			"notes":       notes,
			"open_marker": nil,
		}
		if err := tx.Model(&record).Updates(updates).Error; err != nil {
			return err
		}

		result = types.ActionResult{Result: fmt.Sprintf("Successfully clocked out %s at %s. Total hours worked: %.2f", user.FullName, now.Format(clockLayout), hours)}
		return nil
	})
	if err != nil {
		return types.ActionResult{}, err
	}

	return result, nil
}

func (a *ClockOutAction) Definition() types.ActionDefinition {
	return types.ActionDefinition{
		Name:        "clock_out",
		Description: "Clock out a user from work. Returns a confirmation with the total hours worked or an error message.",
		Properties: map[string]jsonschema.Definition{
			"user_id": {
				Type:        jsonschema.Integer,
				Description: "ID of the user clocking out",
			},
			"notes": {
				Type:        jsonschema.String,
				Description: "Optional notes about the clock out",
			},
		},
		Required: []string{"user_id"},
	}
}
