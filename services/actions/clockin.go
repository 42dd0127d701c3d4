package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai/jsonschema"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/workmate-ai/workmate/core/types"
	models "github.com/workmate-ai/workmate/dbmodels"
)

func NewClockIn(db *gorm.DB) *ClockInAction {
	return &ClockInAction{db: db}
}

// ClockInAction opens an attendance record. The open-marker unique index
// decides the race when two clock-ins for the same user arrive together: one
// insert commits, the other fails and is reported as already clocked in.
type ClockInAction struct {
	db *gorm.DB
}

func (a *ClockInAction) Run(ctx context.Context, params types.ActionParams) (types.ActionResult, error) {
	request := struct {
		UserID   uint                   `json:"user_id"`
		Location map[string]interface{} `json:"location"`
		Notes    string                 `json:"notes"`
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

		var open models.ClockRecord
		if err := tx.Where("user_id = ? AND clock_out IS NULL", request.UserID).First(&open).Error; err == nil {
			result = errorResult("Error: %s is already clocked in since %s", user.FullName, open.ClockIn.Format(timestampLayout))
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		record := models.ClockRecord{
			UserID:     request.UserID,
			ClockIn:    now,
			Status:     models.AttendanceClockedIn,
			Notes:      request.Notes,
			OpenMarker: &user.ID,
		}
		if request.Location != nil {
			location, err := json.Marshal(request.Location)
			if err != nil {
				return err
			}
			record.Location = datatypes.JSON(location)
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		result = types.ActionResult{Result: fmt.Sprintf("Successfully clocked in %s at %s", user.FullName, now.Format(clockLayout))}
		return nil
	})
	if err != nil {
		// A lost race fails the insert on the open marker. Surface it the
		// same way as the ordinary conflict.
		var user models.User
		var open models.ClockRecord
		if a.db.WithContext(ctx).First(&user, request.UserID).Error == nil &&
			a.db.WithContext(ctx).Where("user_id = ? AND clock_out IS NULL", request.UserID).First(&open).Error == nil {
			return errorResult("Error: %s is already clocked in since %s", user.FullName, open.ClockIn.Format(timestampLayout)), nil
		}
		return types.ActionResult{}, err
	}

	return result, nil
}

func (a *ClockInAction) Definition() types.ActionDefinition {
	return types.ActionDefinition{
		Name:        "clock_in",
		Description: "Clock in a user for work. Returns a confirmation with the clock-in time or an error message.",
		Properties: map[string]jsonschema.Definition{
			"user_id": {
				Type:        jsonschema.Integer,
				Description: "ID of the user clocking in",
			},
			"location": {
				Type:        jsonschema.Object,
				Description: "Optional location with lat, lng and address",
			},
			"notes": {
				Type:        jsonschema.String,
				Description: "Optional notes about the clock in",
			},
		},
		Required: []string{"user_id"},
	}
}
