package actions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai/jsonschema"
	"gorm.io/gorm"

	"github.com/workmate-ai/workmate/core/types"
	models "github.com/workmate-ai/workmate/dbmodels"
)

func NewWeeklyHours(db *gorm.DB) *WeeklyHoursAction {
	return &WeeklyHoursAction{db: db}
}

// WeeklyHoursAction sums the hours worked since Monday with a per-day
// breakdown.
type WeeklyHoursAction struct {
	db *gorm.DB
}

func (a *WeeklyHoursAction) Run(ctx context.Context, params types.ActionParams) (types.ActionResult, error) {
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

	var records []models.ClockRecord
	if err := db.Where("user_id = ? AND clock_in >= ?", request.UserID, weekStart(time.Now())).Find(&records).Error; err != nil {
		return types.ActionResult{}, err
	}

	total := 0.0
	daily := map[string]float64{}
	for _, record := range records {
		if record.TotalHours == nil {
			continue
		}
		total += *record.TotalHours
		day := record.ClockIn.Format("Monday")
		daily[day] += *record.TotalHours
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weekly hours for %s:\n", user.FullName)
	fmt.Fprintf(&b, "Total hours this week: %.2f\n", round2(total))

	if len(daily) > 0 {
		b.WriteString("\nDaily breakdown:\n")
		days := make([]string, 0, len(daily))
		for day := range daily {
			days = append(days, day)
		}
		sort.Strings(days)
		for _, day := range days {
			fmt.Fprintf(&b, "- %s: %.2f hours\n", day, round2(daily[day]))
		}
	}

	return types.ActionResult{Result: b.String()}, nil
}

func (a *WeeklyHoursAction) Definition() types.ActionDefinition {
	return types.ActionDefinition{
		Name:        "get_weekly_hours",
		Description: "Get total hours worked this week for a user, with a daily breakdown.",
		Properties: map[string]jsonschema.Definition{
			"user_id": {
				Type:        jsonschema.Integer,
				Description: "ID of the user",
			},
		},
		Required: []string{"user_id"},
	}
}
