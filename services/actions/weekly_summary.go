package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai/jsonschema"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/workmate-ai/workmate/core/types"
	models "github.com/workmate-ai/workmate/dbmodels"
)

func NewWeeklySummary(db *gorm.DB) *WeeklySummaryAction {
	return &WeeklySummaryAction{db: db}
}

// WeeklySummaryAction builds one user's Monday-to-Sunday attendance and task
// summary and persists it.
type WeeklySummaryAction struct {
	db *gorm.DB
}

func (a *WeeklySummaryAction) Run(ctx context.Context, params types.ActionParams) (types.ActionResult, error) {
	request := struct {
		UserID uint `json:"user_id"`
	}{}
	if err := params.Unmarshal(&request); err != nil {
		return types.ActionResult{}, err
	}

	var result types.ActionResult
	now := time.Now().UTC()
	start := weekStart(now)
	end := start.AddDate(0, 0, 6)

	txErr := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, request.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result = errorResult("Error: User with ID %d not found", request.UserID)
				return nil
			}
			return err
		}

		var records []models.ClockRecord
		if err := tx.Where("user_id = ? AND clock_in >= ? AND clock_in <= ?",
			request.UserID, start, end.AddDate(0, 0, 1)).Find(&records).Error; err != nil {
			return err
		}

		totalHours := 0.0
		workedDays := map[string]bool{}
		for _, record := range records {
			if record.TotalHours != nil {
				totalHours += *record.TotalHours
			}
			workedDays[record.ClockIn.Format(dateLayout)] = true
		}
		daysWorked := len(workedDays)

		var completedTasks []models.Task
		if err := tx.Where("assignee_id = ? AND status = ? AND completed_at >= ? AND completed_at <= ?",
			request.UserID, models.TaskStatusCompleted, start, end.AddDate(0, 0, 1)).
			Find(&completedTasks).Error; err != nil {
			return err
		}

		var activeTasks []models.Task
		if err := tx.Where("assignee_id = ? AND status IN ?",
			request.UserID, models.ActiveTaskStatuses).Find(&activeTasks).Error; err != nil {
			return err
		}

		var b strings.Builder
		fmt.Fprintf(&b, "# Weekly Summary for %s\n", user.FullName)
		fmt.Fprintf(&b, "Week: %s - %s\n\n", start.Format("January 02"), end.Format("January 02, 2006"))

		b.WriteString("## Attendance\n")
		fmt.Fprintf(&b, "- Days Worked: %d/5\n", daysWorked)
		fmt.Fprintf(&b, "- Total Hours: %.2f\n", round2(totalHours))
		avg := 0.0
		if daysWorked > 0 {
			avg = round2(totalHours / float64(daysWorked))
		}
		fmt.Fprintf(&b, "- Average Hours/Day: %.2f\n\n", avg)

		b.WriteString("## Tasks\n")
		fmt.Fprintf(&b, "- Completed This Week: %d\n", len(completedTasks))
		fmt.Fprintf(&b, "- Currently Active: %d\n\n", len(activeTasks))

		if len(completedTasks) > 0 {
			b.WriteString("### Completed Tasks:\n")
			for i, task := range completedTasks {
				if i == 5 {
					break
				}
				fmt.Fprintf(&b, "- %s\n", task.Title)
			}
			if len(completedTasks) > 5 {
				fmt.Fprintf(&b, "... and %d more\n", len(completedTasks)-5)
			}
			b.WriteString("\n")
		}

		if len(activeTasks) > 0 {
			b.WriteString("### Active Tasks:\n")
			var highPriority []models.Task
			for _, task := range activeTasks {
				if task.Priority == models.TaskPriorityHigh || task.Priority == models.TaskPriorityUrgent {
					highPriority = append(highPriority, task)
				}
			}
			if len(highPriority) > 0 {
				b.WriteString("High Priority:\n")
				for _, task := range highPriority {
					fmt.Fprintf(&b, "- %s", task.Title)
					if task.DueDate != nil {
						fmt.Fprintf(&b, " (Due: %s)", task.DueDate.Format("01/02"))
					}
					b.WriteString("\n")
				}
			}
		}

		content, err := json.Marshal(map[string]interface{}{
			"hours_worked":    totalHours,
			"days_worked":     daysWorked,
			"tasks_completed": len(completedTasks),
			"active_tasks":    len(activeTasks),
		})
		if err != nil {
			return err
		}

		report := models.Report{
			Title:         fmt.Sprintf("Weekly Summary - %s - Week of %s", user.FullName, start.Format(dateLayout)),
			Type:          models.ReportTypeWeekly,
			Content:       datatypes.JSON(content),
			GeneratedByID: &user.ID,
			DateFrom:      start,
			DateTo:        end,
		}
		if err := tx.Create(&report).Error; err != nil {
			return err
		}

		result = types.ActionResult{Result: b.String()}
		return nil
	})
	if txErr != nil {
		return types.ActionResult{}, txErr
	}

	return result, nil
}

func (a *WeeklySummaryAction) Definition() types.ActionDefinition {
	return types.ActionDefinition{
		Name:        "generate_weekly_summary",
		Description: "Generate this week's attendance and task summary for one user.",
		Properties: map[string]jsonschema.Definition{
			"user_id": {
				Type:        jsonschema.Integer,
				Description: "ID of the user",
			},
		},
		Required: []string{"user_id"},
	}
}
