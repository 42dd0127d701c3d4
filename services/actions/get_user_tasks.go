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

func NewGetUserTasks(db *gorm.DB) *GetUserTasksAction {
	return &GetUserTasksAction{db: db}
}

// GetUserTasksAction lists a user's tasks grouped by status with due-date
// flags.
type GetUserTasksAction struct {
	db *gorm.DB
}

func (a *GetUserTasksAction) Run(ctx context.Context, params types.ActionParams) (types.ActionResult, error) {
	request := struct {
		UserID       uint   `json:"user_id"`
		StatusFilter string `json:"status_filter"`
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

	query := db.Where("assignee_id = ?", request.UserID)
	if request.StatusFilter != "" {
		status := strings.ToLower(request.StatusFilter)
		if !models.ValidTaskStatus(status) {
			return errorResult("Error: Invalid status filter. Use: todo, in_progress, review, completed, or cancelled"), nil
		}
		query = query.Where("status = ?", status)
	}

	var tasks []models.Task
	if err := query.Order("priority DESC, due_date ASC NULLS LAST").Find(&tasks).Error; err != nil {
		return types.ActionResult{}, err
	}

	if len(tasks) == 0 {
		return types.ActionResult{Result: fmt.Sprintf("No tasks found for %s", user.FullName)}, nil
	}

	// Group by status, keeping statuses in the order they first appear.
	var statuses []string
	grouped := map[string][]models.Task{}
	for _, task := range tasks {
		if _, ok := grouped[task.Status]; !ok {
			statuses = append(statuses, task.Status)
		}
		grouped[task.Status] = append(grouped[task.Status], task)
	}

	today := dateOnly(time.Now().UTC())

	var b strings.Builder
	fmt.Fprintf(&b, "Tasks for %s:\n\n", user.FullName)
	for _, status := range statuses {
		group := grouped[status]
		fmt.Fprintf(&b, "%s (%d tasks):\n", strings.ToUpper(status), len(group))
		for _, task := range group {
			fmt.Fprintf(&b, "- [%d] %s", task.ID, task.Title)
			if task.Priority != models.TaskPriorityMedium {
				fmt.Fprintf(&b, " (%s)", task.Priority)
			}
			if task.DueDate != nil {
				days := int(dateOnly(task.DueDate.UTC()).Sub(today).Hours() / 24)
				switch {
				case days < 0:
					fmt.Fprintf(&b, " - OVERDUE by %d days", -days)
				case days == 0:
					b.WriteString(" - DUE TODAY")
				case days <= 3:
					fmt.Fprintf(&b, " - Due in %d days", days)
				}
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return types.ActionResult{Result: b.String()}, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (a *GetUserTasksAction) Definition() types.ActionDefinition {
	return types.ActionDefinition{
		Name:        "get_user_tasks",
		Description: "Get all tasks assigned to a user, grouped by status, with overdue and due-soon flags.",
		Properties: map[string]jsonschema.Definition{
			"user_id": {
				Type:        jsonschema.Integer,
				Description: "ID of the user",
			},
			"status_filter": {
				Type:        jsonschema.String,
				Description: "Optional status filter",
				Enum:        []string{"todo", "in_progress", "review", "completed", "cancelled"},
			},
		},
		Required: []string{"user_id"},
	}
}
