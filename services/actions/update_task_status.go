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

func NewUpdateTaskStatus(db *gorm.DB) *UpdateTaskStatusAction {
	return &UpdateTaskStatusAction{db: db}
}

// UpdateTaskStatusAction moves a task through its lifecycle. Completing a
// task stamps the completion time and derives actual hours from creation.
type UpdateTaskStatusAction struct {
	db *gorm.DB
}

func (a *UpdateTaskStatusAction) Run(ctx context.Context, params types.ActionParams) (types.ActionResult, error) {
	request := struct {
		TaskID    uint   `json:"task_id"`
		NewStatus string `json:"new_status"`
		Comment   string `json:"comment"`
	}{}
	if err := params.Unmarshal(&request); err != nil {
		return types.ActionResult{}, err
	}

	status := strings.ToLower(request.NewStatus)
	if !models.ValidTaskStatus(status) {
		return errorResult("Error: Invalid status. Use: todo, in_progress, review, completed, or cancelled"), nil
	}

	var result types.ActionResult
	now := time.Now().UTC()

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, request.TaskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result = errorResult("Error: Task with ID %d not found", request.TaskID)
				return nil
			}
			return err
		}

		oldStatus := task.Status
		updates := map[string]interface{}{"status": status}
		if status == models.TaskStatusCompleted {
			updates["completed_at"] = now
			updates["actual_hours"] = round2(now.Sub(task.CreatedAt).Seconds() / 3600)
		}
		if err := tx.Model(&task).Updates(updates).Error; err != nil {
			return err
		}

		if request.Comment != "" && task.AssigneeID != nil {
			comment := models.TaskComment{
				TaskID:  task.ID,
				UserID:  *task.AssigneeID,
				Comment: fmt.Sprintf("Status changed from %s to %s: %s", oldStatus, status, request.Comment),
			}
			if err := tx.Create(&comment).Error; err != nil {
				return err
			}
		}

		response := fmt.Sprintf("Task '%s' status updated from %s to %s", task.Title, oldStatus, status)
		if task.AssigneeID != nil {
			var assignee models.User
			if err := tx.First(&assignee, *task.AssigneeID).Error; err == nil {
				response += fmt.Sprintf("\nAssigned to: %s", assignee.FullName)
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		result = types.ActionResult{Result: response}
		return nil
	})
	if err != nil {
		return types.ActionResult{}, err
	}

	return result, nil
}

func (a *UpdateTaskStatusAction) Definition() types.ActionDefinition {
	return types.ActionDefinition{
		Name:        "update_task_status",
		Description: "Update the status of a task, optionally recording a comment about the change.",
		Properties: map[string]jsonschema.Definition{
			"task_id": {
				Type:        jsonschema.Integer,
				Description: "ID of the task",
			},
			"new_status": {
				Type:        jsonschema.String,
				Description: "New status",
				Enum:        []string{"todo", "in_progress", "review", "completed", "cancelled"},
			},
			"comment": {
				Type:        jsonschema.String,
				Description: "Optional comment about the status change",
			},
		},
		Required: []string{"task_id", "new_status"},
	}
}
