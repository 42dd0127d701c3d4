package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai/jsonschema"
	"gorm.io/gorm"

	"github.com/workmate-ai/workmate/core/types"
	models "github.com/workmate-ai/workmate/dbmodels"
)

func NewAssignTask(db *gorm.DB) *AssignTaskAction {
	return &AssignTaskAction{db: db}
}

// AssignTaskAction assigns or reassigns a task, warning about (but not
// blocking on) overloaded assignees.
type AssignTaskAction struct {
	db *gorm.DB
}

func (a *AssignTaskAction) Run(ctx context.Context, params types.ActionParams) (types.ActionResult, error) {
	request := struct {
		TaskID     uint `json:"task_id"`
		AssigneeID uint `json:"assignee_id"`
	}{}
	if err := params.Unmarshal(&request); err != nil {
		return types.ActionResult{}, err
	}

	var result types.ActionResult

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, request.TaskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result = errorResult("Error: Task with ID %d not found", request.TaskID)
				return nil
			}
			return err
		}

		var assignee models.User
		if err := tx.First(&assignee, request.AssigneeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result = errorResult("Error: User with ID %d not found", request.AssigneeID)
				return nil
			}
			return err
		}

		var activeTasks int64
		if err := tx.Model(&models.Task{}).
			Where("assignee_id = ? AND status IN ?", request.AssigneeID, models.ActiveTaskStatuses).
			Count(&activeTasks).Error; err != nil {
			return err
		}

		warning := ""
		if activeTasks >= 10 {
			warning = fmt.Sprintf("\nWarning: %s already has %d active tasks!", assignee.FullName, activeTasks)
		}

		oldAssignee := ""
		if task.AssigneeID != nil {
			var old models.User
			if err := tx.First(&old, *task.AssigneeID).Error; err == nil {
				oldAssignee = old.FullName
			} else if errors.Is(err, gorm.ErrRecordNotFound) {
				oldAssignee = "Unknown"
			} else {
				return err
			}
		}

		updates := map[string]interface{}{"assignee_id": request.AssigneeID}
		if task.Status == models.TaskStatusTodo {
			updates["status"] = models.TaskStatusInProgress
		}
		if err := tx.Model(&task).Updates(updates).Error; err != nil {
			return err
		}

		response := fmt.Sprintf("Task '%s' assigned to %s", task.Title, assignee.FullName)
		if oldAssignee != "" {
			response += fmt.Sprintf(" (previously assigned to %s)", oldAssignee)
		}
		response += warning

		result = types.ActionResult{Result: response}
		return nil
	})
	if err != nil {
		return types.ActionResult{}, err
	}

	return result, nil
}

func (a *AssignTaskAction) Definition() types.ActionDefinition {
	return types.ActionDefinition{
		Name:        "assign_task",
		Description: "Assign or reassign a task to a user, reporting the previous assignee and workload warnings.",
		Properties: map[string]jsonschema.Definition{
			"task_id": {
				Type:        jsonschema.Integer,
				Description: "ID of the task",
			},
			"assignee_id": {
				Type:        jsonschema.Integer,
				Description: "ID of the user to assign to",
			},
		},
		Required: []string{"task_id", "assignee_id"},
	}
}
