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
	"github.com/workmate-ai/workmate/pkg/xstrings"
)

func NewCreateTask(db *gorm.DB) *CreateTaskAction {
	return &CreateTaskAction{db: db}
}

// CreateTaskAction creates a task in todo state.
type CreateTaskAction struct {
	db *gorm.DB
}

func (a *CreateTaskAction) Run(ctx context.Context, params types.ActionParams) (types.ActionResult, error) {
	request := struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		AssigneeID  *uint    `json:"assignee_id"`
		DueDate     string   `json:"due_date"`
		Priority    string   `json:"priority"`
		CreatedByID uint     `json:"created_by_id"`
		Tags        []string `json:"tags"`
	}{Priority: "medium", CreatedByID: 1}
	if err := params.Unmarshal(&request); err != nil {
		return types.ActionResult{}, err
	}

	var dueDate *time.Time
	if request.DueDate != "" {
		parsed, err := time.Parse(dateLayout, request.DueDate)
		if err != nil {
			return errorResult("Error: Invalid date format. Use YYYY-MM-DD"), nil
		}
		dueDate = &parsed
	}

	priority := strings.ToLower(request.Priority)
	if !models.ValidTaskPriority(priority) {
		return errorResult("Error: Invalid priority. Use: low, medium, high, or urgent"), nil
	}

	var result types.ActionResult

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task := models.Task{
			Title:       request.Title,
			Description: request.Description,
			AssigneeID:  request.AssigneeID,
			CreatedByID: request.CreatedByID,
			DueDate:     dueDate,
			Priority:    priority,
			Status:      models.TaskStatusTodo,
		}
		if request.Tags != nil {
			tags, err := json.Marshal(xstrings.CleanTags(request.Tags))
			if err != nil {
				return err
			}
			task.Tags = datatypes.JSON(tags)
		}
		if err := tx.Create(&task).Error; err != nil {
			return err
		}

		var b strings.Builder
		b.WriteString("Task created successfully!\n")
		fmt.Fprintf(&b, "ID: %d\n", task.ID)
		fmt.Fprintf(&b, "Title: %s\n", task.Title)
		fmt.Fprintf(&b, "Priority: %s\n", task.Priority)

		if request.AssigneeID != nil {
			var assignee models.User
			if err := tx.First(&assignee, *request.AssigneeID).Error; err == nil {
				fmt.Fprintf(&b, "Assigned to: %s\n", assignee.FullName)
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		if request.DueDate != "" {
			fmt.Fprintf(&b, "Due date: %s\n", request.DueDate)
		}

		result = types.ActionResult{Result: b.String()}
		return nil
	})
	if err != nil {
		return types.ActionResult{}, err
	}

	return result, nil
}

func (a *CreateTaskAction) Definition() types.ActionDefinition {
	return types.ActionDefinition{
		Name:        "create_task",
		Description: "Create a new task with title, description and optional assignee, due date, priority and tags.",
		Properties: map[string]jsonschema.Definition{
			"title": {
				Type:        jsonschema.String,
				Description: "Task title",
			},
			"description": {
				Type:        jsonschema.String,
				Description: "Task description",
			},
			"assignee_id": {
				Type:        jsonschema.Integer,
				Description: "ID of the user to assign to",
			},
			"due_date": {
				Type:        jsonschema.String,
				Description: "Due date in YYYY-MM-DD format",
			},
			"priority": {
				Type:        jsonschema.String,
				Description: "Priority level",
				Enum:        []string{"low", "medium", "high", "urgent"},
			},
			"created_by_id": {
				Type:        jsonschema.Integer,
				Description: "ID of the task creator",
			},
			"tags": {
				Type:        jsonschema.Array,
				Description: "List of tags",
				Items:       &jsonschema.Definition{Type: jsonschema.String},
			},
		},
		Required: []string{"title", "description"},
	}
}
