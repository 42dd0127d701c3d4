package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"
	"gorm.io/gorm"

	"github.com/workmate-ai/workmate/core/types"
	models "github.com/workmate-ai/workmate/dbmodels"
)

func NewSearchTasks(db *gorm.DB) *SearchTasksAction {
	return &SearchTasksAction{db: db}
}

// SearchTasksAction searches title and description, newest first, capped at
// 20 results. Unknown status or priority filters are ignored rather than
// refused so a sloppy model query still returns matches.
type SearchTasksAction struct {
	db *gorm.DB
}

func (a *SearchTasksAction) Run(ctx context.Context, params types.ActionParams) (types.ActionResult, error) {
	request := struct {
		SearchTerm     string `json:"search_term"`
		StatusFilter   string `json:"status_filter"`
		PriorityFilter string `json:"priority_filter"`
		AssignedOnly   *bool  `json:"assigned_only"`
	}{}
	if err := params.Unmarshal(&request); err != nil {
		return types.ActionResult{}, err
	}

	assignedOnly := true
	if request.AssignedOnly != nil {
		assignedOnly = *request.AssignedOnly
	}

	pattern := "%" + strings.ToLower(request.SearchTerm) + "%"
	query := a.db.WithContext(ctx).
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)

	if status := strings.ToLower(request.StatusFilter); status != "" && models.ValidTaskStatus(status) {
		query = query.Where("status = ?", status)
	}
	if priority := strings.ToLower(request.PriorityFilter); priority != "" && models.ValidTaskPriority(priority) {
		query = query.Where("priority = ?", priority)
	}
	if assignedOnly {
		query = query.Where("assignee_id IS NOT NULL")
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").Limit(20).Preload("Assignee").Find(&tasks).Error; err != nil {
		return types.ActionResult{}, err
	}

	if len(tasks) == 0 {
		return types.ActionResult{Result: fmt.Sprintf("No tasks found matching '%s'", request.SearchTerm)}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d tasks matching '%s':\n\n", len(tasks), request.SearchTerm)
	for _, task := range tasks {
		fmt.Fprintf(&b, "[%d] %s\n", task.ID, task.Title)
		fmt.Fprintf(&b, "   Status: %s | Priority: %s\n", task.Status, task.Priority)
		if task.Assignee != nil {
			fmt.Fprintf(&b, "   Assigned to: %s\n", task.Assignee.FullName)
		}
		if task.DueDate != nil {
			fmt.Fprintf(&b, "   Due: %s\n", task.DueDate.Format(dateLayout))
		}
		b.WriteString("\n")
	}

	return types.ActionResult{Result: b.String()}, nil
}

func (a *SearchTasksAction) Definition() types.ActionDefinition {
	return types.ActionDefinition{
		Name:        "search_tasks",
		Description: "Search tasks by text in title and description, with optional status, priority and assignment filters.",
		Properties: map[string]jsonschema.Definition{
			"search_term": {
				Type:        jsonschema.String,
				Description: "Text to search in title and description",
			},
			"status_filter": {
				Type:        jsonschema.String,
				Description: "Optional status filter",
			},
			"priority_filter": {
				Type:        jsonschema.String,
				Description: "Optional priority filter",
			},
			"assigned_only": {
				Type:        jsonschema.Boolean,
				Description: "Only show assigned tasks (default true)",
			},
		},
		Required: []string{"search_term"},
	}
}
