package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai/jsonschema"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/workmate-ai/workmate/core/types"
	models "github.com/workmate-ai/workmate/dbmodels"
)

func NewTaskReport(db *gorm.DB) *TaskReportAction {
	return &TaskReportAction{db: db}
}

// TaskReportAction summarizes tasks created in a date range and persists the
// report.
type TaskReportAction struct {
	db *gorm.DB
}

var priorityRank = map[string]int{
	models.TaskPriorityLow:    0,
	models.TaskPriorityMedium: 1,
	models.TaskPriorityHigh:   2,
	models.TaskPriorityUrgent: 3,
}

func (a *TaskReportAction) Run(ctx context.Context, params types.ActionParams) (types.ActionResult, error) {
	request := struct {
		StartDate        string `json:"start_date"`
		EndDate          string `json:"end_date"`
		UserID           *uint  `json:"user_id"`
		IncludeCompleted *bool  `json:"include_completed"`
	}{}
	if err := params.Unmarshal(&request); err != nil {
		return types.ActionResult{}, err
	}

	includeCompleted := true
	if request.IncludeCompleted != nil {
		includeCompleted = *request.IncludeCompleted
	}

	start, err := time.Parse(dateLayout, request.StartDate)
	if err != nil {
		return errorResult("Error generating task report: %v", err), nil
	}
	end, err := time.Parse(dateLayout, request.EndDate)
	if err != nil {
		return errorResult("Error generating task report: %v", err), nil
	}

	var result types.ActionResult
	now := time.Now().UTC()

	txErr := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Preload("Assignee").
			Where("created_at >= ? AND created_at <= ?", start, end.AddDate(0, 0, 1))
		if request.UserID != nil {
			query = query.Where("assignee_id = ?", *request.UserID)
		}

		var tasks []models.Task
		if err := query.Find(&tasks).Error; err != nil {
			return err
		}

		if len(tasks) == 0 {
			result = types.ActionResult{Result: "No tasks found for the specified period"}
			return nil
		}

		var completed, inProgress, todo, overdue int
		byPriority := map[string]int{
			models.TaskPriorityLow:    0,
			models.TaskPriorityMedium: 0,
			models.TaskPriorityHigh:   0,
			models.TaskPriorityUrgent: 0,
		}
		var completedTasks, pendingTasks []models.Task

		for _, task := range tasks {
			switch task.Status {
			case models.TaskStatusCompleted:
				completed++
				completedTasks = append(completedTasks, task)
			case models.TaskStatusInProgress:
				inProgress++
				pendingTasks = append(pendingTasks, task)
			case models.TaskStatusTodo:
				todo++
				pendingTasks = append(pendingTasks, task)
			}

			byPriority[task.Priority]++

			if task.DueDate != nil && task.DueDate.Before(now) && task.Status != models.TaskStatusCompleted {
				overdue++
			}
		}

		completionRate := round1(float64(completed) / float64(len(tasks)) * 100)

		var b strings.Builder
		b.WriteString("# Task Report\n")
		fmt.Fprintf(&b, "Period: %s to %s\n\n", request.StartDate, request.EndDate)

		b.WriteString("## Summary\n")
		fmt.Fprintf(&b, "- Total Tasks: %d\n", len(tasks))
		fmt.Fprintf(&b, "- Completed: %d (%.1f%%)\n", completed, completionRate)
		fmt.Fprintf(&b, "- In Progress: %d\n", inProgress)
		fmt.Fprintf(&b, "- To Do: %d\n", todo)
		fmt.Fprintf(&b, "- Overdue: %d\n\n", overdue)

		b.WriteString("## By Priority\n")
		for _, priority := range []string{models.TaskPriorityLow, models.TaskPriorityMedium, models.TaskPriorityHigh, models.TaskPriorityUrgent} {
			fmt.Fprintf(&b, "- %s: %d\n", capitalize(priority), byPriority[priority])
		}
		b.WriteString("\n")

		if includeCompleted && len(completedTasks) > 0 {
			fmt.Fprintf(&b, "## Completed Tasks (%d)\n", len(completedTasks))
			for i, task := range completedTasks {
				if i == 10 {
					break
				}
				fmt.Fprintf(&b, "- [%d] %s", task.ID, task.Title)
				if task.Assignee != nil {
					fmt.Fprintf(&b, " (by %s)", task.Assignee.FullName)
				}
				b.WriteString("\n")
			}
			if len(completedTasks) > 10 {
				fmt.Fprintf(&b, "... and %d more\n", len(completedTasks)-10)
			}
			b.WriteString("\n")
		}

		if len(pendingTasks) > 0 {
			fmt.Fprintf(&b, "## Pending Tasks (%d)\n", len(pendingTasks))
			sort.SliceStable(pendingTasks, func(i, j int) bool {
				pi, pj := priorityRank[pendingTasks[i].Priority], priorityRank[pendingTasks[j].Priority]
				if pi != pj {
					return pi > pj
				}
				di, dj := pendingTasks[i].DueDate, pendingTasks[j].DueDate
				switch {
				case di == nil:
					return false
				case dj == nil:
					return true
				default:
					return di.Before(*dj)
				}
			})

			for i, task := range pendingTasks {
				if i == 10 {
					break
				}
				fmt.Fprintf(&b, "- [%d] %s (%s)", task.ID, task.Title, task.Priority)
				if task.Assignee != nil {
					fmt.Fprintf(&b, " - %s", task.Assignee.FullName)
				}
				if task.DueDate != nil {
					days := int(dateOnly(task.DueDate.UTC()).Sub(dateOnly(now)).Hours() / 24)
					switch {
					case days < 0:
						b.WriteString(" - OVERDUE")
					case days == 0:
						b.WriteString(" - DUE TODAY")
					default:
						fmt.Fprintf(&b, " - Due in %d days", days)
					}
				}
				b.WriteString("\n")
			}
		}

		content, err := json.Marshal(map[string]interface{}{
			"total":           len(tasks),
			"completed":       completed,
			"in_progress":     inProgress,
			"todo":            todo,
			"overdue":         overdue,
			"by_priority":     byPriority,
			"completion_rate": completionRate,
		})
		if err != nil {
			return err
		}

		report := models.Report{
			Title:    fmt.Sprintf("Task Report %s to %s", request.StartDate, request.EndDate),
			Type:     models.ReportTypeTask,
			Content:  datatypes.JSON(content),
			DateFrom: start,
			DateTo:   end,
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

func (a *TaskReportAction) Definition() types.ActionDefinition {
	return types.ActionDefinition{
		Name:        "generate_task_report",
		Description: "Generate a task completion report for a date range, with status and priority statistics.",
		Properties: map[string]jsonschema.Definition{
			"start_date": {
				Type:        jsonschema.String,
				Description: "Start date (YYYY-MM-DD)",
			},
			"end_date": {
				Type:        jsonschema.String,
				Description: "End date (YYYY-MM-DD)",
			},
			"user_id": {
				Type:        jsonschema.Integer,
				Description: "Optional specific user ID",
			},
			"include_completed": {
				Type:        jsonschema.Boolean,
				Description: "Include completed tasks in the report (default true)",
			},
		},
		Required: []string{"start_date", "end_date"},
	}
}
