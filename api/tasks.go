package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	models "github.com/workmate-ai/workmate/dbmodels"
	"github.com/workmate-ai/workmate/pkg/xstrings"
)

// workloadWarningThreshold is the active-task count at which an assignment
// response starts carrying a warning.
const workloadWarningThreshold = 10

type taskCreateRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	AssigneeID  *uint    `json:"assignee_id"`
	DueDate     string   `json:"due_date"`
	Priority    string   `json:"priority"`
	Tags        []string `json:"tags"`
}

type taskUpdateRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Status      *string   `json:"status"`
	Priority    *string   `json:"priority"`
	DueDate     *string   `json:"due_date"`
	Tags        *[]string `json:"tags"`
}

type taskAssignRequest struct {
	AssigneeID uint `json:"assignee_id"`
}

type taskCommentRequest struct {
	Comment string `json:"comment"`
}

func taskJSON(task models.Task) fiber.Map {
	return fiber.Map{
		"id":            task.ID,
		"title":         task.Title,
		"description":   task.Description,
		"status":        task.Status,
		"priority":      task.Priority,
		"due_date":      task.DueDate,
		"assignee_id":   task.AssigneeID,
		"created_by_id": task.CreatedByID,
		"created_at":    task.CreatedAt,
		"updated_at":    task.UpdatedAt,
		"completed_at":  task.CompletedAt,
		"tags":          task.Tags,
	}
}

// canAccessTask reports whether the user may read or modify the task.
func canAccessTask(user *models.User, task *models.Task) bool {
	if user.IsManager() {
		return true
	}
	if task.AssigneeID != nil && *task.AssigneeID == user.ID {
		return true
	}
	return task.CreatedByID == user.ID
}

// parseDueDate accepts either a full RFC 3339 timestamp or a bare date.
func parseDueDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (a *App) loadTask(c *fiber.Ctx) (*models.Task, error) {
	taskID, err := c.ParamsInt("id")
	if err != nil || taskID < 1 {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	}

	var task models.Task
	if err := a.config.DB.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
		}
		return nil, errorJSONMessage(c, "Could not load task")
	}
	return &task, nil
}

func (a *App) ListTasks() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		query := a.config.DB.Model(&models.Task{})

		if status := strings.ToLower(c.Query("status")); status != "" {
			if !models.ValidTaskStatus(status) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
			}
			query = query.Where("status = ?", status)
		}
		if priority := strings.ToLower(c.Query("priority")); priority != "" {
			if !models.ValidTaskPriority(priority) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid priority"})
			}
			query = query.Where("priority = ?", priority)
		}
		if assigneeID := c.QueryInt("assignee_id"); assigneeID > 0 {
			query = query.Where("assignee_id = ?", assigneeID)
		}
		if createdByID := c.QueryInt("created_by_id"); createdByID > 0 {
			query = query.Where("created_by_id = ?", createdByID)
		}

		user := currentUser(c)
		if !user.IsManager() {
			query = query.Where("assignee_id = ? OR created_by_id = ?", user.ID, user.ID)
		}

		var tasks []models.Task
		if err := query.
			Offset(c.QueryInt("offset", 0)).
			Limit(c.QueryInt("limit", 100)).
			Find(&tasks).Error; err != nil {
			return errorJSONMessage(c, "Could not load tasks")
		}

		rows := make([]fiber.Map, 0, len(tasks))
		for _, task := range tasks {
			rows = append(rows, taskJSON(task))
		}
		return c.JSON(rows)
	}
}

func (a *App) CreateTask() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		payload := taskCreateRequest{}
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		payload.Title = strings.TrimSpace(payload.Title)
		payload.Description = strings.TrimSpace(payload.Description)
		if payload.Title == "" || payload.Description == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title and description are required"})
		}

		priority := strings.ToLower(payload.Priority)
		if priority == "" {
			priority = models.TaskPriorityMedium
		}
		if !models.ValidTaskPriority(priority) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid priority"})
		}

		dueDate, err := parseDueDate(payload.DueDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid due date. Use YYYY-MM-DD"})
		}

		user := currentUser(c)
		task := models.Task{
			Title:       payload.Title,
			Description: payload.Description,
			AssigneeID:  payload.AssigneeID,
			CreatedByID: user.ID,
			DueDate:     dueDate,
			Priority:    priority,
			Status:      models.TaskStatusTodo,
		}
		if len(payload.Tags) > 0 {
			raw, _ := json.Marshal(xstrings.CleanTags(payload.Tags))
			task.Tags = datatypes.JSON(raw)
		}

		if err := a.config.DB.Create(&task).Error; err != nil {
			return errorJSONMessage(c, "Could not create task")
		}
		return c.JSON(taskJSON(task))
	}
}

func (a *App) GetTask() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		task, err := a.loadTask(c)
		if task == nil {
			return err
		}
		if !canAccessTask(currentUser(c), task) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized to view this task"})
		}
		return c.JSON(taskJSON(*task))
	}
}

func (a *App) UpdateTask() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		task, err := a.loadTask(c)
		if task == nil {
			return err
		}
		if !canAccessTask(currentUser(c), task) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized to update this task"})
		}

		payload := taskUpdateRequest{}
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		updates := map[string]interface{}{}
		if payload.Title != nil {
			updates["title"] = *payload.Title
		}
		if payload.Description != nil {
			updates["description"] = *payload.Description
		}
		if payload.Status != nil {
			status := strings.ToLower(*payload.Status)
			if !models.ValidTaskStatus(status) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status"})
			}
			updates["status"] = status
			if status == models.TaskStatusCompleted {
				updates["completed_at"] = time.Now().UTC()
			}
		}
		if payload.Priority != nil {
			priority := strings.ToLower(*payload.Priority)
			if !models.ValidTaskPriority(priority) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid priority"})
			}
			updates["priority"] = priority
		}
		if payload.DueDate != nil {
			if *payload.DueDate == "" {
				updates["due_date"] = nil
			} else {
				dueDate, err := parseDueDate(*payload.DueDate)
				if err != nil {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid due date. Use YYYY-MM-DD"})
				}
				updates["due_date"] = dueDate
			}
		}
		if payload.Tags != nil {
			raw, _ := json.Marshal(xstrings.CleanTags(*payload.Tags))
			updates["tags"] = datatypes.JSON(raw)
		}

		if len(updates) > 0 {
			if err := a.config.DB.Model(task).Updates(updates).Error; err != nil {
				return errorJSONMessage(c, "Could not update task")
			}
			if err := a.config.DB.First(task, task.ID).Error; err != nil {
				return errorJSONMessage(c, "Could not load task")
			}
		}
		return c.JSON(taskJSON(*task))
	}
}

func (a *App) AssignTask() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		task, err := a.loadTask(c)
		if task == nil {
			return err
		}

		user := currentUser(c)
		if !user.IsManager() && task.CreatedByID != user.ID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized to assign this task"})
		}

		payload := taskAssignRequest{}
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if payload.AssigneeID == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "assignee_id is required"})
		}

		var assignee models.User
		if err := a.config.DB.First(&assignee, payload.AssigneeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assignee not found"})
			}
			return errorJSONMessage(c, "Could not load assignee")
		}

		var activeTasks int64
		a.config.DB.Model(&models.Task{}).
			Where("assignee_id = ? AND status IN ?", assignee.ID, models.ActiveTaskStatuses).
			Count(&activeTasks)

		updates := map[string]interface{}{"assignee_id": assignee.ID}
		if task.Status == models.TaskStatusTodo {
			updates["status"] = models.TaskStatusInProgress
		}
		if err := a.config.DB.Model(task).Updates(updates).Error; err != nil {
			return errorJSONMessage(c, "Could not assign task")
		}

		response := fiber.Map{
			"message": fmt.Sprintf("Task assigned to %s", assignee.FullName),
			"task_id": task.ID,
		}
		if activeTasks >= workloadWarningThreshold {
			response["warning"] = fmt.Sprintf("%s already has %d active tasks", assignee.FullName, activeTasks)
		}
		return c.JSON(response)
	}
}

func (a *App) AddTaskComment() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		task, err := a.loadTask(c)
		if task == nil {
			return err
		}

		payload := taskCommentRequest{}
		if err := c.BodyParser(&payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if strings.TrimSpace(payload.Comment) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Comment is required"})
		}

		comment := models.TaskComment{
			TaskID:  task.ID,
			UserID:  currentUser(c).ID,
			Comment: payload.Comment,
		}
		if err := a.config.DB.Create(&comment).Error; err != nil {
			return errorJSONMessage(c, "Could not add comment")
		}
		return c.JSON(fiber.Map{"message": "Comment added successfully", "task_id": task.ID})
	}
}

func (a *App) ListTaskComments() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		task, err := a.loadTask(c)
		if task == nil {
			return err
		}
		if !canAccessTask(currentUser(c), task) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized to view this task"})
		}

		var comments []models.TaskComment
		if err := a.config.DB.
			Where("task_id = ?", task.ID).
			Order("created_at ASC").
			Find(&comments).Error; err != nil {
			return errorJSONMessage(c, "Could not load comments")
		}

		rows := make([]fiber.Map, 0, len(comments))
		for _, comment := range comments {
			rows = append(rows, fiber.Map{
				"id":         comment.ID,
				"task_id":    comment.TaskID,
				"user_id":    comment.UserID,
				"comment":    comment.Comment,
				"created_at": comment.CreatedAt,
			})
		}
		return c.JSON(rows)
	}
}
