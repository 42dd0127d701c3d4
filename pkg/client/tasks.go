package workmate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Task is a persisted task row.
type Task struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Priority    string          `json:"priority"`
	DueDate     *time.Time      `json:"due_date"`
	AssigneeID  *uint           `json:"assignee_id"`
	CreatedByID uint            `json:"created_by_id"`
	Tags        json.RawMessage `json:"tags"`
	CompletedAt *time.Time      `json:"completed_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateTaskRequest creates a task in todo state.
type CreateTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	AssigneeID  *uint    `json:"assignee_id,omitempty"`
	DueDate     string   `json:"due_date,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// AssignTaskResponse reports an assignment, with a workload warning when the
// assignee already carries a heavy active load.
type AssignTaskResponse struct {
	Message string `json:"message"`
	TaskID  uint   `json:"task_id"`
	Warning string `json:"warning,omitempty"`
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (*Task, error) {
	var task Task
	if err := c.call(ctx, http.MethodPost, "/api/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTask returns one task.
func (c *Client) GetTask(ctx context.Context, id uint) (*Task, error) {
	var task Task
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/tasks/%d", id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// AssignTask assigns a task to a user.
func (c *Client) AssignTask(ctx context.Context, taskID, assigneeID uint) (*AssignTaskResponse, error) {
	body := map[string]uint{"assignee_id": assigneeID}

	var response AssignTaskResponse
	if err := c.call(ctx, http.MethodPost, fmt.Sprintf("/api/tasks/%d/assign", taskID), body, &response); err != nil {
		return nil, err
	}
	return &response, nil
}
