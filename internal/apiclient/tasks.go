package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/flowday/flowday/internal/models"
)

// ListTasks fetches every task of the signed-in user, normalized to internal enums.
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var records []models.BackendTask
	if err := c.do(ctx, http.MethodGet, "/task/get-tasks", nil, &records); err != nil {
		return nil, err
	}

	tasks := make([]models.Task, len(records))
	for i, r := range records {
		tasks[i] = r.Normalize()
	}
	return tasks, nil
}

// CreateTask creates a new task and returns the stored record.
func (c *Client) CreateTask(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	var record models.BackendTask
	if err := c.do(ctx, http.MethodPost, "/task/create-task", models.EncodeInput(in), &record); err != nil {
		return nil, err
	}
	task := record.Normalize()
	return &task, nil
}

// UpdateTask sends the fields set on patch, backend-encoded.
func (c *Client) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	var record models.BackendTask
	if err := c.do(ctx, http.MethodPut, "/task/"+url.PathEscape(id), models.EncodePatch(patch), &record); err != nil {
		return nil, err
	}
	if record.ID == "" {
		return nil, nil
	}
	task := record.Normalize()
	return &task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/task/"+url.PathEscape(id), nil, nil)
}
