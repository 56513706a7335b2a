package client

import (
	"context"
	"net/http"
	"net/url"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/models/task"
	"taskManager/internal/service"
)

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}

// ListTasks returns the tasks visible to the token's user. userEmail, when set,
// also matches tasks assigned to that address.
func (c *Client) ListTasks(ctx context.Context, userEmail string) ([]*task.Task, error) {
	path := "/tasks"
	if userEmail != "" {
		path += "?" + url.Values{"userEmail": {userEmail}}.Encode()
	}

	var out []*task.Task
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*task.Task, error) {
	var out task.Task
	if err := c.get(ctx, taskPath(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTask(ctx context.Context, req dto.CreateTaskRequest) (*task.Task, error) {
	var out task.Task
	if err := c.mutate(ctx, http.MethodPost, "/tasks", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, req dto.UpdateTaskRequest) (*task.Task, error) {
	var out task.Task
	if err := c.mutate(ctx, http.MethodPut, taskPath(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

func (c *Client) ShareTask(ctx context.Context, id string, userIDs []string, message string) (*dto.ShareTaskResponse, error) {
	var out dto.ShareTaskResponse
	req := dto.ShareTaskRequest{UserIDs: userIDs, Message: message}
	if err := c.mutate(ctx, http.MethodPost, taskPath(id)+"/share", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stats(ctx context.Context) (*service.TaskStats, error) {
	var out service.TaskStats
	if err := c.get(ctx, "/tasks/stats/summary", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
