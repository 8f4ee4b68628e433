package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/naveenspark/taskflow/pkg/domain"
)

// TaskQuery selects one page of a project's tasks.
type TaskQuery struct {
	Page      int
	Size      int
	Status    domain.StatusFilter // FilterAll or zero sends no status
	SortTitle bool
}

func (q TaskQuery) values() url.Values {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("size", strconv.Itoa(q.Size))
	if s, ok := q.Status.Status(); ok {
		params.Set("status", string(s))
	}
	// the server orders by due date unless sortTitle is the literal "sort"
	if q.SortTitle {
		params.Set("sortTitle", "sort")
	}
	return params
}

// ListTasks fetches one page of a project's tasks.
func (c *Client) ListTasks(ctx context.Context, projectID int64, q TaskQuery) (*domain.Page[domain.Task], error) {
	var p domain.Page[domain.Task]
	if err := c.get(ctx, projectTasksPath(projectID)+"?"+q.values().Encode(), &p); err != nil {
		return nil, fmt.Errorf("client.ListTasks: %w", err)
	}
	return &p, nil
}

// CreateTask adds a task to a project.
func (c *Client) CreateTask(ctx context.Context, projectID int64, req domain.CreateTaskRequest) (*domain.Task, error) {
	var t domain.Task
	if err := c.post(ctx, projectTasksPath(projectID), req, &t); err != nil {
		return nil, fmt.Errorf("client.CreateTask: %w", err)
	}
	return &t, nil
}

// UpdateTask applies a partial update to a task.
func (c *Client) UpdateTask(ctx context.Context, id int64, req domain.UpdateTaskRequest) (*domain.Task, error) {
	var t domain.Task
	if err := c.doRequest(ctx, http.MethodPatch, taskPath(id), req, &t); err != nil {
		return nil, fmt.Errorf("client.UpdateTask: %w", err)
	}
	return &t, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	if err := c.doRequest(ctx, http.MethodDelete, taskPath(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteTask: %w", err)
	}
	return nil
}

func projectTasksPath(projectID int64) string {
	return "/tasks/project/" + strconv.FormatInt(projectID, 10)
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}
