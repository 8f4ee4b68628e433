package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/naveenspark/taskflow/pkg/domain"
)

// ListProjects fetches one page of the caller's projects.
func (c *Client) ListProjects(ctx context.Context, page, size int) (*domain.Page[domain.Project], error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(size))

	var p domain.Page[domain.Project]
	if err := c.get(ctx, "/projects?"+params.Encode(), &p); err != nil {
		return nil, fmt.Errorf("client.ListProjects: %w", err)
	}
	return &p, nil
}

// GetProject fetches a single project with its current aggregates.
func (c *Client) GetProject(ctx context.Context, id int64) (*domain.Project, error) {
	var p domain.Project
	if err := c.get(ctx, projectPath(id), &p); err != nil {
		return nil, fmt.Errorf("client.GetProject: %w", err)
	}
	return &p, nil
}

// CreateProject creates a new project.
func (c *Client) CreateProject(ctx context.Context, req domain.ProjectRequest) (*domain.Project, error) {
	var p domain.Project
	if err := c.post(ctx, "/projects", req, &p); err != nil {
		return nil, fmt.Errorf("client.CreateProject: %w", err)
	}
	return &p, nil
}

// UpdateProject replaces a project's title and description.
func (c *Client) UpdateProject(ctx context.Context, id int64, req domain.ProjectRequest) (*domain.Project, error) {
	var p domain.Project
	if err := c.doRequest(ctx, http.MethodPut, projectPath(id), req, &p); err != nil {
		return nil, fmt.Errorf("client.UpdateProject: %w", err)
	}
	return &p, nil
}

// DeleteProject deletes a project and its tasks.
func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	if err := c.doRequest(ctx, http.MethodDelete, projectPath(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteProject: %w", err)
	}
	return nil
}

func projectPath(id int64) string {
	return "/projects/" + strconv.FormatInt(id, 10)
}
