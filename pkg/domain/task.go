package domain

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a task. Any status is reachable from
// any other through a partial update.
type TaskStatus string

const (
	StatusPending    TaskStatus = "PENDING"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
)

// TaskStatuses lists the statuses in display order.
var TaskStatuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted}

var statusLabels = map[TaskStatus]string{
	StatusPending:    "pending",
	StatusInProgress: "in progress",
	StatusCompleted:  "completed",
}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the human-readable form of the status.
func (s TaskStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// ParseTaskStatus accepts a status in either its wire form ("IN_PROGRESS")
// or its label form ("in progress").
func ParseTaskStatus(s string) (TaskStatus, error) {
	norm := TaskStatus(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "_")))
	if norm.Valid() {
		return norm, nil
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

// Next returns the status reached by one click on the status toggle:
// PENDING -> IN_PROGRESS -> COMPLETED -> PENDING.
func (s TaskStatus) Next() TaskStatus {
	switch s {
	case StatusPending:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	default:
		return StatusPending
	}
}

// StatusFilter restricts a task list to a single status, or leaves it
// unrestricted with FilterAll.
type StatusFilter string

const (
	FilterAll        StatusFilter = "ALL"
	FilterPending    StatusFilter = StatusFilter(StatusPending)
	FilterInProgress StatusFilter = StatusFilter(StatusInProgress)
	FilterCompleted  StatusFilter = StatusFilter(StatusCompleted)
)

// StatusFilters is the cycle order of the filter selector.
var StatusFilters = []StatusFilter{FilterAll, FilterPending, FilterInProgress, FilterCompleted}

// Status returns the status to send as the query parameter. ok is false for
// FilterAll (and the zero value), meaning no status parameter is sent.
func (f StatusFilter) Status() (TaskStatus, bool) {
	s := TaskStatus(f)
	if !s.Valid() {
		return "", false
	}
	return s, true
}

// Label returns the human-readable form of the filter.
func (f StatusFilter) Label() string {
	if s, ok := f.Status(); ok {
		return s.Label()
	}
	return "all"
}

// Next returns the following filter in StatusFilters order.
func (f StatusFilter) Next() StatusFilter {
	for i, sf := range StatusFilters {
		if sf == f {
			return StatusFilters[(i+1)%len(StatusFilters)]
		}
	}
	return FilterAll
}

// Task is a unit of work inside a project.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     Date       `json:"dueDate"`
	Status      TaskStatus `json:"status"`
	ProjectID   int64      `json:"projectId"`
}

// IsOverdue reports whether the due date lies before the day of now and the
// task is not completed.
func (t Task) IsOverdue(now time.Time) bool {
	if t.DueDate.IsZero() || t.Status == StatusCompleted {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return t.DueDate.Time.Before(today)
}

// CreateTaskRequest is the payload of POST /tasks/project/{id}.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     Date   `json:"dueDate"`
}

// UpdateTaskRequest is a partial update; nil fields are left untouched.
type UpdateTaskRequest struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Status      *TaskStatus `json:"status,omitempty"`
}
