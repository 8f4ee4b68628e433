package domain

// Project is a project with its server-computed task aggregates.
// TotalTasks, CompletedTasks and ProgressPercentage are read-only and are
// only ever taken from the server.
type Project struct {
	ID                 int64    `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	CreatedAt          DateTime `json:"createdAt"`
	TotalTasks         int      `json:"totalTasks"`
	CompletedTasks     int      `json:"completedTasks"`
	ProgressPercentage float64  `json:"progressPercentage"`
}

// ProjectRequest is the payload for creating and updating a project.
type ProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
