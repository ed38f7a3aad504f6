package dto

import (
	"encoding/json"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/utils"
)

// LenientDate decodes any JSON value. Strings in a known date format become
// a date; everything else, including malformed strings, becomes no date.
type LenientDate struct {
	Time *time.Time
}

func (d *LenientDate) UnmarshalJSON(data []byte) error {
	d.Time = nil

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	d.Time = utils.ParseDate(s)
	return nil
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateProjectRequest is the body of POST /projects/
type CreateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// UpdateProjectRequest is the body of PATCH /projects/:id
type UpdateProjectRequest struct {
	Name        utils.Optional[string] `json:"name"`
	Description utils.Optional[string] `json:"description"`
}

// CreateTaskRequest is the body of POST /tasks/
type CreateTaskRequest struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Status      *string     `json:"status"`
	Priority    *string     `json:"priority"`
	DueDate     LenientDate `json:"due_date"`
	ProjectID   *uint64     `json:"project_id"`
	AssignedTo  *uint64     `json:"assigned_to"`
}

// UpdateTaskRequest is the body of PATCH /tasks/:id. project_id is not
// accepted; tasks cannot move between projects.
type UpdateTaskRequest struct {
	Title       utils.Optional[string]      `json:"title"`
	Description utils.Optional[string]      `json:"description"`
	Status      utils.Optional[string]      `json:"status"`
	Priority    utils.Optional[string]      `json:"priority"`
	DueDate     utils.Optional[LenientDate] `json:"due_date"`
	AssignedTo  utils.Optional[uint64]      `json:"assigned_to"`
}
