package dto

import (
	"time"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/utils"
)

// ProjectRefDTO is the short form of a project embedded in a task
type ProjectRefDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID           uint64              `json:"id"`
	Title        string              `json:"title"`
	Description  *string             `json:"description"`
	Status       models.TaskStatus   `json:"status"`
	Priority     models.TaskPriority `json:"priority"`
	DueDate      *string             `json:"due_date"`
	ProjectID    uint64              `json:"project_id"`
	AssignedTo   *uint64             `json:"assigned_to"`
	CreatedAt    time.Time           `json:"created_at"`
	Project      *ProjectRefDTO      `json:"project"`
	AssignedUser *UserDTO            `json:"assigned_user"`
}

// ToTaskDTO converts a Task model with its preloaded relations to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	out := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     utils.FormatDate(task.DueDate),
		ProjectID:   task.ProjectID,
		AssignedTo:  task.AssignedTo,
		CreatedAt:   task.CreatedAt,
	}
	if task.Project != nil {
		out.Project = &ProjectRefDTO{ID: task.Project.ID, Name: task.Project.Name}
	}
	if task.AssignedUser != nil {
		user := ToUserDTO(*task.AssignedUser)
		out.AssignedUser = &user
	}
	return out
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskDTO(t)
	}
	return out
}
