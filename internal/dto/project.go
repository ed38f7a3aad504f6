package dto

import (
	"time"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/utils"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	OwnerID     uint64    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProjectTaskDTO represents a task nested in a project
type ProjectTaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description *string             `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *string             `json:"due_date"`
	AssignedTo  *uint64             `json:"assigned_to"`
	CreatedAt   time.Time           `json:"created_at"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		OwnerID:     project.OwnerID,
		CreatedAt:   project.CreatedAt,
	}
}

// ToProjectDetailDTO converts a project and its tasks. The tasks key is
// always present, even when the project has none.
func ToProjectDetailDTO(project models.Project, tasks []models.Task) ProjectDetailDTO {
	items := make([]ProjectTaskDTO, len(tasks))
	for i, t := range tasks {
		items[i] = ProjectTaskDTO{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Status:      t.Status,
			Priority:    t.Priority,
			DueDate:     utils.FormatDate(t.DueDate),
			AssignedTo:  t.AssignedTo,
			CreatedAt:   t.CreatedAt,
		}
	}
	return ProjectDetailDTO{ProjectDTO: ToProjectDTO(project), Tasks: items}
}

// ProjectDetailDTO is a project with its tasks inlined
type ProjectDetailDTO struct {
	ProjectDTO
	Tasks []ProjectTaskDTO `json:"tasks"`
}

// ToProjectDTOs converts a slice of projects
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	out := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		out[i] = ToProjectDTO(p)
	}
	return out
}
