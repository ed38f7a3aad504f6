package repository

import (
	"time"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/utils"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves the tasks visible to an owner with filtering, sorting and pagination
	List(filter TaskFilter) ([]models.Task, error)

	// ListByProject retrieves all tasks of a project, newest first
	ListByProject(projectID uint64) ([]models.Task, error)

	// ListOverdueForAssignee retrieves tasks assigned to a user that were due before the given date
	ListOverdueForAssignee(userID uint64, before time.Time) ([]models.Task, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete deletes a task
	Delete(id uint64) error
}

// TaskSort selects the ordering of a task listing
type TaskSort string

const (
	// TaskSortCreatedAt orders newest first. It is the default.
	TaskSortCreatedAt TaskSort = ""
	// TaskSortPriority orders by the priority string, descending.
	TaskSortPriority TaskSort = "priority"
	// TaskSortDueDate orders tasks without a due date first, then by date ascending.
	TaskSortDueDate TaskSort = "due_date"
)

// ParseTaskSort maps a query value to a TaskSort. Unknown values select the default.
func ParseTaskSort(s string) TaskSort {
	switch TaskSort(s) {
	case TaskSortPriority, TaskSortDueDate:
		return TaskSort(s)
	default:
		return TaskSortCreatedAt
	}
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	OwnerID    uint64
	Status     *string
	Priority   *string
	DueDate    *time.Time
	ProjectID  *uint64
	Sort       TaskSort
	Pagination utils.PaginationParams
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID
	FindByID(id uint64) (*models.Project, error)

	// ListByOwner lists the projects of an owner, newest first
	ListByOwner(ownerID uint64) ([]models.Project, error)

	// Update updates a project
	Update(project *models.Project) error

	// Delete deletes a project and all of its tasks
	Delete(id uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// ExistsByUsernameOrEmail reports whether a user holds either the username or the email
	ExistsByUsernameOrEmail(username, email string) (bool, error)

	// List lists all users
	List() ([]models.User, error)
}
