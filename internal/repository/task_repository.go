package repository

import (
	"time"

	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Omit(clause.Associations).Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves the tasks of projects owned by filter.OwnerID.
// Ownership is applied in SQL so only the requested page is loaded.
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).
		Select("tasks.*").
		Scopes(database.OwnedBy(filter.OwnerID))

	// Apply filters
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.DueDate != nil {
		query = query.Where("tasks.due_date = ?", *filter.DueDate)
	}
	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}

	switch filter.Sort {
	case TaskSortPriority:
		// Plain string order: medium, low, high.
		query = query.Order("tasks.priority DESC").Order("tasks.id DESC")
	case TaskSortDueDate:
		query = query.Order("CASE WHEN tasks.due_date IS NULL THEN 0 ELSE 1 END, tasks.due_date ASC").
			Order("tasks.id ASC")
	default:
		query = query.Order("tasks.created_at DESC").Order("tasks.id DESC")
	}

	if err := query.Scopes(database.Paginate(filter.Pagination)).
		Preload("Project").
		Preload("AssignedUser").
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// ListByProject retrieves all tasks of a project, newest first
func (r *GormTaskRepository) ListByProject(projectID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("project_id = ?", projectID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListOverdueForAssignee retrieves tasks assigned to userID with a due date
// strictly before the given date, earliest first
func (r *GormTaskRepository) ListOverdueForAssignee(userID uint64, before time.Time) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Model(&models.Task{}).
		Select("tasks.*").
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("tasks.assigned_to = ?", userID).
		Where("tasks.due_date IS NOT NULL").
		Where("tasks.due_date < ?", before).
		Order("tasks.due_date ASC").
		Order("tasks.id ASC").
		Preload("Project").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit(clause.Associations).Save(task).Error
}

// Delete deletes a task
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}
