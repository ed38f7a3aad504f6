package repository

import (
	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Omit(clause.Associations).Create(project).Error
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListByOwner lists the projects of an owner, newest first
func (r *GormProjectRepository) ListByOwner(ownerID uint64) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Omit(clause.Associations).Save(project).Error
}

// Delete deletes a project and all of its tasks in a transaction.
// Tasks are removed explicitly so the cascade does not depend on
// foreign key support in the store.
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, id).Error
	})
}
