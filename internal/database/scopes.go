package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/task-tracker-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// OwnedBy restricts a tasks query to tasks whose project belongs to ownerID.
func OwnedBy(ownerID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN projects ON projects.id = tasks.project_id").
			Where("projects.owner_id = ?", ownerID)
	}
}
