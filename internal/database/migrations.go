package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// AddIndexes adds the indexes used by owner scoping, task filters and sorts.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Owner scoping
		{"projects", "idx_projects_owner_id", "owner_id"},
		{"projects", "idx_projects_created_at", "created_at"},

		// Task filters and sorts
		{"tasks", "idx_tasks_project_id", "project_id"},
		{"tasks", "idx_tasks_assigned_to", "assigned_to"},
		{"tasks", "idx_tasks_status", "status"},
		{"tasks", "idx_tasks_priority", "priority"},
		{"tasks", "idx_tasks_due_date", "due_date"},
		{"tasks", "idx_tasks_created_at", "created_at"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			slog.Debug("Index already exists, skipping", "index", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Debug("Created index", "index", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}
