package models

import (
	"slices"
	"time"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

var (
	taskStatuses   = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}
	taskPriorities = []TaskPriority{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh}
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	return slices.Contains(taskStatuses, s)
}

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	return slices.Contains(taskPriorities, p)
}

type Task struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	Title       string       `gorm:"type:varchar(200);not null" json:"title"`
	Description *string      `gorm:"type:text" json:"description"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'todo'" json:"status"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	DueDate     *time.Time   `gorm:"type:date" json:"due_date"`
	ProjectID   uint64       `gorm:"not null" json:"project_id"`
	AssignedTo  *uint64      `json:"assigned_to"`
	CreatedAt   time.Time    `json:"created_at"`

	// Relations
	Project      *Project `gorm:"foreignKey:ProjectID" json:"-"`
	AssignedUser *User    `gorm:"foreignKey:AssignedTo" json:"-"`
}
