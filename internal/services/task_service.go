package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/notifications"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/utils"
	"gorm.io/gorm"
)

// Relations returned with every task
var taskRelations = []string{"Project", "AssignedUser"}

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	notifier    notifications.Notifier
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository, notifier notifications.Notifier) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	CallerID   uint64
	Status     *string
	Priority   *string
	DueDate    *time.Time
	ProjectID  *uint64
	Sort       repository.TaskSort
	Pagination utils.PaginationParams
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	CallerID    uint64
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	ProjectID   *uint64
	AssignedTo  *uint64
}

// UpdateTaskInput holds the fields present in a task patch
type UpdateTaskInput struct {
	Title       utils.Optional[string]
	Description utils.Optional[string]
	Status      utils.Optional[string]
	Priority    utils.Optional[string]
	DueDate     utils.Optional[time.Time]
	AssignedTo  utils.Optional[uint64]
}

// ListTasks returns the tasks of the caller's projects matching the filters
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, error) {
	if input.CallerID == 0 {
		return nil, ErrUnauthenticated
	}

	tasks, err := s.taskRepo.List(repository.TaskFilter{
		OwnerID:    input.CallerID,
		Status:     input.Status,
		Priority:   input.Priority,
		DueDate:    input.DueDate,
		ProjectID:  input.ProjectID,
		Sort:       input.Sort,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// GetTask returns a task with related data
func (s *TaskService) GetTask(callerID, taskID uint64) (*models.Task, error) {
	return s.authorizedTask(callerID, taskID)
}

// CreateTask validates input and creates a task in one of the caller's projects
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if input.CallerID == 0 {
		return nil, ErrUnauthenticated
	}

	title := trimmed(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if input.ProjectID == nil || *input.ProjectID == 0 {
		return nil, ErrProjectRequired
	}

	project, err := s.projectRepo.FindByID(*input.ProjectID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if err := AuthorizeProject(input.CallerID, project); err != nil {
		return nil, err
	}

	status, err := parseStatus(input.Status, true)
	if err != nil {
		return nil, err
	}
	priority, err := parsePriority(input.Priority, true)
	if err != nil {
		return nil, err
	}

	assignee, err := s.resolveAssignee(input.AssignedTo)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: optionalText(input.Description),
		Status:      status,
		Priority:    priority,
		DueDate:     input.DueDate,
		ProjectID:   project.ID,
		AssignedTo:  assignee,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if task.AssignedTo != nil {
		s.notify(task.ID, notifications.ActionAssigned)
	}

	return s.reload(task.ID)
}

// UpdateTask applies the present fields of input
func (s *TaskService) UpdateTask(callerID, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.authorizedTask(callerID, taskID)
	if err != nil {
		return nil, err
	}

	previousStatus := task.Status
	previousAssignee := task.AssignedTo

	if input.Title.Set {
		title := trimmed(input.Title.Value)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = title
	}
	if input.Description.Set {
		task.Description = optionalText(input.Description.Value)
	}
	if input.Status.Set {
		status, err := parseStatus(input.Status.Value, false)
		if err != nil {
			return nil, err
		}
		task.Status = status
	}
	if input.Priority.Set {
		priority, err := parsePriority(input.Priority.Value, false)
		if err != nil {
			return nil, err
		}
		task.Priority = priority
	}
	if input.DueDate.Set {
		task.DueDate = input.DueDate.Value
	}
	if input.AssignedTo.Set {
		assignee, err := s.resolveAssignee(input.AssignedTo.Value)
		if err != nil {
			return nil, err
		}
		task.AssignedTo = assignee
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if task.AssignedTo != nil && !sameID(previousAssignee, task.AssignedTo) {
		s.notify(task.ID, notifications.ActionAssigned)
	}
	if task.Status != previousStatus {
		s.notify(task.ID, notifications.ActionStatusChanged)
	}

	return s.reload(task.ID)
}

// DeleteTask deletes a task
func (s *TaskService) DeleteTask(callerID, taskID uint64) error {
	task, err := s.authorizedTask(callerID, taskID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (s *TaskService) authorizedTask(callerID, taskID uint64) (*models.Task, error) {
	if callerID == 0 {
		return nil, ErrUnauthenticated
	}

	task, err := s.taskRepo.FindByID(taskID, taskRelations...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if err := AuthorizeTask(callerID, task, task.Project); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) reload(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, taskRelations...)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}
	return task, nil
}

// resolveAssignee maps null and 0 to unassigned and checks that any other
// id belongs to a user.
func (s *TaskService) resolveAssignee(id *uint64) (*uint64, error) {
	if id == nil || *id == 0 {
		return nil, nil
	}

	if _, err := s.userRepo.FindByID(*id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssigneeNotFound
		}
		return nil, fmt.Errorf("failed to find assignee: %w", err)
	}

	assignee := *id
	return &assignee, nil
}

func (s *TaskService) notify(taskID uint64, action notifications.Action) {
	if s.notifier != nil {
		s.notifier.Notify(taskID, action)
	}
}

// parseStatus validates a status. When defaulted is true a missing or blank
// value selects todo; otherwise it is invalid.
func parseStatus(value *string, defaulted bool) (models.TaskStatus, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		if defaulted {
			return models.TaskStatusTodo, nil
		}
		return "", ErrInvalidStatus
	}

	status := models.TaskStatus(strings.TrimSpace(*value))
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// parsePriority is parseStatus for priorities, defaulting to medium.
func parsePriority(value *string, defaulted bool) (models.TaskPriority, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		if defaulted {
			return models.TaskPriorityMedium, nil
		}
		return "", ErrInvalidPriority
	}

	priority := models.TaskPriority(strings.TrimSpace(*value))
	if !priority.Valid() {
		return "", ErrInvalidPriority
	}
	return priority, nil
}

func sameID(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
