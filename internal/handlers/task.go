package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"github.com/yukikurage/task-tracker-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
	logger      *slog.Logger
}

func NewTaskHandler(taskService *services.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// ListTasks returns the tasks of the caller's projects.
// Filters that cannot be parsed are ignored.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	input := services.ListTasksInput{
		CallerID:   userID,
		Status:     queryString(c, "status"),
		Priority:   queryString(c, "priority"),
		DueDate:    utils.ParseDate(c.Query("due_date")),
		Sort:       repository.ParseTaskSort(c.Query("sort")),
		Pagination: utils.GetPaginationParams(c),
	}
	if projectID, err := strconv.ParseUint(c.Query("project_id"), 10, 64); err == nil {
		input.ProjectID = &projectID
	}

	tasks, err := h.taskService.ListTasks(input)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	task, err := h.taskService.GetTask(userID, middleware.GetResourceID(c))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	req := bindBody[dto.CreateTaskRequest](c)

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		CallerID:    userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate.Time,
		ProjectID:   req.ProjectID,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	req := bindBody[dto.UpdateTaskRequest](c)

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
	}
	if req.DueDate.Set {
		input.DueDate = utils.Optional[time.Time]{Set: true}
		if req.DueDate.Value != nil {
			input.DueDate.Value = req.DueDate.Value.Time
		}
	}

	task, err := h.taskService.UpdateTask(userID, middleware.GetResourceID(c), input)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	if err := h.taskService.DeleteTask(userID, middleware.GetResourceID(c)); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: msgDeleted})
}

func queryString(c *gin.Context, key string) *string {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	return &v
}
