package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

const msgDeleted = "Deleted"

// ProjectHandler serves the /projects routes.
type ProjectHandler struct {
	projectService *services.ProjectService
	logger         *slog.Logger
}

func NewProjectHandler(projectService *services.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// CreateProject creates a project owned by the caller
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	req := bindBody[dto.CreateProjectRequest](c)

	project, err := h.projectService.CreateProject(services.CreateProjectInput{
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects returns the caller's projects, newest first
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	projects, err := h.projectService.ListProjects(userID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTOs(projects))
}

// GetProject returns a project with its tasks
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	project, tasks, err := h.projectService.GetProject(userID, middleware.GetResourceID(c))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDetailDTO(*project, tasks))
}

// UpdateProject applies a partial update
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	req := bindBody[dto.UpdateProjectRequest](c)

	project, err := h.projectService.UpdateProject(userID, middleware.GetResourceID(c), services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject deletes a project and its tasks
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	if err := h.projectService.DeleteProject(userID, middleware.GetResourceID(c)); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: msgDeleted})
}
