package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/utils"
	"gorm.io/gorm"
)

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, taskRepo repository.TaskRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	OwnerID     uint64
	Name        *string
	Description *string
}

// UpdateProjectInput holds the fields present in a project patch.
type UpdateProjectInput struct {
	Name        utils.Optional[string]
	Description utils.Optional[string]
}

// CreateProject creates a project owned by input.OwnerID.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	if input.OwnerID == 0 {
		return nil, ErrUnauthenticated
	}

	name := trimmed(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	project := &models.Project{
		Name:        name,
		Description: optionalText(input.Description),
		OwnerID:     input.OwnerID,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// ListProjects returns the projects owned by ownerID, newest first.
func (s *ProjectService) ListProjects(ownerID uint64) ([]models.Project, error) {
	if ownerID == 0 {
		return nil, ErrUnauthenticated
	}

	projects, err := s.projectRepo.ListByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProject returns a project and its tasks, newest first.
func (s *ProjectService) GetProject(ownerID, projectID uint64) (*models.Project, []models.Task, error) {
	project, err := s.authorizedProject(ownerID, projectID)
	if err != nil {
		return nil, nil, err
	}

	tasks, err := s.taskRepo.ListByProject(project.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list project tasks: %w", err)
	}

	return project, tasks, nil
}

// UpdateProject applies the present fields of input.
func (s *ProjectService) UpdateProject(ownerID, projectID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.authorizedProject(ownerID, projectID)
	if err != nil {
		return nil, err
	}

	if input.Name.Set {
		name := trimmed(input.Name.Value)
		if name == "" {
			return nil, ErrNameEmpty
		}
		project.Name = name
	}
	if input.Description.Set {
		project.Description = optionalText(input.Description.Value)
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeleteProject deletes a project together with its tasks.
func (s *ProjectService) DeleteProject(ownerID, projectID uint64) error {
	project, err := s.authorizedProject(ownerID, projectID)
	if err != nil {
		return err
	}

	if err := s.projectRepo.Delete(project.ID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

func (s *ProjectService) authorizedProject(ownerID, projectID uint64) (*models.Project, error) {
	if ownerID == 0 {
		return nil, ErrUnauthenticated
	}

	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if err := AuthorizeProject(ownerID, project); err != nil {
		return nil, err
	}
	return project, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// optionalText trims s and maps blank text to NULL.
func optionalText(s *string) *string {
	t := trimmed(s)
	if t == "" {
		return nil
	}
	return &t
}
