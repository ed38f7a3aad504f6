package services

import "github.com/yukikurage/task-tracker-api/internal/models"

// AuthorizeProject allows the owner of project and denies everyone else as
// if the project did not exist.
func AuthorizeProject(callerID uint64, project *models.Project) error {
	if callerID == 0 {
		return ErrUnauthenticated
	}
	if project == nil || project.OwnerID != callerID {
		return ErrNotFound
	}
	return nil
}

// AuthorizeTask allows the owner of the project the task belongs to.
func AuthorizeTask(callerID uint64, task *models.Task, project *models.Project) error {
	if callerID == 0 {
		return ErrUnauthenticated
	}
	if task == nil || project == nil || task.ProjectID != project.ID {
		return ErrNotFound
	}
	return AuthorizeProject(callerID, project)
}
