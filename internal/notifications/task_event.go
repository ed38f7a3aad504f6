package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yukikurage/task-tracker-api/internal/metrics"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/utils"
	"gorm.io/gorm"
)

const kindTaskEvent = "task_event"

// TaskEventHandler emails the assignee of a task about a change to it.
// The task is re-read when the intent is handled, so the message reflects
// the latest state.
type TaskEventHandler struct {
	tasks   repository.TaskRepository
	users   repository.UserRepository
	mailer  Mailer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewTaskEventHandler(tasks repository.TaskRepository, users repository.UserRepository, mailer Mailer, m *metrics.Metrics, logger *slog.Logger) *TaskEventHandler {
	return &TaskEventHandler{
		tasks:   tasks,
		users:   users,
		mailer:  mailer,
		metrics: m,
		logger:  logger,
	}
}

func (h *TaskEventHandler) Handle(ctx context.Context, intent Intent) error {
	task, err := h.tasks.FindByID(intent.TaskID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		h.logger.DebugContext(ctx, "task gone, dropping notification", slog.Uint64("task_id", intent.TaskID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load task %d: %w", intent.TaskID, err)
	}

	if task.AssignedTo == nil {
		return nil
	}

	user, err := h.users.FindByID(*task.AssignedTo)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load assignee %d: %w", *task.AssignedTo, err)
	}
	if user.Email == "" {
		return nil
	}

	subject, body := taskEventMessage(task, user, intent.Action)
	if err := h.mailer.Send(ctx, user.Email, subject, body); err != nil {
		h.metrics.NotificationsFailed.WithLabelValues(kindTaskEvent).Inc()
		return err
	}

	h.metrics.NotificationsSent.WithLabelValues(kindTaskEvent).Inc()
	return nil
}

func taskEventMessage(task *models.Task, user *models.User, action Action) (string, string) {
	due := "None"
	if d := utils.FormatDate(task.DueDate); d != nil {
		due = *d
	}

	subject := fmt.Sprintf("Task '%s': %s", task.Title, action.Title())
	body := fmt.Sprintf(
		"Hello %s,\n\nThe task '%s' has been %s.\n\nStatus: %s\nPriority: %s\nDue: %s\n\nRegards,\nTask Manager",
		user.Username, task.Title, action, task.Status, task.Priority, due,
	)
	return subject, body
}
