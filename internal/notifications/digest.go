package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/metrics"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/utils"
)

const (
	kindDigest    = "digest"
	digestSubject = "Your overdue tasks summary"
)

// OverdueDigestJob sends every user one summary of the tasks assigned to
// them whose due date is before today.
type OverdueDigestJob struct {
	users   repository.UserRepository
	tasks   repository.TaskRepository
	mailer  Mailer
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewOverdueDigestJob(users repository.UserRepository, tasks repository.TaskRepository, mailer Mailer, m *metrics.Metrics, logger *slog.Logger) *OverdueDigestJob {
	return &OverdueDigestJob{
		users:   users,
		tasks:   tasks,
		mailer:  mailer,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock replaces the clock used to determine today.
func (j *OverdueDigestJob) WithClock(now func() time.Time) *OverdueDigestJob {
	j.now = now
	return j
}

func (j *OverdueDigestJob) Name() string {
	return constants.DigestJobName
}

// Run processes every user. A failure for one user does not stop the
// others; all failures are returned together.
func (j *OverdueDigestJob) Run(ctx context.Context) error {
	today := utils.DateOf(j.now().UTC())

	users, err := j.users.List()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	var errs []error
	sent := 0
	for i := range users {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		ok, err := j.notifyUser(ctx, &users[i], today)
		if err != nil {
			j.metrics.NotificationsFailed.WithLabelValues(kindDigest).Inc()
			j.logger.ErrorContext(ctx, "failed to send overdue digest",
				slog.Uint64("user_id", users[i].ID),
				slog.Any("error", err),
			)
			errs = append(errs, fmt.Errorf("user %d: %w", users[i].ID, err))
			continue
		}
		if ok {
			sent++
		}
	}

	j.logger.InfoContext(ctx, "overdue digest finished",
		slog.String("date", today.Format(constants.DateLayout)),
		slog.Int("users", len(users)),
		slog.Int("sent", sent),
		slog.Int("failed", len(errs)),
	)
	return errors.Join(errs...)
}

func (j *OverdueDigestJob) notifyUser(ctx context.Context, user *models.User, today time.Time) (bool, error) {
	if user.Email == "" {
		return false, nil
	}

	tasks, err := j.tasks.ListOverdueForAssignee(user.ID, today)
	if err != nil {
		return false, fmt.Errorf("failed to list overdue tasks: %w", err)
	}
	if len(tasks) == 0 {
		return false, nil
	}

	if err := j.mailer.Send(ctx, user.Email, digestSubject, digestBody(user, tasks)); err != nil {
		return false, err
	}

	j.metrics.NotificationsSent.WithLabelValues(kindDigest).Inc()
	return true, nil
}

func digestBody(user *models.User, tasks []models.Task) string {
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		project := strconv.FormatUint(t.ProjectID, 10)
		if t.Project != nil && t.Project.Name != "" {
			project = t.Project.Name
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s (Project: %s) due %s",
			t.Status, t.Title, project, t.DueDate.Format(constants.DateLayout)))
	}

	return fmt.Sprintf("Hello %s,\n\nThe following tasks are overdue:\n\n%s\n\nRegards,\nTask Manager",
		user.Username, strings.Join(lines, "\n"))
}
