package notifications

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Action is the kind of task change that triggered a notification.
type Action string

const (
	ActionAssigned      Action = "assigned"
	ActionStatusChanged Action = "status_changed"
)

// Human returns the action as lower case words, e.g. "status changed".
func (a Action) Human() string {
	return strings.ReplaceAll(string(a), "_", " ")
}

// Title returns the action in title case, e.g. "Status Changed".
func (a Action) Title() string {
	words := strings.Fields(a.Human())
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Intent is a queued request to notify the assignee of a task.
type Intent struct {
	ID      uuid.UUID `json:"id"`
	TaskID  uint64    `json:"task_id"`
	Action  Action    `json:"action"`
	Attempt int       `json:"attempt"`
}

// NewIntent creates an intent with a fresh id.
func NewIntent(taskID uint64, action Action) Intent {
	return Intent{
		ID:     uuid.New(),
		TaskID: taskID,
		Action: action,
	}
}

// IntentHandler processes one intent. Returning an error makes the
// dispatcher retry the intent until its attempts are exhausted.
type IntentHandler interface {
	Handle(ctx context.Context, intent Intent) error
}

// Job is a unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Notifier accepts notification intents without blocking the caller.
type Notifier interface {
	Notify(taskID uint64, action Action)
}
