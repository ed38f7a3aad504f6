package notifications

import (
	"context"
	"errors"
	"sync"

	"github.com/yukikurage/task-tracker-api/pkg/logging"
)

var discardLogger = logging.Discard()

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// recordingMailer keeps every message and fails for addresses in failFor.
type recordingMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	failFor map[string]bool
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failFor[to] {
		return errors.New("smtp: connection refused")
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *recordingMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}
