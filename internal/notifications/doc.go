// Package notifications delivers task emails outside the request path.
//
// The package defines the contracts first: IntentHandler for per-task
// events and Job for scheduled work. The application then builds a Queue,
// a Locker and a Mailer, and registers the concrete TaskEventHandler and
// OverdueDigestJob against a Dispatcher and a Scheduler.
package notifications
