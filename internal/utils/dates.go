package utils

import (
	"time"

	"github.com/yukikurage/task-tracker-api/internal/constants"
)

var dateInputLayouts = []string{
	constants.DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"20060102",
}

// ParseDate reads a calendar date from s. Time components are accepted and
// dropped. It returns nil when s is empty or in an unknown format.
func ParseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := DateOf(t)
			return &d
		}
	}
	return nil
}

// DateOf truncates t to midnight UTC of its calendar date.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders d as YYYY-MM-DD, or nil when d is nil.
func FormatDate(d *time.Time) *string {
	if d == nil {
		return nil
	}
	s := d.Format(constants.DateLayout)
	return &s
}
