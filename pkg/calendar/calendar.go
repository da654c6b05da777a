// Package calendar is the scheduling collaborator boundary: interview
// slot lookup and event creation. A Postgres-backed implementation is
// provided for production; when no store is configured the conversation
// falls back to a small computed slot set so scheduling never blocks a
// call.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotConfigured is returned by operations that need a configured
// backing store when none is available.
var ErrNotConfigured = errors.New("calendar: not configured")

// Slot is one proposable interview moment.
type Slot struct {
	Date   string // YYYY-MM-DD
	Time   string // spoken form, e.g. "10:00"
	Spoken string // full TTS-friendly phrase, e.g. "tomorrow, Tuesday 3 March at 10:00"
}

// Scheduler is the interface the Scheduling stage talks to. It must be
// safe for concurrent use by many simultaneous calls.
type Scheduler interface {
	// GetSlots returns up to count proposable slots, the earliest no
	// sooner than offsetDays from today.
	GetSlots(ctx context.Context, offsetDays, count int) ([]Slot, error)

	// GetSlotsForDate returns the open slots on one specific date
	// (YYYY-MM-DD). An empty result means no availability that day.
	GetSlotsForDate(ctx context.Context, date string) ([]Slot, error)

	// CreateEvent books the interview in the recruiter's calendar and
	// returns the created event id.
	CreateEvent(ctx context.Context, candidate, date, timeOfDay, title string) (string, error)
}

// FormatSpoken renders a slot date and time as a TTS-friendly phrase,
// prefixing "tomorrow" when the date is the day after today.
func FormatSpoken(d time.Time, timeOfDay string, today time.Time) string {
	prefix := ""
	ty, tm, td := today.AddDate(0, 0, 1).Date()
	if dy, dm, dd := d.Date(); dy == ty && dm == tm && dd == td {
		prefix = "tomorrow, "
	}
	return fmt.Sprintf("%s%s %d %s at %s", prefix, d.Weekday(), d.Day(), d.Month(), timeOfDay)
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}
