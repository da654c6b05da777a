package calendar

import (
	"context"
	"time"
)

// fallbackTimes is the first proposable time per weekday (Monday=0).
// Times vary per day so consecutive proposals do not all sound the same.
var fallbackTimes = map[time.Weekday]string{
	time.Monday:    "10:00",
	time.Tuesday:   "9:00",
	time.Wednesday: "11:00",
	time.Thursday:  "10:00",
	time.Friday:    "9:30",
}

// Fallback is the unconfigured-scheduler slot source: a small slot set
// computed purely from weekday arithmetic, skipping weekends. It cannot
// create calendar events.
type Fallback struct {
	// Now overrides the clock in tests. Nil means time.Now.
	Now func() time.Time
}

func (f *Fallback) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// GetSlots returns count weekday slots starting offsetDays from today.
func (f *Fallback) GetSlots(_ context.Context, offsetDays, count int) ([]Slot, error) {
	if offsetDays < 1 {
		offsetDays = 1
	}
	today := f.now()
	d := today.AddDate(0, 0, offsetDays)

	slots := make([]Slot, 0, count)
	for len(slots) < count {
		if tod, ok := fallbackTimes[d.Weekday()]; ok {
			slots = append(slots, Slot{
				Date:   d.Format("2006-01-02"),
				Time:   tod,
				Spoken: FormatSpoken(d, tod, today),
			})
		}
		d = d.AddDate(0, 0, 1)
	}
	return slots, nil
}

// GetSlotsForDate returns the computed slot for a specific weekday date,
// or nothing for weekends.
func (f *Fallback) GetSlotsForDate(_ context.Context, date string) ([]Slot, error) {
	d, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	tod, ok := fallbackTimes[d.Weekday()]
	if !ok {
		return nil, nil
	}
	return []Slot{{
		Date:   date,
		Time:   tod,
		Spoken: FormatSpoken(d, tod, f.now()),
	}}, nil
}

// CreateEvent always fails: without a configured store there is no
// calendar to write to. Callers tolerate this.
func (f *Fallback) CreateEvent(context.Context, string, string, string, string) (string, error) {
	return "", ErrNotConfigured
}
