package calendar

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func fixedNow(y int, m time.Month, d int) func() time.Time {
	return func() time.Time {
		return time.Date(y, m, d, 14, 0, 0, 0, time.UTC)
	}
}

func TestFallback_GetSlotsSkipsWeekends(t *testing.T) {
	t.Parallel()
	// Thursday; the next three weekdays are Fri, Mon, Tue.
	f := &Fallback{Now: fixedNow(2026, time.March, 5)}

	slots, err := f.GetSlots(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("GetSlots: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("slots=%d, want 3", len(slots))
	}

	want := []Slot{
		{Date: "2026-03-06", Time: "9:30"},
		{Date: "2026-03-09", Time: "10:00"},
		{Date: "2026-03-10", Time: "9:00"},
	}
	for i, w := range want {
		if slots[i].Date != w.Date || slots[i].Time != w.Time {
			t.Fatalf("slot[%d]=%+v, want %s at %s", i, slots[i], w.Date, w.Time)
		}
	}
	if !strings.HasPrefix(slots[0].Spoken, "tomorrow, ") {
		t.Fatalf("slot[0].Spoken=%q, want the tomorrow prefix", slots[0].Spoken)
	}
	if strings.HasPrefix(slots[1].Spoken, "tomorrow") {
		t.Fatalf("slot[1].Spoken=%q, must not claim tomorrow", slots[1].Spoken)
	}
}

func TestFallback_GetSlotsFromFridayStartsMonday(t *testing.T) {
	t.Parallel()
	f := &Fallback{Now: fixedNow(2026, time.March, 6)}

	slots, err := f.GetSlots(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("GetSlots: %v", err)
	}
	if slots[0].Date != "2026-03-09" {
		t.Fatalf("slot[0].Date=%s, want the weekend skipped", slots[0].Date)
	}
	if strings.HasPrefix(slots[0].Spoken, "tomorrow") {
		t.Fatalf("slot[0].Spoken=%q, Monday is not tomorrow on a Friday", slots[0].Spoken)
	}
}

func TestFallback_GetSlotsCoercesOffsetToAtLeastOneDay(t *testing.T) {
	t.Parallel()
	f := &Fallback{Now: fixedNow(2026, time.March, 5)}

	slots, err := f.GetSlots(context.Background(), 0, 1)
	if err != nil {
		t.Fatalf("GetSlots: %v", err)
	}
	if slots[0].Date != "2026-03-06" {
		t.Fatalf("slot[0].Date=%s, want never today", slots[0].Date)
	}
}

func TestFallback_GetSlotsForDate(t *testing.T) {
	t.Parallel()
	f := &Fallback{Now: fixedNow(2026, time.March, 5)}
	ctx := context.Background()

	slots, err := f.GetSlotsForDate(ctx, "2026-03-11")
	if err != nil {
		t.Fatalf("GetSlotsForDate: %v", err)
	}
	if len(slots) != 1 || slots[0].Time != "11:00" {
		t.Fatalf("slots=%+v, want the Wednesday slot at 11:00", slots)
	}

	slots, err = f.GetSlotsForDate(ctx, "2026-03-07")
	if err != nil {
		t.Fatalf("GetSlotsForDate: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("slots=%+v, want no availability on a Saturday", slots)
	}

	if _, err = f.GetSlotsForDate(ctx, "garbage"); err == nil {
		t.Fatal("GetSlotsForDate accepted an invalid date")
	}
}

func TestFallback_CreateEventIsNotConfigured(t *testing.T) {
	t.Parallel()
	f := &Fallback{}
	_, err := f.CreateEvent(context.Background(), "Jamie", "2026-03-09", "10:00", "Interview")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err=%v, want ErrNotConfigured", err)
	}
}

func TestFormatSpoken(t *testing.T) {
	t.Parallel()
	today := time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC)

	got := FormatSpoken(time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC), "9:30", today)
	if got != "tomorrow, Friday 6 March at 9:30" {
		t.Fatalf("FormatSpoken=%q", got)
	}

	got = FormatSpoken(time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC), "10:00", today)
	if got != "Monday 9 March at 10:00" {
		t.Fatalf("FormatSpoken=%q", got)
	}

	// Year boundary: Jan 1 is tomorrow seen from Dec 31.
	eve := time.Date(2025, time.December, 31, 9, 0, 0, 0, time.UTC)
	got = FormatSpoken(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), "10:00", eve)
	if !strings.HasPrefix(got, "tomorrow, ") {
		t.Fatalf("FormatSpoken=%q, want the tomorrow prefix across the year boundary", got)
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()
	d, err := ParseDate("2026-03-09")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Weekday() != time.Monday {
		t.Fatalf("weekday=%s, want Monday", d.Weekday())
	}
	if _, err := ParseDate("09-03-2026"); err == nil {
		t.Fatal("ParseDate accepted a non-ISO date")
	}
}
