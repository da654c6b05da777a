package stage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hirevox/prescreen/pkg/calendar"
	"github.com/hirevox/prescreen/pkg/core/flow"
	"github.com/hirevox/prescreen/pkg/core/session"
)

// slotOffsetDays is the minimum number of days from today before the
// first proposable slot. 1 means the earliest slot is tomorrow.
const slotOffsetDays = 1

const slotCount = 3

// Scheduling proposes interview slots and books the chosen one. The
// calendar write happens off the conversational path; the confirmation
// is spoken immediately.
type Scheduling struct {
	in session.Input
}

func NewScheduling(in session.Input) *Scheduling { return &Scheduling{in: in} }

func (s *Scheduling) Name() string { return "scheduling" }

func (s *Scheduling) Instructions() string {
	today := time.Now().Format("Monday 2 January 2006")
	return schedulingPrompt(today, s.in.AllowEscalation)
}

func (s *Scheduling) Enter(ctx context.Context, rt *flow.Runtime) {
	st := rt.State()
	st.SilenceCount = 0
	rt.SayEntry(ctx, msgSchedulingInvite(s.in.OfficeLocation))
	rt.GenerateEntryReply(ctx, "Now call `get_available_timeslots` to fetch the available moments.")
}

func (s *Scheduling) Tools() []flow.Tool {
	tools := sharedTools(s.in, s.in.AllowEscalation)

	tools = append(tools,
		flow.MakeTool("get_available_timeslots",
			"Fetch the available timeslots for an interview.",
			nil,
			func(ctx context.Context, rt *flow.Runtime, _ struct{}) (string, error) {
				slots, err := rt.Scheduler().GetSlots(ctx, slotOffsetDays, slotCount)
				if err != nil {
					rt.Logger().Error("slot lookup failed", "error", err)
					return "No timeslots could be fetched. Call `schedule_with_recruiter` with the candidate's preference.", nil
				}
				return formatSlots(slots), nil
			}),
		flow.MakeTool("get_slots_for_date",
			"Fetch the available timeslots on one specific date.",
			[]flow.ToolParam{{Name: "date", Description: "The date in YYYY-MM-DD format"}},
			func(ctx context.Context, rt *flow.Runtime, in dateInput) (string, error) {
				if _, err := calendar.ParseDate(in.Date); err != nil {
					return "That is not a valid date. Determine the date in YYYY-MM-DD format and try again.", nil
				}
				slots, err := rt.Scheduler().GetSlotsForDate(ctx, in.Date)
				if err != nil {
					rt.Logger().Error("slot lookup failed", "date", in.Date, "error", err)
					return "No timeslots could be fetched for that date. Propose the moments you already have.", nil
				}
				if len(slots) == 0 {
					return "No availability on that date. Propose other moments or call `schedule_with_recruiter`.", nil
				}
				return formatSlots(slots), nil
			}),
		flow.MakeTool("confirm_timeslot",
			"The candidate picked a timeslot. Confirm it and wrap up the call.",
			[]flow.ToolParam{
				{Name: "timeslot", Description: "The chosen moment as text, including day and date"},
				{Name: "slot_date", Description: "The date in YYYY-MM-DD format"},
				{Name: "slot_time", Description: "The time, e.g. \"10 o'clock\""},
			},
			func(ctx context.Context, rt *flow.Runtime, in timeslotInput) (string, error) {
				st := rt.State()
				st.ResetIrrelevant()
				st.ChosenTimeslot = in.Timeslot
				st.ScheduledDate = in.SlotDate
				st.ScheduledTime = in.SlotTime

				s.bookEvent(rt, in.SlotDate, in.SlotTime)

				followup := msgSchedulingFollowupLater
				if isTomorrow(in.SlotDate, time.Now()) {
					followup = msgSchedulingFollowupTomorrow
				}
				rt.SayEntry(ctx, msgSchedulingConfirm(in.Timeslot, s.in.OfficeLocation, s.in.OfficeAddress, followup))
				rt.Shutdown("scheduled")
				return "", nil
			}),
		flow.MakeTool("schedule_with_recruiter",
			"No suitable moment found. Save the candidate's preference so the recruiter can follow up.",
			[]flow.ToolParam{{Name: "preference", Description: "Which days or times work better for the candidate"}},
			func(ctx context.Context, rt *flow.Runtime, in preferenceInput) (string, error) {
				rt.State().SchedulingPreference = in.Preference
				rt.SayEntry(ctx, msgSchedulingPreference)
				rt.Shutdown("scheduling preference")
				return "", nil
			}))

	return tools
}

// bookEvent writes the booking to the calendar off the conversational
// path. The candidate hears the confirmation regardless; a failed write
// surfaces to the recruiter through the missing event id.
func (s *Scheduling) bookEvent(rt *flow.Runtime, date, timeOfDay string) {
	candidate := s.in.CandidateName
	title := fmt.Sprintf("Interview: %s", s.in.JobTitle)
	rt.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		id, err := rt.Scheduler().CreateEvent(ctx, candidate, date, timeOfDay, title)
		if err != nil {
			if !errors.Is(err, calendar.ErrNotConfigured) {
				rt.Logger().Error("calendar event creation failed", "date", date, "error", err)
			}
			return
		}
		rt.Logger().Info("calendar event created", "event_id", id, "date", date)
		rt.SetCalendarEventID(id)
	})
}

func formatSlots(slots []calendar.Slot) string {
	if len(slots) == 0 {
		return "No timeslots available. Call `schedule_with_recruiter` with the candidate's preference."
	}
	var b strings.Builder
	b.WriteString("Available moments:\n")
	for _, s := range slots {
		fmt.Fprintf(&b, "- %s\n", s.Spoken)
	}
	return b.String()
}

func isTomorrow(date string, now time.Time) bool {
	d, err := calendar.ParseDate(date)
	if err != nil {
		return false
	}
	ty, tm, td := now.AddDate(0, 0, 1).Date()
	dy, dm, dd := d.Date()
	return dy == ty && dm == tm && dd == td
}

type dateInput struct {
	Date string `json:"date"`
}

type timeslotInput struct {
	Timeslot string `json:"timeslot"`
	SlotDate string `json:"slot_date"`
	SlotTime string `json:"slot_time"`
}

type preferenceInput struct {
	Preference string `json:"preference"`
}
