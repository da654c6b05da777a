package session

import "testing"

func boolPtr(v bool) *bool { return &v }

func TestResolve(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		state func() *State
		want  Status
	}{
		{
			name: "voicemail wins over everything",
			state: func() *State {
				s := NewState(Input{})
				s.VoicemailDetected = true
				s.ChosenTimeslot = "Monday at 10:00"
				s.IrrelevantCount = MaxIrrelevant
				return s
			},
			want: StatusVoicemail,
		},
		{
			name: "refused consent",
			state: func() *State {
				s := NewState(Input{})
				s.ConsentGiven = boolPtr(false)
				s.ChosenTimeslot = "Monday at 10:00"
				return s
			},
			want: StatusNotInterested,
		},
		{
			name: "given consent does not change the outcome",
			state: func() *State {
				s := NewState(Input{})
				s.ConsentGiven = boolPtr(true)
				s.ChosenTimeslot = "Monday at 10:00"
				return s
			},
			want: StatusCompleted,
		},
		{
			name: "irrelevance cap",
			state: func() *State {
				s := NewState(Input{})
				s.IrrelevantCount = MaxIrrelevant
				s.ChosenTimeslot = "Monday at 10:00"
				return s
			},
			want: StatusIrrelevant,
		},
		{
			name: "unclear knockout beats escalation",
			state: func() *State {
				s := NewState(Input{})
				s.RecordKnockoutAnswer(KnockoutAnswer{QuestionID: "k1", Result: ResultRecruiterRequested})
				s.RecordKnockoutAnswer(KnockoutAnswer{QuestionID: "k2", Result: ResultUnclear})
				return s
			},
			want: StatusUnclear,
		},
		{
			name: "recruiter requested during a knockout",
			state: func() *State {
				s := NewState(Input{})
				s.RecordKnockoutAnswer(KnockoutAnswer{QuestionID: "k1", Result: ResultRecruiterRequested})
				return s
			},
			want: StatusEscalated,
		},
		{
			name: "recruiter requested outside knockouts",
			state: func() *State {
				s := NewState(Input{})
				s.RecruiterRequested = true
				s.ChosenTimeslot = "Monday at 10:00"
				return s
			},
			want: StatusEscalated,
		},
		{
			name: "knockout failure without alternative interest",
			state: func() *State {
				s := NewState(Input{})
				s.RecordKnockoutAnswer(KnockoutAnswer{QuestionID: "k1", Result: ResultFail})
				return s
			},
			want: StatusNotInterested,
		},
		{
			name: "knockout failure with alternative interest",
			state: func() *State {
				s := NewState(Input{})
				s.RecordKnockoutAnswer(KnockoutAnswer{QuestionID: "k1", Result: ResultFail})
				s.InterestedInAlternatives = true
				return s
			},
			want: StatusKnockoutFailed,
		},
		{
			name: "confirmed timeslot",
			state: func() *State {
				s := NewState(Input{})
				s.RecordKnockoutAnswer(KnockoutAnswer{QuestionID: "k1", Result: ResultPass})
				s.PassedKnockout = true
				s.ChosenTimeslot = "Monday at 10:00"
				return s
			},
			want: StatusCompleted,
		},
		{
			name: "scheduling preference counts as completed",
			state: func() *State {
				s := NewState(Input{})
				s.SchedulingPreference = "call back after 17:00"
				return s
			},
			want: StatusCompleted,
		},
		{
			name: "dropped call before any outcome",
			state: func() *State {
				s := NewState(Input{})
				s.RecordKnockoutAnswer(KnockoutAnswer{QuestionID: "k1", Result: ResultPass})
				return s
			},
			want: StatusIncomplete,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.state()); got != tt.want {
				t.Fatalf("Resolve()=%q, want %q", got, tt.want)
			}
		})
	}
}
