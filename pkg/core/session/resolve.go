package session

// Status is the externally reported outcome of a completed call.
type Status string

const (
	StatusCompleted      Status = "completed"
	StatusVoicemail      Status = "voicemail"
	StatusNotInterested  Status = "not_interested"
	StatusKnockoutFailed Status = "knockout_failed"
	StatusEscalated      Status = "escalated"
	StatusUnclear        Status = "unclear"
	StatusIrrelevant     Status = "irrelevant"
	StatusIncomplete     Status = "incomplete"
)

// Resolve computes the final call status from the session state. It is a
// pure function over the state and is evaluated once at teardown.
//
// Precedence, highest first: voicemail, refused consent, irrelevance cap,
// an unclear knockout, recruiter escalation, knockout failure (split on
// interest in alternatives), a confirmed or preferred interview moment.
// Anything else means the call ended before reaching an outcome.
func Resolve(s *State) Status {
	if s.VoicemailDetected {
		return StatusVoicemail
	}
	if s.ConsentGiven != nil && !*s.ConsentGiven {
		return StatusNotInterested
	}
	if s.IrrelevantLimitReached() {
		return StatusIrrelevant
	}

	var failed, recruiter bool
	for _, a := range s.KnockoutAnswers {
		switch a.Result {
		case ResultUnclear:
			return StatusUnclear
		case ResultRecruiterRequested:
			recruiter = true
		case ResultFail:
			failed = true
		}
	}
	if recruiter || s.RecruiterRequested {
		return StatusEscalated
	}
	if failed && !s.InterestedInAlternatives {
		return StatusNotInterested
	}
	if failed && s.InterestedInAlternatives {
		return StatusKnockoutFailed
	}

	if s.ChosenTimeslot != "" || s.SchedulingPreference != "" {
		return StatusCompleted
	}
	return StatusIncomplete
}
