// Package session holds the per-call candidate state shared by every
// stage of a pre-screening conversation, and resolves the final call
// status from it at teardown.
package session

import "fmt"

// MaxIrrelevant is the number of irrelevant answers tolerated across the
// whole call before the conversation is ended.
const MaxIrrelevant = 3

// QuestionResult is the terminal outcome of a single knockout question.
// Once assigned to a question it is never reassigned.
type QuestionResult string

const (
	ResultPass               QuestionResult = "pass"
	ResultFail               QuestionResult = "fail"
	ResultUnclear            QuestionResult = "unclear"
	ResultIrrelevant         QuestionResult = "irrelevant"
	ResultRecruiterRequested QuestionResult = "recruiter_requested"
)

// KnockoutAnswer records the outcome of one knockout question.
type KnockoutAnswer struct {
	QuestionID    string         `json:"question_id"`
	QuestionText  string         `json:"question_text"`
	Result        QuestionResult `json:"result"`
	RawAnswer     string         `json:"raw_answer"`
	CandidateNote string         `json:"candidate_note,omitempty"`
}

// OpenAnswer records the summarized answer to one open question.
type OpenAnswer struct {
	QuestionID    string `json:"question_id"`
	QuestionText  string `json:"question_text"`
	AnswerSummary string `json:"answer_summary"`
	CandidateNote string `json:"candidate_note,omitempty"`
}

// State is the single mutable record shared by the whole call. It is
// created once from the Input, mutated by every stage and task, and read
// exactly once by Resolve at teardown. One State per call; concurrent
// calls each own their own instance.
type State struct {
	Input Input

	KnockoutAnswers []KnockoutAnswer
	OpenAnswers     []OpenAnswer

	// ConsentGiven is nil until the candidate answered the consent
	// question either way.
	ConsentGiven      *bool
	VoicemailDetected bool

	PassedKnockout           bool
	InterestedInAlternatives bool

	ChosenTimeslot       string
	SchedulingPreference string
	CalendarEventID      string
	ScheduledDate        string // YYYY-MM-DD
	ScheduledTime        string // spoken form, e.g. "10:00"

	// SilenceCount tracks consecutive away periods; it resets to zero
	// whenever the candidate is detected as present again.
	SilenceCount int

	// SuppressSilence mutes the silence handler while the system itself
	// is speaking, so a long intro is not mistaken for user silence.
	SuppressSilence bool

	// IrrelevantCount is the cross-stage irrelevant answer counter. It
	// persists across stage changes and resets on any accepted answer.
	IrrelevantCount int

	// RecruiterRequested is set when a task inside a group escalates, so
	// the group can abort its remaining tasks.
	RecruiterRequested bool
}

// NewState creates the call state from its immutable input.
func NewState(in Input) *State {
	return &State{Input: in}
}

// RecordKnockoutAnswer appends a knockout answer. A result already
// recorded for the same question id is terminal and is kept as is.
func (s *State) RecordKnockoutAnswer(a KnockoutAnswer) {
	for _, existing := range s.KnockoutAnswers {
		if existing.QuestionID == a.QuestionID {
			return
		}
	}
	s.KnockoutAnswers = append(s.KnockoutAnswers, a)
}

// RecordOpenAnswer appends an open answer, replacing any earlier answer
// for the same question id so the candidate can amend a previous answer.
func (s *State) RecordOpenAnswer(a OpenAnswer) {
	for i, existing := range s.OpenAnswers {
		if existing.QuestionID == a.QuestionID {
			s.OpenAnswers[i] = a
			return
		}
	}
	s.OpenAnswers = append(s.OpenAnswers, a)
}

// ResetIrrelevant clears the cross-stage irrelevance counter. Any valid
// answer forgives prior irrelevant turns.
func (s *State) ResetIrrelevant() {
	s.IrrelevantCount = 0
}

// IrrelevantLimitReached reports whether the cross-stage cap was hit.
func (s *State) IrrelevantLimitReached() bool {
	return s.IrrelevantCount >= MaxIrrelevant
}

// CheckIrrelevant increments the cross-stage irrelevance counter. While
// below the cap it returns a system note instructing the model to warn
// the candidate, and limitReached=false. Once the cap is reached it
// returns limitReached=true and the caller must force a terminal
// irrelevant outcome.
//
// The ask describes what the candidate should do instead, e.g. "answer
// the question"; it is embedded in the warning note.
func (s *State) CheckIrrelevant(ask string) (note string, limitReached bool) {
	if ask == "" {
		ask = "answer the question"
	}
	s.IrrelevantCount++
	if s.IrrelevantCount >= MaxIrrelevant {
		return "", true
	}
	remaining := MaxIrrelevant - s.IrrelevantCount
	return fmt.Sprintf(
		"[system] Irrelevant answer %d/%d. %d chance(s) left. Politely but clearly ask the candidate to %s.",
		s.IrrelevantCount, MaxIrrelevant, remaining, ask,
	), false
}
