// Package webhook assembles and delivers the final call result to the
// backend. Delivery failures are logged only; they never block call
// teardown.
package webhook

import (
	"github.com/hirevox/prescreen/pkg/core/session"
)

// TranscriptEntry is one ordered role/text pair of the conversation.
type TranscriptEntry struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// Usage carries the per-call pipeline consumption counters.
type Usage struct {
	PromptTokens     int64   `json:"llm_prompt_tokens"`
	CompletionTokens int64   `json:"llm_completion_tokens"`
	TTSCharacters    int64   `json:"tts_characters"`
	STTAudioSeconds  float64 `json:"stt_audio_duration"`
}

// KnockoutAnswerPayload is the wire form of one knockout answer.
type KnockoutAnswerPayload struct {
	QuestionID    string `json:"question_id"`
	InternalID    string `json:"internal_id"`
	QuestionText  string `json:"question_text"`
	Result        string `json:"result"`
	RawAnswer     string `json:"raw_answer"`
	CandidateNote string `json:"candidate_note"`
}

// OpenAnswerPayload is the wire form of one open answer.
type OpenAnswerPayload struct {
	QuestionID    string `json:"question_id"`
	InternalID    string `json:"internal_id"`
	QuestionText  string `json:"question_text"`
	AnswerSummary string `json:"answer_summary"`
	CandidateNote string `json:"candidate_note"`
}

// Result is the single JSON payload posted on call completion.
type Result struct {
	CallID                   string                  `json:"call_id"`
	Status                   session.Status          `json:"status"`
	ConsentGiven             *bool                   `json:"consent_given"`
	VoicemailDetected        bool                    `json:"voicemail_detected"`
	PassedKnockout           bool                    `json:"passed_knockout"`
	InterestedInAlternatives bool                    `json:"interested_in_alternatives"`
	KnockoutAnswers          []KnockoutAnswerPayload `json:"knockout_answers"`
	OpenAnswers              []OpenAnswerPayload     `json:"open_answers"`
	ChosenTimeslot           string                  `json:"chosen_timeslot,omitempty"`
	SchedulingPreference     string                  `json:"scheduling_preference,omitempty"`
	CalendarEventID          string                  `json:"calendar_event_id,omitempty"`
	ScheduledDate            string                  `json:"scheduled_date,omitempty"`
	ScheduledTime            string                  `json:"scheduled_time,omitempty"`
	Usage                    *Usage                  `json:"usage,omitempty"`
	Transcript               []TranscriptEntry       `json:"transcript"`
}

// BuildResult maps the final session state, transcript and usage into
// the wire payload. Internal ids are joined back in from the input
// question lists via the stable question ids.
func BuildResult(st *session.State, transcript []TranscriptEntry, usage *Usage) *Result {
	koInternal := make(map[string]string, len(st.Input.KnockoutQuestions))
	for _, q := range st.Input.KnockoutQuestions {
		koInternal[q.ID] = q.InternalID
	}
	oqInternal := make(map[string]string, len(st.Input.OpenQuestions))
	for _, q := range st.Input.OpenQuestions {
		oqInternal[q.ID] = q.InternalID
	}

	res := &Result{
		CallID:                   st.Input.CallID,
		Status:                   session.Resolve(st),
		ConsentGiven:             st.ConsentGiven,
		VoicemailDetected:        st.VoicemailDetected,
		PassedKnockout:           st.PassedKnockout,
		InterestedInAlternatives: st.InterestedInAlternatives,
		KnockoutAnswers:          make([]KnockoutAnswerPayload, 0, len(st.KnockoutAnswers)),
		OpenAnswers:              make([]OpenAnswerPayload, 0, len(st.OpenAnswers)),
		ChosenTimeslot:           st.ChosenTimeslot,
		SchedulingPreference:     st.SchedulingPreference,
		CalendarEventID:          st.CalendarEventID,
		ScheduledDate:            st.ScheduledDate,
		ScheduledTime:            st.ScheduledTime,
		Usage:                    usage,
		Transcript:               transcript,
	}
	if res.Transcript == nil {
		res.Transcript = []TranscriptEntry{}
	}

	for _, a := range st.KnockoutAnswers {
		res.KnockoutAnswers = append(res.KnockoutAnswers, KnockoutAnswerPayload{
			QuestionID:    a.QuestionID,
			InternalID:    koInternal[a.QuestionID],
			QuestionText:  a.QuestionText,
			Result:        string(a.Result),
			RawAnswer:     a.RawAnswer,
			CandidateNote: a.CandidateNote,
		})
	}
	for _, a := range st.OpenAnswers {
		res.OpenAnswers = append(res.OpenAnswers, OpenAnswerPayload{
			QuestionID:    a.QuestionID,
			InternalID:    oqInternal[a.QuestionID],
			QuestionText:  a.QuestionText,
			AnswerSummary: a.AnswerSummary,
			CandidateNote: a.CandidateNote,
		})
	}
	return res
}
