package session

import (
	"encoding/json"
	"fmt"
)

// KnockoutQuestion is a yes/no hard-requirement question. A failed
// knockout question disqualifies the candidate from the configured role.
type KnockoutQuestion struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	InternalID string `json:"internal_id,omitempty"`
	// Context is background the agent may use when the candidate asks
	// for clarification. It is never read out spontaneously.
	Context string `json:"context,omitempty"`
	// DataKey correlates the question with a pre-known answer in the
	// candidate record, allowing the question to be skipped.
	DataKey string `json:"data_key,omitempty"`
}

// OpenQuestion is a free-text qualification question. Answers are
// summarized, not scored.
type OpenQuestion struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	InternalID  string `json:"internal_id,omitempty"`
	Description string `json:"description,omitempty"`
}

// CandidateRecord carries pre-known candidate data from the CRM. It is
// used to skip knockout questions and scheduling.
type CandidateRecord struct {
	KnownAnswers        map[string]string `json:"known_answers"`
	ExistingBookingDate string            `json:"existing_booking_date,omitempty"`
}

// Input is the immutable configuration for one pre-screening call,
// supplied once by the backend. Question ids are unique within their
// list and stable for the call's lifetime.
type Input struct {
	CallID string `json:"call_id"`

	CandidateName   string           `json:"candidate_name"`
	CandidateKnown  bool             `json:"candidate_known"`
	CandidateRecord *CandidateRecord `json:"candidate_record,omitempty"`

	JobTitle       string `json:"job_title"`
	OfficeLocation string `json:"office_location"`
	OfficeAddress  string `json:"office_address"`

	KnockoutQuestions []KnockoutQuestion `json:"knockout_questions"`
	OpenQuestions     []OpenQuestion     `json:"open_questions"`

	// StartStage skips directly to a named stage for isolated manual
	// testing. Empty means the normal greeting entry.
	StartStage      string `json:"start_stage,omitempty"`
	AllowEscalation bool   `json:"allow_escalation"`
	RequireConsent  bool   `json:"require_consent"`
	// Playground suppresses webhook delivery so test calls cause no
	// backend writes.
	Playground bool `json:"is_playground,omitempty"`
}

// ParseInput decodes a session input delivered as call metadata.
func ParseInput(data []byte) (Input, error) {
	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		return Input{}, fmt.Errorf("parse session input: %w", err)
	}
	if err := in.Validate(); err != nil {
		return Input{}, err
	}
	return in, nil
}

// Validate checks the question id uniqueness invariant.
func (in Input) Validate() error {
	seen := make(map[string]struct{}, len(in.KnockoutQuestions))
	for _, q := range in.KnockoutQuestions {
		if q.ID == "" {
			return fmt.Errorf("knockout question with empty id")
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("duplicate knockout question id %q", q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	seen = make(map[string]struct{}, len(in.OpenQuestions))
	for _, q := range in.OpenQuestions {
		if q.ID == "" {
			return fmt.Errorf("open question with empty id")
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("duplicate open question id %q", q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}

// KnownAnswer looks up a pre-known answer for a question data key.
func (in Input) KnownAnswer(dataKey string) (string, bool) {
	if dataKey == "" || !in.CandidateKnown || in.CandidateRecord == nil {
		return "", false
	}
	v, ok := in.CandidateRecord.KnownAnswers[dataKey]
	return v, ok
}

// ExistingBooking returns the pre-existing interview booking, if any.
func (in Input) ExistingBooking() (string, bool) {
	if !in.CandidateKnown || in.CandidateRecord == nil {
		return "", false
	}
	if in.CandidateRecord.ExistingBookingDate == "" {
		return "", false
	}
	return in.CandidateRecord.ExistingBookingDate, true
}
