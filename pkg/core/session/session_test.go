package session

import (
	"strings"
	"testing"
)

func TestRecordKnockoutAnswer_FirstResultIsTerminal(t *testing.T) {
	t.Parallel()
	s := NewState(Input{})
	s.RecordKnockoutAnswer(KnockoutAnswer{QuestionID: "q1", Result: ResultPass, RawAnswer: "yes"})
	s.RecordKnockoutAnswer(KnockoutAnswer{QuestionID: "q1", Result: ResultFail, RawAnswer: "no"})

	if len(s.KnockoutAnswers) != 1 {
		t.Fatalf("KnockoutAnswers len=%d, want 1", len(s.KnockoutAnswers))
	}
	if s.KnockoutAnswers[0].Result != ResultPass {
		t.Fatalf("result=%q, want first recorded result kept", s.KnockoutAnswers[0].Result)
	}
}

func TestRecordOpenAnswer_ReplacesByQuestionID(t *testing.T) {
	t.Parallel()
	s := NewState(Input{})
	s.RecordOpenAnswer(OpenAnswer{QuestionID: "q1", AnswerSummary: "first"})
	s.RecordOpenAnswer(OpenAnswer{QuestionID: "q2", AnswerSummary: "other"})
	s.RecordOpenAnswer(OpenAnswer{QuestionID: "q1", AnswerSummary: "amended"})

	if len(s.OpenAnswers) != 2 {
		t.Fatalf("OpenAnswers len=%d, want 2", len(s.OpenAnswers))
	}
	if s.OpenAnswers[0].AnswerSummary != "amended" {
		t.Fatalf("summary=%q, want amended answer to replace the original", s.OpenAnswers[0].AnswerSummary)
	}
}

func TestCheckIrrelevant_WarnsThenHitsLimit(t *testing.T) {
	t.Parallel()
	s := NewState(Input{})

	note, limit := s.CheckIrrelevant("answer the question")
	if limit {
		t.Fatal("limit reached on first irrelevant answer")
	}
	if !strings.Contains(note, "1/3") || !strings.Contains(note, "2 chance(s) left") {
		t.Fatalf("unexpected warning note: %q", note)
	}
	if !strings.Contains(note, "answer the question") {
		t.Fatalf("note does not carry the ask: %q", note)
	}

	if _, limit = s.CheckIrrelevant(""); limit {
		t.Fatal("limit reached on second irrelevant answer")
	}
	note, limit = s.CheckIrrelevant("")
	if !limit {
		t.Fatal("limit not reached on third irrelevant answer")
	}
	if note != "" {
		t.Fatalf("note=%q, want empty at the limit", note)
	}
	if !s.IrrelevantLimitReached() {
		t.Fatal("IrrelevantLimitReached=false after limit")
	}
}

func TestCheckIrrelevant_ResetForgivesPriorStrikes(t *testing.T) {
	t.Parallel()
	s := NewState(Input{})
	s.CheckIrrelevant("")
	s.CheckIrrelevant("")
	s.ResetIrrelevant()

	if _, limit := s.CheckIrrelevant(""); limit {
		t.Fatal("limit reached right after reset")
	}
}

func TestValidate_RejectsDuplicateAndEmptyIDs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		in      Input
		wantErr bool
	}{
		{
			name: "valid",
			in: Input{
				KnockoutQuestions: []KnockoutQuestion{{ID: "k1"}, {ID: "k2"}},
				OpenQuestions:     []OpenQuestion{{ID: "o1"}},
			},
		},
		{
			name:    "duplicate knockout id",
			in:      Input{KnockoutQuestions: []KnockoutQuestion{{ID: "k1"}, {ID: "k1"}}},
			wantErr: true,
		},
		{
			name:    "empty open id",
			in:      Input{OpenQuestions: []OpenQuestion{{ID: ""}}},
			wantErr: true,
		},
		{
			name:    "duplicate open id",
			in:      Input{OpenQuestions: []OpenQuestion{{ID: "o1"}, {ID: "o1"}}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestKnownAnswer(t *testing.T) {
	t.Parallel()
	in := Input{
		CandidateKnown: true,
		CandidateRecord: &CandidateRecord{
			KnownAnswers: map[string]string{"forklift": "yes, since 2019"},
		},
	}

	if v, ok := in.KnownAnswer("forklift"); !ok || v != "yes, since 2019" {
		t.Fatalf("KnownAnswer=%q,%v", v, ok)
	}
	if _, ok := in.KnownAnswer("weekend"); ok {
		t.Fatal("KnownAnswer returned ok for unknown key")
	}
	if _, ok := in.KnownAnswer(""); ok {
		t.Fatal("KnownAnswer returned ok for empty data key")
	}

	in.CandidateKnown = false
	if _, ok := in.KnownAnswer("forklift"); ok {
		t.Fatal("KnownAnswer returned ok for unknown candidate")
	}
}

func TestParseInput(t *testing.T) {
	t.Parallel()
	data := []byte(`{
		"call_id": "c1",
		"candidate_name": "Jamie",
		"job_title": "operator",
		"knockout_questions": [{"id": "k1", "text": "q?", "data_key": "dk"}],
		"open_questions": [{"id": "o1", "text": "tell me"}],
		"allow_escalation": true,
		"is_playground": true
	}`)
	in, err := ParseInput(data)
	if err != nil {
		t.Fatalf("ParseInput error: %v", err)
	}
	if in.CallID != "c1" || !in.AllowEscalation || !in.Playground {
		t.Fatalf("unexpected input: %+v", in)
	}
	if len(in.KnockoutQuestions) != 1 || in.KnockoutQuestions[0].DataKey != "dk" {
		t.Fatalf("knockout questions not decoded: %+v", in.KnockoutQuestions)
	}

	if _, err := ParseInput([]byte(`{"knockout_questions":[{"id":"k1"},{"id":"k1"}]}`)); err == nil {
		t.Fatal("ParseInput accepted duplicate question ids")
	}
}
