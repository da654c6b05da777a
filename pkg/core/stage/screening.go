package stage

import (
	"context"
	"fmt"

	"github.com/hirevox/prescreen/pkg/core/dialogue"
	"github.com/hirevox/prescreen/pkg/core/flow"
	"github.com/hirevox/prescreen/pkg/core/session"
)

// Screening walks the knockout questions one by one. Questions whose
// answer is already known from the candidate record are recorded as
// passed without being asked; if that covers all of them the stage
// hands off to the open questions silently.
type Screening struct {
	in session.Input
}

func NewScreening(in session.Input) *Screening { return &Screening{in: in} }

func (s *Screening) Name() string { return "screening" }

func (s *Screening) Instructions() string {
	return screeningPrompt(s.in.JobTitle, s.in.AllowEscalation)
}

func (s *Screening) Tools() []flow.Tool {
	return sharedTools(s.in, s.in.AllowEscalation)
}

func (s *Screening) Enter(ctx context.Context, rt *flow.Runtime) {
	rt.State().SilenceCount = 0
	s.askFrom(ctx, rt, 0, true)
}

// askFrom asks the question at index i and chains to the next via the
// task completion callback. firstAsked tracks whether a question has
// actually been spoken yet, since pre-known ones are skipped.
func (s *Screening) askFrom(ctx context.Context, rt *flow.Runtime, i int, firstAsked bool) {
	st := rt.State()
	questions := s.in.KnockoutQuestions

	for i < len(questions) {
		q := questions[i]
		known, ok := s.in.KnownAnswer(q.DataKey)
		if !ok {
			break
		}
		st.RecordKnockoutAnswer(session.KnockoutAnswer{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			Result:       session.ResultPass,
			RawAnswer:    fmt.Sprintf("(pre-known: %s)", known),
		})
		i++
	}

	if i >= len(questions) {
		// All passed. Silent hand-off; the next stage speaks the
		// transition.
		st.PassedKnockout = true
		rt.Transition(ctx, NewOpenQuestions(s.in))
		return
	}

	q := questions[i]
	remaining := 0
	for _, rq := range questions[i:] {
		if _, ok := s.in.KnownAnswer(rq.DataKey); !ok {
			remaining++
		}
	}

	var transition string
	switch {
	case firstAsked:
		transition = "Briefly say 'ok great, then let's start with a first question.' and move straight into the first question."
	case remaining == 1:
		transition = "Acknowledge the previous answer with a short word the way a recruiter would (e.g. 'Ok, great.', 'Ah, nice.'). Mention at most one key word from the answer, not the whole sentence. Then say you have one last yes or no question."
	default:
		transition = "Acknowledge the previous answer with a short word the way a recruiter would (e.g. 'Ok, great.', 'Ah, nice.'). Mention at most one key word from the answer, not the whole sentence. Lead into the next question naturally."
	}

	task := &dialogue.Knockout{
		QuestionID:      q.ID,
		QuestionText:    q.Text,
		Transition:      transition,
		Context:         q.Context,
		AllowEscalation: s.in.AllowEscalation,
	}
	rt.RunTask(ctx, task, func(ctx context.Context) {
		res := task.Result()
		st.RecordKnockoutAnswer(session.KnockoutAnswer{
			QuestionID:    q.ID,
			QuestionText:  q.Text,
			Result:        res.Result,
			RawAnswer:     res.RawAnswer,
			CandidateNote: res.CandidateNote,
		})

		switch res.Result {
		case session.ResultRecruiterRequested:
			rt.Transition(ctx, NewRecruiter(s.in), msgRecruiterHandoff)
		case session.ResultUnclear:
			rt.SayEntry(ctx, msgScreeningUnclear)
			rt.Shutdown("screening unclear")
		case session.ResultIrrelevant:
			rt.SayEntry(ctx, msgIrrelevantShutdown)
			rt.Shutdown("irrelevant")
		case session.ResultFail:
			rt.Transition(ctx, NewAlternative(s.in, q.Text))
		default:
			s.askFrom(ctx, rt, i+1, false)
		}
	})
}
