package stage

import (
	"context"

	"github.com/hirevox/prescreen/pkg/core/dialogue"
	"github.com/hirevox/prescreen/pkg/core/flow"
	"github.com/hirevox/prescreen/pkg/core/session"
)

// OpenQuestions asks the configured free-text questions after a short
// readiness check, then hands off to scheduling unless the candidate
// already has a booking.
type OpenQuestions struct {
	in session.Input
}

func NewOpenQuestions(in session.Input) *OpenQuestions { return &OpenQuestions{in: in} }

func (o *OpenQuestions) Name() string { return "open_questions" }

func (o *OpenQuestions) Instructions() string {
	return openQuestionsPrompt(o.in.JobTitle, o.in.AllowEscalation)
}

func (o *OpenQuestions) Tools() []flow.Tool {
	return sharedTools(o.in, o.in.AllowEscalation)
}

func (o *OpenQuestions) Enter(ctx context.Context, rt *flow.Runtime) {
	st := rt.State()
	st.SilenceCount = 0

	ready := &dialogue.ReadyCheck{Message: msgReadyCheck}
	rt.RunTask(ctx, ready, func(ctx context.Context) {
		if !ready.Confirmed() {
			if st.IrrelevantLimitReached() {
				rt.SayEntry(ctx, msgIrrelevantShutdown)
				rt.Shutdown("irrelevant")
			} else {
				rt.SayEntry(ctx, msgReadyCheckDecline)
				rt.Shutdown("ready check declined")
			}
			return
		}
		o.runQuestions(ctx, rt)
	})
}

func (o *OpenQuestions) runQuestions(ctx context.Context, rt *flow.Runtime) {
	st := rt.State()

	specs := make([]dialogue.GroupSpec, 0, len(o.in.OpenQuestions))
	for _, q := range o.in.OpenQuestions {
		specs = append(specs, dialogue.GroupSpec{ID: q.ID, Text: q.Text})
	}

	dialogue.RunGroup(ctx, rt, specs, o.in.AllowEscalation, func(ctx context.Context, recruiterRequested bool) {
		if st.IrrelevantLimitReached() {
			rt.SayEntry(ctx, msgIrrelevantShutdown)
			rt.Shutdown("irrelevant")
			return
		}
		if recruiterRequested {
			rt.Transition(ctx, NewRecruiter(o.in), msgRecruiterHandoff)
			return
		}

		rt.SayEntry(ctx, msgOpenQuestionsThanks)

		if date, ok := o.in.ExistingBooking(); ok {
			rt.SayEntry(ctx, msgExistingBooking(date))
			rt.Shutdown("existing booking")
			return
		}

		rt.Transition(ctx, NewScheduling(o.in))
	})
}
