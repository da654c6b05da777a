package dialogue

import (
	"context"

	"github.com/hirevox/prescreen/pkg/core/flow"
	"github.com/hirevox/prescreen/pkg/core/session"
)

// GroupSpec configures one question of a sequential open-question
// group.
type GroupSpec struct {
	ID   string
	Text string
	// ResponseMessage is spoken after the answer is recorded. Usually
	// empty.
	ResponseMessage string
}

// RunGroup asks a list of open questions one after another, recording
// every answered question in the session state. A candidate can amend a
// previous answer; the last answer per question id wins. An escalation
// inside any question aborts the remaining questions and flags the
// session, then onDone fires with recruiterRequested=true.
func RunGroup(ctx context.Context, rt *flow.Runtime, specs []GroupSpec, allowEscalation bool, onDone func(ctx context.Context, recruiterRequested bool)) {
	var runFrom func(ctx context.Context, i int)
	runFrom = func(ctx context.Context, i int) {
		if i >= len(specs) || rt.Ended() {
			onDone(ctx, false)
			return
		}
		spec := specs[i]
		task := &OpenQuestion{
			QuestionID:      spec.ID,
			QuestionText:    spec.Text,
			ResponseMessage: spec.ResponseMessage,
			AllowEscalation: allowEscalation,
		}
		rt.RunTask(ctx, task, func(ctx context.Context) {
			res := task.Result()
			if res.Answered {
				rt.State().RecordOpenAnswer(session.OpenAnswer{
					QuestionID:    spec.ID,
					QuestionText:  spec.Text,
					AnswerSummary: res.AnswerSummary,
					CandidateNote: res.CandidateNote,
				})
			}
			if res.RecruiterRequested {
				rt.State().RecruiterRequested = true
				onDone(ctx, true)
				return
			}
			runFrom(ctx, i+1)
		})
	}
	runFrom(ctx, 0)
}
