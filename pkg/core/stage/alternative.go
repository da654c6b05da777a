package stage

import (
	"context"
	"fmt"

	"github.com/hirevox/prescreen/pkg/core/dialogue"
	"github.com/hirevox/prescreen/pkg/core/flow"
	"github.com/hirevox/prescreen/pkg/core/session"
)

// alternativeQuestions is the fixed mini-intake asked when a candidate
// failed a requirement but is open to other positions.
var alternativeQuestions = []dialogue.GroupSpec{
	{ID: "alt1", Text: "In which region are you looking for work?", ResponseMessage: "Ok, good, we have more than 50 open positions in that region."},
	{ID: "alt2", Text: "Are you looking for full-time, part-time or flex work?"},
	{ID: "alt3", Text: "Do you have experience in a particular sector? For example logistics, production, retail?"},
}

// Alternative handles a failed knockout requirement: it asks whether
// the candidate wants to hear about other positions and runs a short
// intake if so.
type Alternative struct {
	in             session.Input
	failedQuestion string
}

func NewAlternative(in session.Input, failedQuestion string) *Alternative {
	return &Alternative{in: in, failedQuestion: failedQuestion}
}

func (a *Alternative) Name() string { return "alternative" }

func (a *Alternative) Instructions() string {
	return alternativePrompt(a.in.JobTitle, a.in.AllowEscalation)
}

func (a *Alternative) Enter(ctx context.Context, rt *flow.Runtime) {
	rt.State().SilenceCount = 0
	rt.GenerateReply(ctx, fmt.Sprintf(
		"The candidate did not meet the requirement: '%s'. "+
			"Say that that is a pity but that you would like to see whether there are other possibilities. "+
			"Ask whether the candidate is interested in other open positions.",
		a.failedQuestion))
}

func (a *Alternative) Tools() []flow.Tool {
	tools := sharedTools(a.in, a.in.AllowEscalation)

	tools = append(tools,
		flow.MakeTool("candidate_interested",
			"The candidate is interested in other open positions.",
			nil,
			func(ctx context.Context, rt *flow.Runtime, _ struct{}) (string, error) {
				st := rt.State()
				st.ResetIrrelevant()
				st.InterestedInAlternatives = true

				dialogue.RunGroup(ctx, rt, alternativeQuestions, a.in.AllowEscalation, func(ctx context.Context, recruiterRequested bool) {
					if recruiterRequested {
						rt.Transition(ctx, NewRecruiter(a.in), msgRecruiterHandoff)
						return
					}
					rt.SayEntry(ctx, msgAlternativeThanks)
					rt.Shutdown("alternative intake complete")
				})
				return "", nil
			}),
		flow.MakeTool("candidate_not_interested",
			"The candidate is not interested in other open positions.",
			nil,
			func(ctx context.Context, rt *flow.Runtime, _ struct{}) (string, error) {
				rt.SayEntry(ctx, msgAlternativeNotInterested)
				rt.Shutdown("not interested in alternatives")
				return "", nil
			}))

	return tools
}
