package stage

import (
	"context"

	"github.com/hirevox/prescreen/pkg/core/flow"
	"github.com/hirevox/prescreen/pkg/core/session"
)

// Recruiter is the free-form escape hatch the candidate lands in after
// asking for a real person. No further escalation from here.
type Recruiter struct {
	in session.Input
}

func NewRecruiter(in session.Input) *Recruiter { return &Recruiter{in: in} }

func (r *Recruiter) Name() string { return "recruiter" }

func (r *Recruiter) Instructions() string { return recruiterPrompt() }

func (r *Recruiter) Enter(ctx context.Context, rt *flow.Runtime) {
	rt.State().SilenceCount = 0
	rt.SayEntry(ctx, msgRecruiterGreeting(r.in.CandidateName))
}

func (r *Recruiter) Tools() []flow.Tool {
	tools := sharedTools(r.in, false)
	tools = append(tools, flow.MakeTool("end_conversation",
		"The conversation with the recruiter is wrapped up.",
		nil,
		func(ctx context.Context, rt *flow.Runtime, _ struct{}) (string, error) {
			rt.SayEntry(ctx, msgRecruiterGoodbye)
			rt.Shutdown("recruiter conversation complete")
			return "", nil
		}))
	return tools
}
