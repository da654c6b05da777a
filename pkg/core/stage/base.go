// Package stage implements the interview phases. Each phase is a flow
// Agent; exactly one is active at a time and hands off to the next via
// the runtime.
package stage

import (
	"context"

	"github.com/hirevox/prescreen/pkg/core/flow"
	"github.com/hirevox/prescreen/pkg/core/session"
)

// sharedTools is the command surface every stage carries: ending the
// call over repeated irrelevance, and (when allowed) escalating to the
// recruiter stage. Task tools of the same name shadow these while a
// task runs.
func sharedTools(in session.Input, allowEscalation bool) []flow.Tool {
	var tools []flow.Tool
	if allowEscalation {
		tools = append(tools, flow.MakeTool("escalate_to_recruiter",
			"The candidate wants to talk to a real recruiter.",
			nil,
			func(ctx context.Context, rt *flow.Runtime, _ struct{}) (string, error) {
				rt.Transition(ctx, NewRecruiter(in), msgRecruiterHandoff)
				return "", nil
			}))
	}
	tools = append(tools, flow.MakeTool("end_conversation_irrelevant",
		"The candidate answers irrelevantly or nonsensically. Call this IMMEDIATELY on any irrelevant answer.",
		nil,
		func(ctx context.Context, rt *flow.Runtime, _ struct{}) (string, error) {
			warn, limitReached := rt.State().CheckIrrelevant("stay on topic")
			if limitReached {
				rt.SayEntry(ctx, msgIrrelevantShutdown)
				rt.Shutdown("irrelevant")
				return "", nil
			}
			return warn, nil
		}))
	return tools
}
