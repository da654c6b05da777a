package dialogue

import (
	"context"

	"github.com/hirevox/prescreen/pkg/core/flow"
)

const readyCheckMaxTurns = 3

// ReadyCheck waits for the candidate to confirm they are ready to
// continue. Confirmed reports true on confirmation and false when the
// candidate refused, hit the irrelevance limit, or ran out of turns.
type ReadyCheck struct {
	// Message is the spoken invitation the check opens with.
	Message string

	confirmed bool
	done      bool
	turns     int
}

func (r *ReadyCheck) Confirmed() bool { return r.confirmed }

func (r *ReadyCheck) Done() bool { return r.done }

func (r *ReadyCheck) complete(confirmed bool) {
	if r.done {
		return
	}
	r.done = true
	r.confirmed = confirmed
}

func (r *ReadyCheck) Instructions() string {
	return `You wait for the candidate to confirm they are ready.

# Rules
- If the candidate says yes, ok, sure, or anything affirmative, call ` + "`confirm_ready`" + `.
- If the candidate asks a question about the process, answer very briefly and ask again whether they are ready.
- If the candidate says no or refuses, call ` + "`mark_irrelevant`" + `. The candidate has to cooperate with the screening.
- If the candidate answers off-topic or nonsensical, call ` + "`mark_irrelevant`" + ` IMMEDIATELY.
- Do NOT engage with other topics. Do NOT ask questions. Your only goal is getting confirmation.
- NEVER call two tools in the same turn.`
}

func (r *ReadyCheck) Tools() []flow.Tool {
	return []flow.Tool{
		flow.MakeTool("confirm_ready",
			"The candidate is ready to continue.",
			nil,
			func(ctx context.Context, rt *flow.Runtime, _ struct{}) (string, error) {
				if r.done {
					return "", nil
				}
				rt.State().ResetIrrelevant()
				r.complete(true)
				return "", nil
			}),
		flow.MakeTool("mark_irrelevant",
			"The candidate answers irrelevantly or nonsensically. Call this IMMEDIATELY on any irrelevant answer.",
			[]flow.ToolParam{{Name: "answer_summary", Description: "Short summary of the irrelevant answer"}},
			func(ctx context.Context, rt *flow.Runtime, in answerInput) (string, error) {
				if r.done {
					return "", nil
				}
				warn, limitReached := rt.State().CheckIrrelevant("confirm whether they are ready")
				if limitReached {
					r.complete(false)
					return "", nil
				}
				return warn, nil
			}),
	}
}

func (r *ReadyCheck) Enter(ctx context.Context, rt *flow.Runtime) {
	rt.State().SilenceCount = 0
	rt.SayEntry(ctx, r.Message)
}

func (r *ReadyCheck) OnUserTurn(ctx context.Context, rt *flow.Runtime, text string) {
	r.turns++
	if !r.done && r.turns >= readyCheckMaxTurns {
		r.complete(false)
	}
}
