package stage

import (
	"context"

	"github.com/hirevox/prescreen/pkg/core/flow"
	"github.com/hirevox/prescreen/pkg/core/session"
)

// Greeting opens the call: introduce the assistant, optionally ask for
// recording consent, verify the candidate's identity, detect voicemail,
// and confirm the candidate has time for the screening.
type Greeting struct {
	in session.Input
}

func NewGreeting(in session.Input) *Greeting { return &Greeting{in: in} }

func (g *Greeting) Name() string { return "greeting" }

func (g *Greeting) Instructions() string {
	return greetingPrompt(g.in.JobTitle, g.in.CandidateName, g.in.CandidateKnown, g.in.AllowEscalation, g.in.RequireConsent)
}

// Enter is a no-op: the greeting waits for the candidate to pick up and
// speak first.
func (g *Greeting) Enter(ctx context.Context, rt *flow.Runtime) {}

func (g *Greeting) Tools() []flow.Tool {
	tools := sharedTools(g.in, g.in.AllowEscalation)

	if g.in.RequireConsent {
		tools = append(tools,
			flow.MakeTool("record_consent",
				"The candidate consents to the call being recorded.",
				nil,
				func(ctx context.Context, rt *flow.Runtime, _ struct{}) (string, error) {
					yes := true
					rt.State().ConsentGiven = &yes
					return "Consent noted. Continue with the introduction.", nil
				}),
			flow.MakeTool("record_no_consent",
				"The candidate does not want the call to be recorded.",
				nil,
				func(ctx context.Context, rt *flow.Runtime, _ struct{}) (string, error) {
					no := false
					rt.State().ConsentGiven = &no
					return "Noted. Continue with the introduction.", nil
				}))
	}

	tools = append(tools,
		flow.MakeTool("candidate_ready",
			"The candidate confirmed they have time for the screening.",
			nil,
			func(ctx context.Context, rt *flow.Runtime, _ struct{}) (string, error) {
				rt.State().ResetIrrelevant()
				rt.Transition(ctx, NewScreening(g.in))
				return "", nil
			}),
		flow.MakeTool("detected_voicemail",
			"Call when you detect a voicemail system or answering machine, AFTER the voicemail greeting.",
			nil,
			func(ctx context.Context, rt *flow.Runtime, _ struct{}) (string, error) {
				rt.State().VoicemailDetected = true
				rt.SayEntry(ctx, msgVoicemail(g.in.CandidateName))
				rt.Shutdown("voicemail")
				return "", nil
			}),
		flow.MakeTool("candidate_is_proxy",
			"The caller is not the candidate themselves but calls on behalf of someone else (friend, family).",
			nil,
			func(ctx context.Context, rt *flow.Runtime, _ struct{}) (string, error) {
				rt.SayEntry(ctx, msgProxyDetected)
				rt.Shutdown("proxy caller")
				return "", nil
			}),
		flow.MakeTool("candidate_not_available",
			"The candidate has no time or is not interested.",
			nil,
			func(ctx context.Context, rt *flow.Runtime, _ struct{}) (string, error) {
				rt.SayEntry(ctx, msgCandidateNotAvailable)
				rt.Shutdown("candidate not available")
				return "", nil
			}))

	return tools
}
