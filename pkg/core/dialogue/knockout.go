// Package dialogue implements the bounded sub-conversations the stages
// run: knockout questions, open questions, ready checks, and sequential
// groups of open questions. Each task owns its own turn cap so a
// confused exchange can never stall the call.
package dialogue

import (
	"context"
	"fmt"

	"github.com/hirevox/prescreen/pkg/core/flow"
	"github.com/hirevox/prescreen/pkg/core/session"
)

// knockoutMaxTurns is the question plus three candidate turns; after
// that the task force-completes as unclear.
const knockoutMaxTurns = 4

// KnockoutResult is the terminal outcome of one knockout question.
type KnockoutResult struct {
	Result        session.QuestionResult
	RawAnswer     string
	CandidateNote string
}

// Knockout asks one yes/no hard-requirement question and drives it to a
// terminal result.
type Knockout struct {
	QuestionID   string
	QuestionText string
	// Transition is how the agent bridges from the previous answer into
	// this question. Empty means ask directly.
	Transition string
	// Context is background for clarification requests only; it is
	// never read out spontaneously.
	Context         string
	AllowEscalation bool

	result *KnockoutResult
	note   string
	turns  int
}

// Result returns the terminal outcome. Valid once Done reports true.
func (k *Knockout) Result() KnockoutResult {
	if k.result == nil {
		return KnockoutResult{}
	}
	return *k.result
}

func (k *Knockout) Done() bool { return k.result != nil }

func (k *Knockout) complete(r KnockoutResult) {
	if k.result != nil {
		return
	}
	r.CandidateNote = k.note
	k.result = &r
}

func (k *Knockout) Instructions() string {
	contextBlock := ""
	if k.Context != "" {
		contextBlock = fmt.Sprintf(`
# Context for this question (background knowledge ONLY, NEVER read it out or paraphrase it)
%s
`, k.Context)
	}

	escalationRule := ""
	if k.AllowEscalation {
		escalationRule = "- If the candidate asks to talk to a real person or recruiter, call `escalate_to_recruiter` IMMEDIATELY. Do NOT try to convince the candidate to stay with you.\n"
	}

	return fmt.Sprintf(`You ask the candidate one yes/no knockout question.

Question: "%s"
%s
# Rules
- Ask the question in a natural, conversational way.
- If the candidate answers YES, call `+"`mark_pass`"+` with a short summary.
- If the candidate answers NO, repeat the specific answer back as a confirmation question.
  For example: if the question was "Do you have a driving licence?" and the candidate says no, ask: "Okay, so you don't have a driving licence, is that right?"
  NEVER use a generic phrase like "so that's a no?". Always refer to the concrete subject.
  - If the candidate confirms, call `+"`confirm_fail`"+`.
  - If the candidate changes their mind and says YES after all, call `+"`mark_pass`"+`.
- These are yes/no questions ONLY. NEVER ask for more explanation or detail.
- If the answer is unclear, politely ask for a yes or no.
- If the candidate answers clearly off-topic or nonsensical (trolling, complete nonsense), call `+"`mark_irrelevant`"+` IMMEDIATELY. The system tracks how many chances are left.
- NEVER call two tools in the same turn.

# Clarification by the candidate
- NEVER read the context out spontaneously. Use it only when the candidate asks for clarification.
- If the candidate asks a clarifying question and the answer is in the context above, give a short, fluent spoken answer and rephrase the yes/no question.
  NEVER start with "yes" or "no" when giving a clarification, that sounds like an answer to the knockout question itself.
- If the candidate asks something that is NOT in the context, NEVER invent an answer. Call `+"`note_for_recruiter`"+` FIRST with the question, say you will note it for the recruiter, and ask for a yes or no again.
%s`, k.QuestionText, contextBlock, escalationRule)
}

func (k *Knockout) Tools() []flow.Tool {
	tools := []flow.Tool{
		flow.MakeTool("note_for_recruiter",
			"Save a question or remark from the candidate for the recruiter. Call this BEFORE calling mark_pass or confirm_fail.",
			[]flow.ToolParam{{Name: "note", Description: "The candidate's question or remark"}},
			func(ctx context.Context, rt *flow.Runtime, in noteInput) (string, error) {
				rt.Logger().Info("note for recruiter", "question_id", k.QuestionID, "note", in.Note)
				k.note = in.Note
				return "Noted. Tell the candidate you will pass it on to the recruiter and continue with the question.", nil
			}),
		flow.MakeTool("mark_pass",
			"The candidate answered YES to the knockout question.",
			[]flow.ToolParam{{Name: "answer_summary", Description: "Short summary of the answer"}},
			func(ctx context.Context, rt *flow.Runtime, in answerInput) (string, error) {
				if k.Done() {
					return "", nil
				}
				rt.State().ResetIrrelevant()
				k.complete(KnockoutResult{Result: session.ResultPass, RawAnswer: in.AnswerSummary})
				return "", nil
			}),
		flow.MakeTool("confirm_fail",
			"The candidate answered NO and confirmed it when asked again.",
			[]flow.ToolParam{{Name: "answer_summary", Description: "Short summary of the answer"}},
			func(ctx context.Context, rt *flow.Runtime, in answerInput) (string, error) {
				if k.Done() {
					return "", nil
				}
				rt.State().ResetIrrelevant()
				k.complete(KnockoutResult{Result: session.ResultFail, RawAnswer: in.AnswerSummary})
				return "", nil
			}),
		flow.MakeTool("mark_irrelevant",
			"The candidate answers irrelevantly or nonsensically. Call this IMMEDIATELY on any irrelevant answer.",
			[]flow.ToolParam{{Name: "answer_summary", Description: "Short summary of the irrelevant answer"}},
			func(ctx context.Context, rt *flow.Runtime, in answerInput) (string, error) {
				if k.Done() {
					return "", nil
				}
				warn, limitReached := rt.State().CheckIrrelevant("answer the question with yes or no")
				if limitReached {
					k.complete(KnockoutResult{Result: session.ResultIrrelevant, RawAnswer: in.AnswerSummary})
					return "", nil
				}
				return warn, nil
			}),
	}
	if k.AllowEscalation {
		tools = append(tools, flow.MakeTool("escalate_to_recruiter",
			"The candidate wants to talk to a real recruiter.",
			nil,
			func(ctx context.Context, rt *flow.Runtime, _ struct{}) (string, error) {
				if k.Done() {
					return "", nil
				}
				k.complete(KnockoutResult{Result: session.ResultRecruiterRequested, RawAnswer: "Candidate wants to talk to a recruiter"})
				return "", nil
			}))
	}
	return tools
}

func (k *Knockout) Enter(ctx context.Context, rt *flow.Runtime) {
	rt.State().SilenceCount = 0
	intro := fmt.Sprintf("Ask this question in a natural way: %s", k.QuestionText)
	if k.Transition != "" {
		intro = fmt.Sprintf("%s Then ask this question in a natural way: %s", k.Transition, k.QuestionText)
	}
	rt.GenerateEntryReply(ctx, intro)
}

func (k *Knockout) OnUserTurn(ctx context.Context, rt *flow.Runtime, text string) {
	k.turns++
	if !k.Done() && k.turns >= knockoutMaxTurns {
		rt.Logger().Info("max turns reached, force-completing as unclear", "question_id", k.QuestionID)
		k.complete(KnockoutResult{
			Result:    session.ResultUnclear,
			RawAnswer: "Candidate could not answer the question",
		})
	}
}

type answerInput struct {
	AnswerSummary string `json:"answer_summary"`
}

type noteInput struct {
	Note string `json:"note"`
}
