package dialogue

import (
	"context"
	"fmt"

	"github.com/hirevox/prescreen/pkg/core/flow"
)

// openQuestionMaxTurns is a safety net: force-complete after six
// candidate turns even without a recorded answer.
const openQuestionMaxTurns = 6

// OpenQuestionResult is the terminal outcome of one open question.
type OpenQuestionResult struct {
	AnswerSummary      string
	CandidateNote      string
	RecruiterRequested bool
	// Answered is true only when the candidate actually answered this
	// question. Skipped questions stay out of the final report.
	Answered bool
}

// OpenQuestion asks one free-text question, listens for a single
// answer, and records a summary of it.
type OpenQuestion struct {
	QuestionID   string
	QuestionText string
	// ResponseMessage is spoken after the answer is recorded, e.g. a
	// short acknowledgement configured per question.
	ResponseMessage string
	AllowEscalation bool

	result *OpenQuestionResult
	note   string
	turns  int
}

// Result returns the terminal outcome. Valid once Done reports true.
func (o *OpenQuestion) Result() OpenQuestionResult {
	if o.result == nil {
		return OpenQuestionResult{}
	}
	return *o.result
}

func (o *OpenQuestion) Done() bool { return o.result != nil }

func (o *OpenQuestion) complete(r OpenQuestionResult) {
	if o.result != nil {
		return
	}
	r.CandidateNote = o.note
	o.result = &r
}

func (o *OpenQuestion) Instructions() string {
	escalationRule := ""
	if o.AllowEscalation {
		escalationRule = "- If the candidate asks to talk to a real person or recruiter, call `escalate_to_recruiter` IMMEDIATELY. Do NOT try to convince the candidate to stay with you.\n"
	}

	return fmt.Sprintf(`You ask the candidate one open question and listen to the answer.

Question: "%s"

# Rules
- Listen to the candidate's answer.
- When the candidate is done answering, call `+"`record_answer`"+` with a short summary.
- Do NOT ask follow-up questions. One answer is enough.
- If the candidate answers clearly off-topic or nonsensical (trolling, complete nonsense), call `+"`mark_irrelevant`"+` IMMEDIATELY. The system tracks how many chances are left.
- A short or vague answer like "I don't know" is NOT irrelevant, just record it with `+"`record_answer`"+`.
- If the candidate asks more than 2 clarifying questions about the question, save them with `+"`note_for_recruiter`"+` and call `+"`record_answer`"+` with a summary of what the candidate said so far.
- Use `+"`note_for_recruiter`"+` to save questions or remarks from the candidate for the recruiter.
%s`, o.QuestionText, escalationRule)
}

func (o *OpenQuestion) Tools() []flow.Tool {
	tools := []flow.Tool{
		flow.MakeTool("note_for_recruiter",
			"Save a question or remark from the candidate for the recruiter.",
			[]flow.ToolParam{{Name: "note", Description: "The candidate's question or remark"}},
			func(ctx context.Context, rt *flow.Runtime, in noteInput) (string, error) {
				o.note = in.Note
				return "", nil
			}),
		flow.MakeTool("record_answer",
			"Save the candidate's answer. Call this as soon as you have a usable answer.",
			[]flow.ToolParam{{Name: "answer_summary", Description: "Short summary of the answer"}},
			func(ctx context.Context, rt *flow.Runtime, in answerInput) (string, error) {
				if o.Done() {
					return "", nil
				}
				if o.ResponseMessage != "" {
					rt.SayEntry(ctx, o.ResponseMessage)
				}
				rt.State().ResetIrrelevant()
				o.complete(OpenQuestionResult{AnswerSummary: in.AnswerSummary, Answered: true})
				return "", nil
			}),
		flow.MakeTool("mark_irrelevant",
			"The candidate answers irrelevantly or nonsensically. Call this IMMEDIATELY on any irrelevant answer.",
			[]flow.ToolParam{{Name: "answer_summary", Description: "Short summary of the irrelevant answer"}},
			func(ctx context.Context, rt *flow.Runtime, in answerInput) (string, error) {
				if o.Done() {
					return "", nil
				}
				warn, limitReached := rt.State().CheckIrrelevant("answer the question")
				if limitReached {
					o.complete(OpenQuestionResult{AnswerSummary: in.AnswerSummary, Answered: true})
					return "", nil
				}
				return warn, nil
			}),
	}
	if o.AllowEscalation {
		tools = append(tools, flow.MakeTool("escalate_to_recruiter",
			"The candidate wants to talk to a real recruiter.",
			nil,
			func(ctx context.Context, rt *flow.Runtime, _ struct{}) (string, error) {
				if o.Done() {
					return "", nil
				}
				o.complete(OpenQuestionResult{
					AnswerSummary:      "Candidate wants to talk to a recruiter",
					RecruiterRequested: true,
					Answered:           true,
				})
				return "", nil
			}))
	}
	return tools
}

func (o *OpenQuestion) Enter(ctx context.Context, rt *flow.Runtime) {
	// A limit hit on a previous question skips the rest immediately.
	if rt.State().IrrelevantLimitReached() {
		o.complete(OpenQuestionResult{AnswerSummary: "Conversation ended due to irrelevant answers"})
		return
	}
	rt.State().SilenceCount = 0
	rt.GenerateEntryReply(ctx, fmt.Sprintf("Ask this open question in a natural, conversational way: %s", o.QuestionText))
}

func (o *OpenQuestion) OnUserTurn(ctx context.Context, rt *flow.Runtime, text string) {
	o.turns++
	if !o.Done() && o.turns >= openQuestionMaxTurns {
		o.complete(OpenQuestionResult{
			AnswerSummary: "Candidate could not answer the question",
			Answered:      true,
		})
	}
}
