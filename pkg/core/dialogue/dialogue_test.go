package dialogue

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/hirevox/prescreen/pkg/core/flow"
	"github.com/hirevox/prescreen/pkg/core/session"
	"github.com/hirevox/prescreen/pkg/webhook"
)

// scriptDriver records what the tasks asked it to do; tests either call
// the task surface directly or pre-push events and run the full loop.
type scriptDriver struct {
	events chan flow.Event

	mu        sync.Mutex
	said      []string
	generated []string
}

func newScriptDriver() *scriptDriver {
	return &scriptDriver{events: make(chan flow.Event, 64)}
}

func (d *scriptDriver) SetAgentContext(string, []flow.ToolSpec) {}

func (d *scriptDriver) Say(ctx context.Context, text string, opts flow.SayOptions) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.said = append(d.said, text)
	return nil
}

func (d *scriptDriver) GenerateReply(ctx context.Context, instructions string, opts flow.SayOptions) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.generated = append(d.generated, instructions)
	return nil
}

func (d *scriptDriver) ToolResult(id, note string) {}
func (d *scriptDriver) Events() <-chan flow.Event  { return d.events }
func (d *scriptDriver) Usage() webhook.Usage       { return webhook.Usage{} }
func (d *scriptDriver) Close(drain bool) error     { return nil }

func newRuntime(t *testing.T, in session.Input) (*flow.Runtime, *scriptDriver) {
	t.Helper()
	driver := newScriptDriver()
	conv, err := flow.New(flow.Config{
		Driver: driver,
		State:  session.NewState(in),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("flow.New: %v", err)
	}
	return conv.Runtime(), driver
}

func callTool(t *testing.T, rt *flow.Runtime, tools []flow.Tool, name, input string) string {
	t.Helper()
	for _, tool := range tools {
		if tool.Name != name {
			continue
		}
		note, err := tool.Handler(context.Background(), rt, json.RawMessage(input))
		if err != nil {
			t.Fatalf("tool %s: %v", name, err)
		}
		return note
	}
	t.Fatalf("tool %s not found", name)
	return ""
}

func hasTool(tools []flow.Tool, name string) bool {
	for _, tool := range tools {
		if tool.Name == name {
			return true
		}
	}
	return false
}

func TestKnockout_EnterBridgesFromPreviousAnswer(t *testing.T) {
	t.Parallel()
	rt, driver := newRuntime(t, session.Input{})

	k := &Knockout{QuestionID: "k1", QuestionText: "Do you have a forklift certificate?",
		Transition: "Acknowledge the previous answer briefly."}
	k.Enter(context.Background(), rt)

	if len(driver.generated) != 1 {
		t.Fatalf("generated=%d, want one entry reply", len(driver.generated))
	}
	if !strings.Contains(driver.generated[0], "Acknowledge the previous answer") ||
		!strings.Contains(driver.generated[0], k.QuestionText) {
		t.Fatalf("entry instructions=%q", driver.generated[0])
	}
}

func TestKnockout_PassIsTerminalAndForgivesIrrelevance(t *testing.T) {
	t.Parallel()
	rt, _ := newRuntime(t, session.Input{})
	rt.State().CheckIrrelevant("")

	k := &Knockout{QuestionID: "k1", QuestionText: "q?"}
	callTool(t, rt, k.Tools(), "mark_pass", `{"answer_summary":"yes, since 2019"}`)

	if !k.Done() {
		t.Fatal("not done after mark_pass")
	}
	if r := k.Result(); r.Result != session.ResultPass || r.RawAnswer != "yes, since 2019" {
		t.Fatalf("result=%+v", r)
	}
	if rt.State().IrrelevantCount != 0 {
		t.Fatal("accepted answer did not reset the irrelevance counter")
	}

	// A late confirm_fail must not overwrite the terminal result.
	callTool(t, rt, k.Tools(), "confirm_fail", `{"answer_summary":"no"}`)
	if k.Result().Result != session.ResultPass {
		t.Fatalf("result=%q after late confirm_fail, want pass kept", k.Result().Result)
	}
}

func TestKnockout_NoteIsAttachedToTheResult(t *testing.T) {
	t.Parallel()
	rt, _ := newRuntime(t, session.Input{})

	k := &Knockout{QuestionID: "k1", QuestionText: "q?"}
	note := callTool(t, rt, k.Tools(), "note_for_recruiter", `{"note":"does a foreign certificate count?"}`)
	if !strings.Contains(note, "pass it on to the recruiter") {
		t.Fatalf("note_for_recruiter answer=%q", note)
	}
	callTool(t, rt, k.Tools(), "confirm_fail", `{"answer_summary":"no certificate"}`)

	if got := k.Result().CandidateNote; got != "does a foreign certificate count?" {
		t.Fatalf("CandidateNote=%q", got)
	}
}

func TestKnockout_IrrelevantWarnsThenCompletes(t *testing.T) {
	t.Parallel()
	rt, _ := newRuntime(t, session.Input{})

	k := &Knockout{QuestionID: "k1", QuestionText: "q?"}
	for i := 1; i <= 2; i++ {
		warn := callTool(t, rt, k.Tools(), "mark_irrelevant", `{"answer_summary":"nonsense"}`)
		if warn == "" || k.Done() {
			t.Fatalf("strike %d: warn=%q done=%v, want a warning and no completion", i, warn, k.Done())
		}
		if !strings.Contains(warn, "yes or no") {
			t.Fatalf("warning does not restate the ask: %q", warn)
		}
	}

	callTool(t, rt, k.Tools(), "mark_irrelevant", `{"answer_summary":"still nonsense"}`)
	if !k.Done() || k.Result().Result != session.ResultIrrelevant {
		t.Fatalf("result=%+v, want irrelevant at the limit", k.Result())
	}
}

func TestKnockout_TurnCapForcesUnclear(t *testing.T) {
	t.Parallel()
	rt, _ := newRuntime(t, session.Input{})

	k := &Knockout{QuestionID: "k1", QuestionText: "q?"}
	ctx := context.Background()
	for i := 0; i < knockoutMaxTurns-1; i++ {
		k.OnUserTurn(ctx, rt, "mumble")
		if k.Done() {
			t.Fatalf("done after %d turns, cap is %d", i+1, knockoutMaxTurns)
		}
	}
	k.OnUserTurn(ctx, rt, "mumble")
	if r := k.Result(); r.Result != session.ResultUnclear || r.RawAnswer != "Candidate could not answer the question" {
		t.Fatalf("result=%+v", r)
	}
}

func TestKnockout_EscalationToolGatedByInput(t *testing.T) {
	t.Parallel()
	rt, _ := newRuntime(t, session.Input{})

	plain := &Knockout{QuestionID: "k1", QuestionText: "q?"}
	if hasTool(plain.Tools(), "escalate_to_recruiter") {
		t.Fatal("escalation tool exposed without permission")
	}

	k := &Knockout{QuestionID: "k1", QuestionText: "q?", AllowEscalation: true}
	callTool(t, rt, k.Tools(), "escalate_to_recruiter", `{}`)
	if k.Result().Result != session.ResultRecruiterRequested {
		t.Fatalf("result=%q", k.Result().Result)
	}
}

func TestOpenQuestion_EnterSkipsAtIrrelevanceLimit(t *testing.T) {
	t.Parallel()
	rt, driver := newRuntime(t, session.Input{})
	for i := 0; i < session.MaxIrrelevant; i++ {
		rt.State().CheckIrrelevant("")
	}

	o := &OpenQuestion{QuestionID: "o1", QuestionText: "q?"}
	o.Enter(context.Background(), rt)

	if !o.Done() || o.Result().Answered {
		t.Fatalf("result=%+v, want silently skipped and unanswered", o.Result())
	}
	if len(driver.generated) != 0 {
		t.Fatal("question was still asked past the limit")
	}
}

func TestOpenQuestion_RecordAnswerSpeaksConfiguredResponse(t *testing.T) {
	t.Parallel()
	rt, driver := newRuntime(t, session.Input{})

	o := &OpenQuestion{QuestionID: "o1", QuestionText: "q?", ResponseMessage: "Great, thanks for sharing."}
	callTool(t, rt, o.Tools(), "record_answer", `{"answer_summary":"five years in logistics"}`)

	if r := o.Result(); !r.Answered || r.AnswerSummary != "five years in logistics" {
		t.Fatalf("result=%+v", r)
	}
	if len(driver.said) != 1 || driver.said[0] != "Great, thanks for sharing." {
		t.Fatalf("said=%q", driver.said)
	}
}

func TestOpenQuestion_TurnCapRecordsFallbackAnswer(t *testing.T) {
	t.Parallel()
	rt, _ := newRuntime(t, session.Input{})

	o := &OpenQuestion{QuestionID: "o1", QuestionText: "q?"}
	ctx := context.Background()
	for i := 0; i < openQuestionMaxTurns; i++ {
		o.OnUserTurn(ctx, rt, "rambling")
	}
	if r := o.Result(); !r.Answered || r.AnswerSummary != "Candidate could not answer the question" {
		t.Fatalf("result=%+v", r)
	}
}

func TestReadyCheck(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("confirmation", func(t *testing.T) {
		rt, driver := newRuntime(t, session.Input{})
		r := &ReadyCheck{Message: "Shall we begin?"}
		r.Enter(ctx, rt)
		if len(driver.said) != 1 || driver.said[0] != "Shall we begin?" {
			t.Fatalf("said=%q", driver.said)
		}
		callTool(t, rt, r.Tools(), "confirm_ready", `{}`)
		if !r.Done() || !r.Confirmed() {
			t.Fatalf("done=%v confirmed=%v", r.Done(), r.Confirmed())
		}
	})

	t.Run("turn cap declines", func(t *testing.T) {
		rt, _ := newRuntime(t, session.Input{})
		r := &ReadyCheck{Message: "Shall we begin?"}
		for i := 0; i < readyCheckMaxTurns; i++ {
			r.OnUserTurn(ctx, rt, "what is this about again?")
		}
		if !r.Done() || r.Confirmed() {
			t.Fatalf("done=%v confirmed=%v, want declined at the cap", r.Done(), r.Confirmed())
		}
	})

	t.Run("irrelevance limit declines", func(t *testing.T) {
		rt, _ := newRuntime(t, session.Input{})
		r := &ReadyCheck{Message: "Shall we begin?"}
		for i := 0; i < session.MaxIrrelevant; i++ {
			callTool(t, rt, r.Tools(), "mark_irrelevant", `{"answer_summary":"nonsense"}`)
		}
		if !r.Done() || r.Confirmed() {
			t.Fatalf("done=%v confirmed=%v", r.Done(), r.Confirmed())
		}
	})
}

// groupAgent runs a question group as its whole stage so the group can
// be exercised through the real event loop.
type groupAgent struct {
	specs              []GroupSpec
	recruiterRequested bool
}

func (a *groupAgent) Name() string         { return "group" }
func (a *groupAgent) Instructions() string { return "run the question group" }
func (a *groupAgent) Tools() []flow.Tool   { return nil }

func (a *groupAgent) Enter(ctx context.Context, rt *flow.Runtime) {
	RunGroup(ctx, rt, a.specs, true, func(ctx context.Context, recruiterRequested bool) {
		a.recruiterRequested = recruiterRequested
		rt.Shutdown("group done")
	})
}

func runGroupCall(t *testing.T, agent *groupAgent, events ...flow.Event) *session.State {
	t.Helper()
	driver := newScriptDriver()
	state := session.NewState(session.Input{CallID: "c1"})
	conv, err := flow.New(flow.Config{
		Driver: driver,
		State:  state,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("flow.New: %v", err)
	}
	for _, ev := range events {
		driver.events <- ev
	}
	if _, err := conv.Run(context.Background(), agent); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return state
}

func TestRunGroup_RecordsAnswersInOrder(t *testing.T) {
	t.Parallel()
	agent := &groupAgent{specs: []GroupSpec{
		{ID: "g1", Text: "first?"},
		{ID: "g2", Text: "second?"},
	}}
	state := runGroupCall(t, agent,
		&flow.ToolCallEvent{ID: "t1", Name: "record_answer", Input: json.RawMessage(`{"answer_summary":"answer one"}`)},
		&flow.ToolCallEvent{ID: "t2", Name: "record_answer", Input: json.RawMessage(`{"answer_summary":"answer two"}`)},
	)

	if agent.recruiterRequested {
		t.Fatal("recruiterRequested set without an escalation")
	}
	if len(state.OpenAnswers) != 2 {
		t.Fatalf("OpenAnswers=%d, want 2", len(state.OpenAnswers))
	}
	if state.OpenAnswers[0].QuestionID != "g1" || state.OpenAnswers[1].QuestionID != "g2" {
		t.Fatalf("answers out of order: %+v", state.OpenAnswers)
	}
}

func TestRunGroup_EscalationAbortsRemainingQuestions(t *testing.T) {
	t.Parallel()
	agent := &groupAgent{specs: []GroupSpec{
		{ID: "g1", Text: "first?"},
		{ID: "g2", Text: "second?"},
		{ID: "g3", Text: "third?"},
	}}
	state := runGroupCall(t, agent,
		&flow.ToolCallEvent{ID: "t1", Name: "record_answer", Input: json.RawMessage(`{"answer_summary":"answer one"}`)},
		&flow.ToolCallEvent{ID: "t2", Name: "escalate_to_recruiter", Input: json.RawMessage(`{}`)},
	)

	if !agent.recruiterRequested || !state.RecruiterRequested {
		t.Fatal("escalation did not flag the session")
	}
	for _, a := range state.OpenAnswers {
		if a.QuestionID == "g3" {
			t.Fatal("question after the escalation was still recorded")
		}
	}
	if len(state.OpenAnswers) != 2 {
		t.Fatalf("OpenAnswers=%d, want the answered question and the escalation entry", len(state.OpenAnswers))
	}
}
