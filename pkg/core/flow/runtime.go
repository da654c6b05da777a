package flow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hirevox/prescreen/pkg/calendar"
	"github.com/hirevox/prescreen/pkg/core/session"
	"github.com/hirevox/prescreen/pkg/webhook"
)

// Runtime is the handle agents and tasks use to speak, run tasks, hand
// off to the next stage, and end the call. One Runtime per call; all of
// its methods are invoked from the conversation's single event loop.
type Runtime struct {
	logger    *slog.Logger
	driver    Driver
	state     *session.State
	scheduler calendar.Scheduler

	agent    Agent
	task     Task
	taskDone func(ctx context.Context)

	transcript      []webhook.TranscriptEntry
	pendingSuppress int

	ended     bool
	endReason string

	// Background side work (calendar writes) that teardown waits for
	// briefly. Results land behind mu since they arrive off-loop.
	bg              sync.WaitGroup
	mu              sync.Mutex
	calendarEventID string
}

// State returns the shared per-call session state.
func (rt *Runtime) State() *session.State { return rt.state }

// Logger returns the call-scoped logger.
func (rt *Runtime) Logger() *slog.Logger { return rt.logger }

// Scheduler returns the scheduling collaborator.
func (rt *Runtime) Scheduler() calendar.Scheduler { return rt.scheduler }

// Ended reports whether the call has been shut down.
func (rt *Runtime) Ended() bool { return rt.ended }

// Say speaks a fixed line.
func (rt *Runtime) Say(ctx context.Context, text string) {
	rt.say(ctx, text, SayOptions{})
}

// SayEntry speaks a fixed line with the silence handler suppressed
// until the utterance has finished.
func (rt *Runtime) SayEntry(ctx context.Context, text string) {
	rt.say(ctx, text, SayOptions{Suppress: true})
}

func (rt *Runtime) say(ctx context.Context, text string, opts SayOptions) {
	if opts.Suppress {
		rt.beginSuppress()
	}
	if err := rt.driver.Say(ctx, text, opts); err != nil {
		rt.logger.Error("say failed", "error", err)
	}
}

// GenerateReply asks the model for the next utterance.
func (rt *Runtime) GenerateReply(ctx context.Context, instructions string) {
	rt.generate(ctx, instructions, SayOptions{})
}

// GenerateEntryReply asks the model for an utterance with the silence
// handler suppressed until it has been spoken.
func (rt *Runtime) GenerateEntryReply(ctx context.Context, instructions string) {
	rt.generate(ctx, instructions, SayOptions{Suppress: true})
}

func (rt *Runtime) generate(ctx context.Context, instructions string, opts SayOptions) {
	if opts.Suppress {
		rt.beginSuppress()
	}
	if err := rt.driver.GenerateReply(ctx, instructions, opts); err != nil {
		rt.logger.Error("generate reply failed", "error", err)
	}
}

func (rt *Runtime) beginSuppress() {
	rt.pendingSuppress++
	rt.state.SuppressSilence = true
}

// utteranceSpoken is called by the event loop when the driver finished
// an utterance. Suppressed utterances lift the silence suppression once
// none remain pending. An empty text means the driver produced no
// speech for a request (failed generation); it carries only the
// suppression release and never enters the transcript.
func (rt *Runtime) utteranceSpoken(ev *UtteranceEvent) {
	if ev.Text != "" {
		rt.transcript = append(rt.transcript, webhook.TranscriptEntry{Role: "assistant", Message: ev.Text})
	}
	if ev.Suppressed && rt.pendingSuppress > 0 {
		rt.pendingSuppress--
		if rt.pendingSuppress == 0 {
			rt.state.SuppressSilence = false
		}
	}
}

// RunTask activates a task: its instructions and tools replace the
// agent's in the model context, it receives all candidate turns, and
// onDone runs once it completes. Exactly one task is active at a time;
// activating a new task replaces the previous one.
func (rt *Runtime) RunTask(ctx context.Context, t Task, onDone func(ctx context.Context)) {
	if rt.ended {
		return
	}
	rt.task = t
	rt.taskDone = onDone
	rt.applyContext()
	t.Enter(ctx, rt)
	rt.checkTask(ctx)
}

// checkTask fires the completion callback when the active task reached
// a terminal result. The callback may start the next task or transition.
func (rt *Runtime) checkTask(ctx context.Context) {
	if rt.task == nil || !rt.task.Done() {
		return
	}
	done := rt.taskDone
	rt.task = nil
	rt.taskDone = nil
	if !rt.ended {
		rt.applyContext()
	}
	if done != nil {
		done(ctx)
	}
}

// Transition replaces the active agent. Optional closing lines are
// spoken by the outgoing agent before the next agent takes over; with
// none, the hand-off is silent and the next agent announces itself.
func (rt *Runtime) Transition(ctx context.Context, next Agent, closing ...string) {
	if rt.ended {
		return
	}
	for _, line := range closing {
		rt.SayEntry(ctx, line)
	}
	rt.task = nil
	rt.taskDone = nil
	rt.agent = next
	rt.applyContext()
	rt.logger.Info("stage transition", "stage", next.Name())
	next.Enter(ctx, rt)
	rt.checkTask(ctx)
}

// Shutdown ends the call gracefully: the event loop stops after the
// current event and teardown drains any in-flight utterance.
func (rt *Runtime) Shutdown(reason string) {
	if rt.ended {
		return
	}
	rt.ended = true
	rt.endReason = reason
	rt.logger.Info("call ending", "reason", reason)
}

// applyContext pushes the currently active instructions and dispatch
// table to the driver.
func (rt *Runtime) applyContext() {
	dt := rt.currentTable()
	instructions := ""
	if rt.task != nil {
		instructions = rt.task.Instructions()
	} else if rt.agent != nil {
		instructions = rt.agent.Instructions()
	}
	rt.driver.SetAgentContext(instructions, dt.specs)
}

func (rt *Runtime) currentTable() dispatchTable {
	var agentTools, taskTools []Tool
	if rt.agent != nil {
		agentTools = rt.agent.Tools()
	}
	if rt.task != nil {
		taskTools = rt.task.Tools()
	}
	return newDispatchTable(agentTools, taskTools)
}

// Go runs fire-and-forget side work off the conversational critical
// path. Teardown waits briefly for it so late results can still be
// reported.
func (rt *Runtime) Go(fn func()) {
	rt.bg.Add(1)
	go func() {
		defer rt.bg.Done()
		fn()
	}()
}

// SetCalendarEventID records a calendar write result arriving from a
// background goroutine.
func (rt *Runtime) SetCalendarEventID(id string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.calendarEventID = id
}

func (rt *Runtime) calendarEvent() string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.calendarEventID
}
