package flow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hirevox/prescreen/pkg/calendar"
	"github.com/hirevox/prescreen/pkg/core/session"
	"github.com/hirevox/prescreen/pkg/webhook"
)

const (
	silencePrompt  = "Hello? Are you still there?"
	silenceGoodbye = "It seems you are no longer there. We will try to reach you another time. Goodbye!"

	// How long teardown waits for background side work (calendar
	// writes) before assembling the result.
	backgroundDrainTimeout = 5 * time.Second
)

// Config wires a Conversation.
type Config struct {
	Driver    Driver
	State     *session.State
	Scheduler calendar.Scheduler
	// Webhook may be nil; results are then only logged.
	Webhook *webhook.Client
	Logger  *slog.Logger
}

// Conversation drives one call from the first greeting to teardown.
type Conversation struct {
	rt      *Runtime
	logger  *slog.Logger
	webhook *webhook.Client
}

// New creates a conversation over a fresh session state.
func New(cfg Config) (*Conversation, error) {
	if cfg.Driver == nil {
		return nil, fmt.Errorf("flow: driver is required")
	}
	if cfg.State == nil {
		return nil, fmt.Errorf("flow: session state is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("call_id", cfg.State.Input.CallID)

	var scheduler calendar.Scheduler = cfg.Scheduler
	if scheduler == nil {
		scheduler = &calendar.Fallback{}
	}

	return &Conversation{
		rt: &Runtime{
			logger:    logger,
			driver:    cfg.Driver,
			state:     cfg.State,
			scheduler: scheduler,
		},
		logger:  logger,
		webhook: cfg.Webhook,
	}, nil
}

// Runtime exposes the conversation runtime, mainly for tests and for
// entry points that need to pre-wire stage construction.
func (c *Conversation) Runtime() *Runtime { return c.rt }

// Run activates the start agent and processes collaborator events until
// the call ends, then performs teardown and returns the final result.
func (c *Conversation) Run(ctx context.Context, start Agent) (*webhook.Result, error) {
	rt := c.rt
	rt.agent = start
	rt.applyContext()
	c.logger.Info("call started", "stage", start.Name())
	start.Enter(ctx, rt)
	rt.checkTask(ctx)

	for !rt.ended {
		select {
		case <-ctx.Done():
			rt.Shutdown("context cancelled")
		case ev, ok := <-rt.driver.Events():
			if !ok {
				rt.Shutdown("driver closed")
				break
			}
			c.handleEvent(ctx, ev)
		}
	}

	return c.teardown(ctx)
}

func (c *Conversation) handleEvent(ctx context.Context, ev Event) {
	rt := c.rt
	switch e := ev.(type) {
	case *UtteranceEvent:
		rt.utteranceSpoken(e)

	case *UserTurnEvent:
		rt.transcript = append(rt.transcript, webhook.TranscriptEntry{Role: "user", Message: e.Text})
		if rt.task != nil {
			rt.task.OnUserTurn(ctx, rt, e.Text)
			rt.checkTask(ctx)
		}

	case *UserStateEvent:
		c.handleUserState(ctx, e.State)

	case *ToolCallEvent:
		c.dispatchTool(ctx, e)

	case *ClosedEvent:
		rt.Shutdown("pipeline closed: " + e.Reason)

	default:
		c.logger.Debug("ignoring event", "type", ev.EventType())
	}
}

// handleUserState is the call-wide silence handler: a first away signal
// gets a gentle prompt, a second one ends the call. Presence resets the
// counter. System-initiated speech suppresses the handler entirely.
func (c *Conversation) handleUserState(ctx context.Context, state UserState) {
	rt := c.rt
	switch state {
	case UserPresent:
		rt.state.SilenceCount = 0
	case UserAway:
		if rt.state.SuppressSilence {
			return
		}
		rt.state.SilenceCount++
		if rt.state.SilenceCount < 2 {
			rt.Say(ctx, silencePrompt)
			return
		}
		rt.SayEntry(ctx, silenceGoodbye)
		rt.Shutdown("silence")
	}
}

// dispatchTool routes a model tool invocation through the active
// dispatch table. Unknown names and invocations arriving after a task
// completed are tolerated; the collaborator may duplicate calls.
func (c *Conversation) dispatchTool(ctx context.Context, e *ToolCallEvent) {
	rt := c.rt
	tool, ok := rt.currentTable().lookup(e.Name)
	if !ok {
		c.logger.Warn("tool not in active table", "tool", e.Name)
		rt.driver.ToolResult(e.ID, "")
		return
	}

	note, err := tool.Handler(ctx, rt, e.Input)
	if err != nil {
		c.logger.Error("tool handler failed", "tool", e.Name, "error", err)
	}
	rt.driver.ToolResult(e.ID, note)
	rt.checkTask(ctx)
}

// teardown runs the end-of-call protocol: resolve the outcome, attach
// transcript and usage, deliver the result, and drain the pipeline.
// Each step is isolated so one failure cannot block the others.
func (c *Conversation) teardown(ctx context.Context) (*webhook.Result, error) {
	rt := c.rt

	c.waitBackground()
	if id := rt.calendarEvent(); id != "" {
		rt.state.CalendarEventID = id
	}

	var result *webhook.Result
	c.step("resolve result", func() error {
		usage := rt.driver.Usage()
		result = webhook.BuildResult(rt.state, rt.transcript, &usage)
		return nil
	})

	if result != nil {
		c.logger.Info("call complete",
			"status", result.Status,
			"reason", rt.endReason,
			"transcript_messages", len(result.Transcript))

		switch {
		case c.webhook == nil:
			c.logger.Warn("no webhook configured, result not delivered")
		case rt.state.Input.Playground:
			c.logger.Info("playground mode, skipping webhook delivery")
		default:
			c.step("deliver result", func() error {
				return c.webhook.Deliver(ctx, result)
			})
		}
	}

	c.step("close pipeline", func() error {
		return rt.driver.Close(true)
	})

	if result == nil {
		return nil, fmt.Errorf("flow: teardown produced no result")
	}
	return result, nil
}

// step runs one teardown step, converting panics and errors into log
// entries so the remaining steps always run.
func (c *Conversation) step(name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("teardown step panicked", "step", name, "panic", r)
		}
	}()
	if err := fn(); err != nil {
		c.logger.Error("teardown step failed", "step", name, "error", err)
	}
}

// waitBackground waits briefly for fire-and-forget side work so late
// results (a created calendar event id) can still be reported.
func (c *Conversation) waitBackground() {
	done := make(chan struct{})
	go func() {
		c.rt.bg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(backgroundDrainTimeout):
		c.logger.Warn("background work still running at teardown")
	}
}
