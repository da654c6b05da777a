package flow

import "context"

// Agent is one phase of the interview. Exactly one agent is active at a
// time; an agent ends its tenure by calling Runtime.Transition or
// Runtime.Shutdown.
type Agent interface {
	// Name identifies the stage, e.g. "screening".
	Name() string

	// Instructions is the model context while this agent is active and
	// no task has taken over.
	Instructions() string

	// Tools is the agent-level command surface. It stays active while a
	// task runs, shadowed by the task's own tools.
	Tools() []Tool

	// Enter runs the phase-entry behavior after the hand-off.
	Enter(ctx context.Context, rt *Runtime)
}

// Task is one bounded sub-conversation run on behalf of the active
// agent. The orchestrator routes candidate turns and tool invocations
// to the active task until Done reports true.
type Task interface {
	// Instructions is the model context while the task is active.
	Instructions() string

	// Tools is the task command surface; it shadows the agent's tools.
	Tools() []Tool

	// Enter emits the task's opening utterance. A task may complete
	// during Enter (e.g. when it decides to skip itself).
	Enter(ctx context.Context, rt *Runtime)

	// OnUserTurn is called for every completed candidate turn while the
	// task is active. Implementations enforce their own turn cap here.
	OnUserTurn(ctx context.Context, rt *Runtime, text string)

	// Done reports whether the task reached a terminal result.
	Done() bool
}
