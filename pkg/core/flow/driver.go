// Package flow is the conversation orchestrator: it owns the session
// state, drives exactly one active stage agent at a time, dispatches
// tool invocations from the speech/LLM collaborator, enforces the
// silence fallback, and runs the teardown protocol when the call ends.
package flow

import (
	"context"

	"github.com/hirevox/prescreen/pkg/webhook"
)

// SayOptions controls how an utterance is delivered.
type SayOptions struct {
	// Suppress mutes the silence handler until this utterance has been
	// spoken, so a long system-initiated line is not mistaken for user
	// silence.
	Suppress bool
}

// ToolParam describes one named string parameter of a tool.
type ToolParam struct {
	Name        string
	Description string
}

// ToolSpec is the driver-facing declaration of a tool the model may
// invoke in the current agent context.
type ToolSpec struct {
	Name        string
	Description string
	Params      []ToolParam
}

// Driver is the speech/LLM collaborator boundary. Implementations run
// the STT/LLM/TTS pipeline; the orchestrator only sees utterance
// requests going out and events coming back.
//
// Say and GenerateReply enqueue work and return immediately; the driver
// reports each utterance it actually spoke through an UtteranceEvent.
// Tool invocations made by the model surface as ToolCallEvents, and the
// driver suspends that generation until ToolResult is called with the
// matching id. All methods must be safe for concurrent use.
type Driver interface {
	// SetAgentContext replaces the model instructions and the active
	// tool set. Called on every stage hand-off and task start.
	SetAgentContext(instructions string, tools []ToolSpec)

	// Say speaks a fixed utterance verbatim, bypassing the model.
	Say(ctx context.Context, text string, opts SayOptions) error

	// GenerateReply asks the model to produce the next utterance from
	// the given turn instructions.
	GenerateReply(ctx context.Context, instructions string, opts SayOptions) error

	// ToolResult resumes a suspended generation with the outcome of the
	// tool invocation identified by id.
	ToolResult(id, note string)

	// Events is the ordered stream of collaborator events. It is closed
	// after a ClosedEvent has been delivered.
	Events() <-chan Event

	// Usage reports pipeline consumption so far.
	Usage() webhook.Usage

	// Close ends the call. With drain set, any in-flight utterance is
	// allowed to finish before the pipeline is torn down.
	Close(drain bool) error
}
