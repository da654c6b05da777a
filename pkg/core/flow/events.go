package flow

import "encoding/json"

// Event is the interface for all collaborator events.
type Event interface {
	// EventType returns the event type string for logging.
	EventType() string
}

// UserState describes candidate presence as detected by the speech
// pipeline's wall-clock silence detection.
type UserState string

const (
	UserPresent UserState = "present"
	UserAway    UserState = "away"
)

// UserStateEvent is emitted when the candidate's presence changes.
type UserStateEvent struct {
	State UserState `json:"state"`
}

func (e *UserStateEvent) EventType() string { return "user.state_changed" }

// UserTurnEvent is emitted when the candidate finished a turn. Text is
// the transcribed utterance.
type UserTurnEvent struct {
	Text string `json:"text"`
}

func (e *UserTurnEvent) EventType() string { return "user.turn_completed" }

// UtteranceEvent is emitted after the pipeline finished speaking an
// agent utterance, whether fixed or model-generated. An empty Text
// reports a request that produced no speech; the event then exists
// only to release the silence suppression the request armed.
type UtteranceEvent struct {
	Text string `json:"text"`
	// Suppressed mirrors SayOptions.Suppress of the originating request
	// so the orchestrator can lift the silence suppression it set.
	Suppressed bool `json:"suppressed,omitempty"`
}

func (e *UtteranceEvent) EventType() string { return "agent.utterance" }

// ToolCallEvent is emitted when the model invokes a named tool. The
// generation is suspended until Driver.ToolResult is called with ID.
type ToolCallEvent struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

func (e *ToolCallEvent) EventType() string { return "tool.call" }

// ClosedEvent is emitted once when the pipeline has shut down.
type ClosedEvent struct {
	Reason string `json:"reason,omitempty"`
}

func (e *ClosedEvent) EventType() string { return "session.closed" }
