package flow

import (
	"context"
	"encoding/json"
)

// ToolFunc handles one tool invocation. The returned note is fed back
// to the model as the tool result; an empty note resumes the generation
// without extra context.
type ToolFunc func(ctx context.Context, rt *Runtime, input json.RawMessage) (string, error)

// Tool binds a tool declaration to its handler. Agents and tasks expose
// their command surface as a closed list of Tools; the orchestrator
// dispatches invocations through an explicit table, never by ad-hoc
// string matching at the call sites.
type Tool struct {
	Name        string
	Description string
	Params      []ToolParam
	Handler     ToolFunc
}

// Spec returns the driver-facing declaration of the tool.
func (t Tool) Spec() ToolSpec {
	return ToolSpec{Name: t.Name, Description: t.Description, Params: t.Params}
}

// MakeTool creates a tool with typed input handling: the raw invocation
// payload is decoded into T before the handler runs. Malformed input is
// tolerated (the zero value is passed through), since the model is an
// unreliable caller and a dropped payload must not corrupt the call.
func MakeTool[T any](name, description string, params []ToolParam, fn func(ctx context.Context, rt *Runtime, input T) (string, error)) Tool {
	return Tool{
		Name:        name,
		Description: description,
		Params:      params,
		Handler: func(ctx context.Context, rt *Runtime, raw json.RawMessage) (string, error) {
			var input T
			if len(raw) > 0 {
				_ = json.Unmarshal(raw, &input)
			}
			return fn(ctx, rt, input)
		},
	}
}

// dispatchTable is the merged tool set active at one instant: the
// current task's tools shadow the agent's tools of the same name.
type dispatchTable struct {
	tools map[string]Tool
	specs []ToolSpec
}

func newDispatchTable(agentTools, taskTools []Tool) dispatchTable {
	dt := dispatchTable{tools: make(map[string]Tool, len(agentTools)+len(taskTools))}
	add := func(list []Tool) {
		for _, t := range list {
			if _, exists := dt.tools[t.Name]; exists {
				continue
			}
			dt.tools[t.Name] = t
			dt.specs = append(dt.specs, t.Spec())
		}
	}
	add(taskTools)
	add(agentTools)
	return dt
}

func (dt dispatchTable) lookup(name string) (Tool, bool) {
	t, ok := dt.tools[name]
	return t, ok
}
