package agents

import (
	"context"
	"fmt"

	"github.com/bububa/itinerary-agents/components"
	"github.com/bububa/itinerary-agents/components/systemprompt"
	"github.com/bububa/itinerary-agents/schema"
	"github.com/bububa/itinerary-agents/tools"
)

// ToolTrace records the tool step of one ToolAgent run
type ToolTrace[T schema.Schema, R schema.Schema] struct {
	// Call is the tool input produced by the start agent
	Call *T
	// Result is the tool output, nil when the tool failed softly
	Result *R
	// ToolErr is the soft tool failure the run continued past
	ToolErr error
}

// ToolAgent represent agent with tool callback.
// The start agent turns the input into a tool call, the tool runs, and the end
// agent answers the input with the tool result in its system prompt.
type ToolAgent[I schema.Schema, T schema.Schema, R schema.Schema, O schema.Schema] struct {
	start *Agent[I, T]
	end   *Agent[I, O]
	tool  tools.Tool[T, R]
	soft  func(error) bool
}

// NewToolAgent returns a new ToolAgent instance
func NewToolAgent[I schema.Schema, T schema.Schema, R schema.Schema, O schema.Schema](start *Agent[I, T], tool tools.Tool[T, R], end *Agent[I, O]) *ToolAgent[I, T, R, O] {
	return &ToolAgent[I, T, R, O]{
		start: start,
		end:   end,
		tool:  tool,
	}
}

// SetSoftFailure sets which tool errors are tolerated. By default every tool error aborts the run.
func (t *ToolAgent[I, T, R, O]) SetSoftFailure(fn func(error) bool) *ToolAgent[I, T, R, O] {
	t.soft = fn
	return t
}

func (t *ToolAgent[I, T, R, O]) Start() *Agent[I, T] {
	return t.start
}

func (t *ToolAgent[I, T, R, O]) End() *Agent[I, O] {
	return t.end
}

func (t *ToolAgent[I, T, R, O]) Tool() tools.Tool[T, R] {
	return t.tool
}

// Run runs start agent, tool and end agent in order. Run options apply to both agents.
func (t *ToolAgent[I, T, R, O]) Run(ctx context.Context, userInput *I, output *O, apiResp *components.LLMResponse, opts ...RunOption) (*ToolTrace[T, R], error) {
	trace := &ToolTrace[T, R]{Call: new(T)}
	if err := t.start.Run(ctx, userInput, trace.Call, apiResp, opts...); err != nil {
		return trace, err
	}
	endOpts := opts
	if t.tool != nil {
		result, err := t.tool.Run(ctx, trace.Call)
		switch {
		case err == nil:
			trace.Result = result
			endOpts = append(endOpts[:len(endOpts):len(endOpts)], WithContextProviders(resultProvider(t.tool, result)))
		case t.soft != nil && t.soft(err):
			trace.ToolErr = err
		default:
			return trace, fmt.Errorf("tool %s: %w", t.tool.Title(), err)
		}
	}
	if err := t.end.Run(ctx, userInput, output, apiResp, endOpts...); err != nil {
		return trace, err
	}
	return trace, nil
}

// resultProvider exposes a tool result to the system prompt
func resultProvider[R schema.Schema](tool tools.ITool, result *R) systemprompt.ContextProvider {
	if p, ok := any(*result).(systemprompt.ContextProvider); ok {
		return p
	}
	return systemprompt.NewStaticProvider(tool.Title(), schema.Stringify(*result))
}
