package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/itinerary-agents/components"
	"github.com/bububa/itinerary-agents/components/systemprompt"
	"github.com/bububa/itinerary-agents/components/systemprompt/cot"
	"github.com/bububa/itinerary-agents/schema"
)

var (
	// ErrNoClient is returned when an agent runs without a chat client
	ErrNoClient = errors.New("agent has no chat client")
	// ErrNoChoices is returned when the model reply has no choices
	ErrNoChoices = errors.New("model returned no choices")
)

type IAgent interface {
	Name() string
}

// Config represents general agents configuration
type Config struct {
	// client Client for interacting with the language model
	client components.ChatClient
	//	systemPromptGenerator Component for generating system prompts.
	systemPromptGenerator systemprompt.Generator
	// model llm model
	model string
	// temperature Temperature for response generation, typically ranging from 0 to 1.
	temperature float32
	// maxTokens Maximum number of tokens allowed in the response
	maxTokens int
	// name is Agent name presentation
	name string
	logger *slog.Logger
}

// Agent is a single language model role.
// An Agent holds no conversation state: history arrives per run through WithHistory,
// so one instance may serve concurrent runs once built.
type Agent[I schema.Schema, O schema.Schema] struct {
	Config
	// outputSchema is the JSON schema of O, empty for text output
	outputSchema string
	startHook    func(context.Context, *Agent[I, O], *I)
	endHook      func(context.Context, *Agent[I, O], *I, *O, *components.LLMResponse)
	errorHook    func(context.Context, *Agent[I, O], *I, *components.LLMResponse, error)
}

// NewAgent initializes the Agent
func NewAgent[I schema.Schema, O schema.Schema](options ...Option) *Agent[I, O] {
	ret := new(Agent[I, O])
	for _, opt := range options {
		opt(&ret.Config)
	}
	if ret.systemPromptGenerator == nil {
		ret.systemPromptGenerator = cot.New()
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	if out := new(O); !schema.IsText(out) {
		ret.outputSchema = schema.JSONSchema(out)
	}
	return ret
}

func (a Agent[I, O]) Name() string {
	return a.name
}

func (a Agent[I, O]) Model() string {
	return a.model
}

func (a Agent[I, O]) Temperature() float32 {
	return a.temperature
}

// Structured reports whether the agent replies with a JSON object instead of text
func (a Agent[I, O]) Structured() bool {
	return a.outputSchema != ""
}

func (a *Agent[I, O]) SetStartHook(fn func(context.Context, *Agent[I, O], *I)) {
	a.startHook = fn
}

func (a *Agent[I, O]) SetEndHook(fn func(context.Context, *Agent[I, O], *I, *O, *components.LLMResponse)) {
	a.endHook = fn
}

func (a *Agent[I, O]) SetErrorHook(fn func(context.Context, *Agent[I, O], *I, *components.LLMResponse, error)) {
	a.errorHook = fn
}

// SystemPrompt returns the system prompt with the given per-run context providers
func (a *Agent[I, O]) SystemPrompt(extra ...systemprompt.ContextProvider) string {
	if a.outputSchema != "" {
		extra = append(extra, a.outputFormatProvider())
	}
	return a.systemPromptGenerator.Generate(extra...)
}

func (a *Agent[I, O]) outputFormatProvider() systemprompt.ContextProvider {
	info := fmt.Sprintf("Respond with one JSON object, and nothing else, that matches this JSON schema:\n```json\n%s\n```", a.outputSchema)
	return systemprompt.NewStaticProvider("Output format", info)
}

// chatRequest assembles system prompt, history and user input
func (a *Agent[I, O]) chatRequest(userInput *I, opts *runOptions) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: wireTemperature(a.temperature),
		MaxTokens:   a.maxTokens,
	}
	if a.outputSchema != "" {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	req.Messages = make([]openai.ChatCompletionMessage, 0, len(opts.history)+2)
	req.Messages = append(req.Messages, openai.ChatCompletionMessage{
		Role:    components.SystemRole,
		Content: a.SystemPrompt(opts.providers...),
	})
	for _, msg := range opts.history {
		v := new(openai.ChatCompletionMessage)
		msg.ToOpenAI(v)
		req.Messages = append(req.Messages, *v)
	}
	if userInput != nil {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    components.UserRole,
			Content: schema.Stringify(*userInput),
		})
	}
	return req
}

// response obtains a response from the language model synchronously
func (a *Agent[I, O]) response(ctx context.Context, userInput *I, output *O, apiResp *components.LLMResponse, opts *runOptions) error {
	if a.client == nil {
		return ErrNoClient
	}
	req := a.chatRequest(userInput, opts)
	a.logger.DebugContext(ctx, "chat completion", "agent", a.name, "model", a.model, "messages", len(req.Messages), "structured", a.Structured())
	res, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return err
	}
	if apiResp != nil {
		apiResp.FromOpenAI(&res)
	}
	if len(res.Choices) == 0 {
		return ErrNoChoices
	}
	return schema.Unmarshal(res.Choices[0].Message.Content, output)
}

// Run runs the agent with the given user input synchronously.
func (a *Agent[I, O]) Run(ctx context.Context, userInput *I, output *O, apiResp *components.LLMResponse, opts ...RunOption) error {
	if fn := a.startHook; fn != nil {
		fn(ctx, a, userInput)
	}
	if err := a.response(ctx, userInput, output, apiResp, newRunOptions(opts)); err != nil {
		if fn := a.errorHook; fn != nil {
			fn(ctx, a, userInput, apiResp, err)
		}
		return fmt.Errorf("agent %s: %w", a.name, err)
	}
	if fn := a.endHook; fn != nil {
		fn(ctx, a, userInput, output, apiResp)
	}
	return nil
}

// wireTemperature keeps an explicit 0 on the wire, where the field is omitempty
func wireTemperature(t float32) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}
