package llm

import (
	"context"

	"github.com/ollama/ollama/api"
)

type Capability uint8

const (
	NativeToolCalling Capability = 1 << iota
)

type LLMClient interface {
	GenerateInference(
		ctx context.Context,
		messages []Message,
		callback func(chunk string) error,
		opts ...LLMOption,
	) error

	// GenerateInferenceWithTools supports native tool calling
	GenerateInferenceWithTools(
		ctx context.Context,
		messages []Message,
		contentCallback func(chunk string) error,
		toolCallback func(toolCalls []ToolCall) error,
		opts ...LLMOption,
	) error

	Capabilities() Capability

	GetModel() string
}

type LLMSettings struct {
	model       string     // model name
	temperature float64    // randomness (0.0 to 1.0)
	maxTokens   int        // maximum tokens to generate
	system      string     // system prompt
	tools       []api.Tool // tools exposed for tool calling
}

type LLMOption func(*LLMSettings)

// Common options for all LLM providers
func WithTemperature(temp float64) LLMOption {
	return func(s *LLMSettings) { s.temperature = temp }
}

func WithMaxTokens(tokens int) LLMOption {
	return func(s *LLMSettings) { s.maxTokens = tokens }
}

func WithSystemPrompt(prompt string) LLMOption {
	return func(s *LLMSettings) { s.system = prompt }
}

func WithTools(tools []api.Tool) LLMOption {
	return func(s *LLMSettings) { s.tools = tools }
}

// Message is one entry of the conversation transcript. Assistant messages may
// carry the tool calls they requested; tool-role messages answer the call
// identified by ToolCallID.
type Message struct {
	Role       string     `json:"role"` // "system", "user", "assistant", "tool"
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a tool invocation requested by the model. ID correlates the
// invocation with the tool message carrying its result.
type ToolCall struct {
	ID       string               `json:"id"`
	Function api.ToolCallFunction `json:"function"`
}
