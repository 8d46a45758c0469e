package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/google/uuid"
	"github.com/i4h/health-companion/fhir"
	"github.com/i4h/health-companion/llm"
	"github.com/i4h/health-companion/safety"
	"github.com/i4h/health-companion/tools"
	"go.uber.org/zap"
)

// Canned user-facing replies for turn-level failures. A raw error never
// reaches the UI layer.
const (
	oversizedContextMessage = "I apologize, but the health data is too large to process. Please contact technical staff for assistance."
	timeoutMessage          = "I apologize, but the request timed out. Please try again with a more specific question."
	emptyResponseMessage    = "I apologize, but I couldn't generate a response."
	maxIterationsMessage    = "I apologize, but the conversation exceeded the maximum iterations. Please try rephrasing your question."
)

// GenerateResponse resolves one user turn: safety check, context assembly,
// then up to MaxIterations model calls with sequential tool dispatch between
// them. Always returns displayable text.
func (o *Orchestrator) GenerateResponse(ctx context.Context, userMessage string, history []llm.Message, doc *fhir.Bundle) string {
	// Emergency interception runs before any other turn processing
	if safety.CheckEmergency(userMessage) {
		logger.Info("Emergency language detected, short-circuiting turn")
		return safety.EmergencyResponse()
	}

	history = append(history, llm.Message{Role: "user", Content: userMessage})
	messages := BuildMessages(o.config.SystemPrompt, history, doc)

	for iteration := 0; iteration < o.config.MaxIterations; iteration++ {
		content, toolCalls, err := o.callModel(ctx, messages)
		if err != nil {
			logger.Error("LLM call failed", zap.Error(err))
			return mapTransportError(err)
		}

		messages = append(messages, llm.Message{
			Role:      "assistant",
			Content:   content,
			ToolCalls: toolCalls,
		})

		// No tool invocations means the model produced its final answer
		if len(toolCalls) == 0 {
			if content == "" {
				return emptyResponseMessage
			}
			return content
		}

		// Every invocation requested this turn is dispatched, in request order
		for _, call := range toolCalls {
			result := o.dispatch(ctx, call, doc)
			messages = append(messages, toolMessage(call, result))
		}
	}

	return maxIterationsMessage
}

func (o *Orchestrator) callModel(ctx context.Context, messages []llm.Message) (string, []llm.ToolCall, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.config.CallTimeout)
	defer cancel()

	opts := []llm.LLMOption{llm.WithTemperature(o.config.Temperature)}
	if o.config.Registry.Len() > 0 {
		// Tool use stays model-decided, never forced
		opts = append(opts, llm.WithTools(o.config.Registry.Definitions()))
	}

	var content strings.Builder
	var toolCalls []llm.ToolCall

	err := o.config.Model.GenerateInferenceWithTools(callCtx, messages,
		func(chunk string) error {
			content.WriteString(chunk)
			return nil
		},
		func(calls []llm.ToolCall) error {
			toolCalls = append(toolCalls, calls...)
			return nil
		},
		opts...)

	if err != nil {
		return "", nil, err
	}
	return content.String(), toolCalls, nil
}

// dispatch resolves and runs one tool invocation. Failures of any kind come
// back as a structured Result for the model to react to.
func (o *Orchestrator) dispatch(ctx context.Context, call llm.ToolCall, doc *fhir.Bundle) (result tools.Result) {
	name := call.Function.Name

	// A panicking handler becomes a failure result; nothing crosses back raw
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Tool handler panicked", zap.String("tool", name), zap.Any("panic", r))
			result = tools.Errorf("Error executing tool %s: %v", name, r)
		}
	}()

	tool, ok := o.config.Registry.Get(name)
	if !ok {
		return tools.Errorf("Unknown function: %s", name)
	}

	logger.Info("Executing tool",
		zap.String("tool", name),
		zap.Any("arguments", call.Function.Arguments))

	return tool.Execute(ctx, call.Function.Arguments, doc)
}

func toolMessage(call llm.ToolCall, result tools.Result) llm.Message {
	callID := call.ID
	if callID == "" {
		// Some providers omit ids; the transcript still needs the correlation
		callID = uuid.NewString()
	}

	content, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		content = []byte(`{"success": false, "error": "failed to encode tool result"}`)
	}

	return llm.Message{
		Role:       "tool",
		Content:    string(content),
		ToolCallID: callID,
	}
}

// mapTransportError converts an LLM transport failure into one of the canned
// user-facing messages, matched on error category.
func mapTransportError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "context_length_exceeded") || strings.Contains(msg, "token"):
		return oversizedContextMessage
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		return timeoutMessage
	default:
		return fmt.Sprintf("I apologize, but I encountered an error: %v. Please try again.", err)
	}
}
