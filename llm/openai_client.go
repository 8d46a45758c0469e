package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/ollama/ollama/api"
)

type OpenAIClient struct {
	apiKey     string
	httpClient *http.Client
	url        string
	model      string
}

func NewOpenAIClient(model string) LLMClient {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		// Providers are designed for dependency injection.
		// If the API key is not set, we log a fatal error.
		logger.Fatal("OPENAI_API_KEY environment variable is not set")
		return nil
	}

	return &OpenAIClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
		url:        "https://api.openai.com/v1/chat/completions",
		model:      model,
	}
}

func (c *OpenAIClient) Capabilities() Capability {
	return NativeToolCalling
}

func (c *OpenAIClient) GetModel() string {
	return c.model
}

func (c *OpenAIClient) GenerateInference(ctx context.Context, messages []Message, callback func(chunk string) error, opts ...LLMOption) error {
	return c.GenerateInferenceWithTools(ctx, messages, callback, nil, opts...)
}

func (c *OpenAIClient) GenerateInferenceWithTools(
	ctx context.Context,
	messages []Message,
	contentCallback func(chunk string) error,
	toolCallback func(toolCalls []ToolCall) error,
	opts ...LLMOption,
) error {
	// Default settings
	settings := LLMSettings{
		model:       c.model,
		temperature: 0.7,
		maxTokens:   4096,
	}

	// Apply options
	for _, opt := range opts {
		opt(&settings)
	}

	wireMessages, err := toWireMessages(messages)
	if err != nil {
		return fmt.Errorf("error encoding messages: %w", err)
	}

	// OpenAI takes the system prompt as the leading message
	if settings.system != "" {
		systemMsg := openAIMessage{Role: "system", Content: settings.system}
		wireMessages = append([]openAIMessage{systemMsg}, wireMessages...)
	}

	request := openAIRequest{
		Model:       settings.model,
		Messages:    wireMessages,
		Temperature: settings.temperature,
		MaxTokens:   settings.maxTokens,
	}

	if len(settings.tools) > 0 {
		request.Tools = convertToolsToOpenAIFormat(settings.tools)
		request.ToolChoice = "auto" // tool use is always model-decided
	}

	return c.makeRequest(ctx, request, contentCallback, toolCallback)
}

func (c *OpenAIClient) makeRequest(
	ctx context.Context,
	request openAIRequest,
	contentCallback func(chunk string) error,
	toolCallback func(toolCalls []ToolCall) error,
) error {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var response openAIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("error unmarshaling response: %w", err)
	}

	if len(response.Choices) == 0 {
		return fmt.Errorf("no choices in response")
	}

	choice := response.Choices[0]

	// Handle tool calls
	if len(choice.Message.ToolCalls) > 0 && toolCallback != nil {
		toolCalls := make([]ToolCall, len(choice.Message.ToolCalls))
		for i, tc := range choice.Message.ToolCalls {
			// Arguments come over the wire as a JSON string
			var args api.ToolCallFunctionArguments
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return fmt.Errorf("error parsing tool call arguments: %w", err)
			}

			toolCalls[i] = ToolCall{
				ID: tc.ID,
				Function: api.ToolCallFunction{
					Name:      tc.Function.Name,
					Arguments: args,
				},
			}
		}
		return toolCallback(toolCalls)
	}

	// Handle regular content
	if choice.Message.Content != "" && contentCallback != nil {
		return contentCallback(choice.Message.Content)
	}

	return nil
}

// toWireMessages converts transcript messages to the chat-completions wire
// shape. Tool-call arguments are re-encoded as JSON strings.
func toWireMessages(messages []Message) ([]openAIMessage, error) {
	wire := make([]openAIMessage, len(messages))
	for i, msg := range messages {
		wire[i] = openAIMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
		}

		for _, tc := range msg.ToolCalls {
			args, err := json.Marshal(tc.Function.Arguments)
			if err != nil {
				return nil, err
			}

			wire[i].ToolCalls = append(wire[i].ToolCalls, openAIToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: openAIToolCallFunction{
					Name:      tc.Function.Name,
					Arguments: string(args),
				},
			})
		}
	}
	return wire, nil
}

// convertToolsToOpenAIFormat converts Ollama tool schemas to OpenAI format
func convertToolsToOpenAIFormat(tools []api.Tool) []openAITool {
	if len(tools) == 0 {
		return nil
	}

	openAITools := make([]openAITool, len(tools))
	for i, tool := range tools {
		openAITools[i] = openAITool{
			Type: "function",
			Function: openAIFunction{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  tool.Function.Parameters,
			},
		}
	}
	return openAITools
}

// OpenAI API types
type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_completion_tokens,omitempty"`
	Tools       []openAITool    `json:"tools,omitempty"`
	ToolChoice  string          `json:"tool_choice,omitempty"`
}

type openAIMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	ToolCalls  []openAIToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

type openAITool struct {
	Type     string         `json:"type"`
	Function openAIFunction `json:"function"`
}

type openAIFunction struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  interface{} `json:"parameters"`
}

type openAIResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []openAIChoice `json:"choices"`
	Usage   openAIUsage    `json:"usage"`
}

type openAIChoice struct {
	Index        int           `json:"index"`
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openAIToolCall struct {
	ID       string                 `json:"id"`
	Type     string                 `json:"type"`
	Function openAIToolCallFunction `json:"function"`
}

type openAIToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
