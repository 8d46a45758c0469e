package orchestrator

import (
	"strings"
	"testing"

	"github.com/i4h/health-companion/fhir"
	"github.com/i4h/health-companion/llm"
	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
)

func TestBuildMessagesWithoutDocument(t *testing.T) {
	history := []llm.Message{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
	}

	messages := BuildMessages("You are a health companion.", history, nil)

	assert.Len(t, messages, 3)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "You are a health companion.", messages[0].Content)
	assert.Equal(t, "user", messages[1].Role)
	assert.Equal(t, "assistant", messages[2].Role)
}

func TestBuildMessagesInjectsClinicalData(t *testing.T) {
	doc := &fhir.Bundle{
		ResourceType: "Bundle",
		Entry: []fhir.Entry{
			{Resource: fhir.Resource{"resourceType": "Condition", "id": "c-1"}},
		},
	}

	messages := BuildMessages("You are a health companion.", nil, doc)

	assert.Len(t, messages, 1)
	system := messages[0].Content
	assert.True(t, strings.HasPrefix(system, "You are a health companion."))
	assert.Contains(t, system, "PATIENT FHIR DATA")
	assert.Contains(t, system, `"resourceType": "Condition"`)
	assert.Contains(t, system, "context-aware responses")
}

func TestBuildMessagesPreservesToolMetadata(t *testing.T) {
	history := []llm.Message{
		{
			Role: "assistant",
			ToolCalls: []llm.ToolCall{{
				ID:       "call_1",
				Function: api.ToolCallFunction{Name: "search_providers_by_zip"},
			}},
		},
		{Role: "tool", Content: `{"success": true}`, ToolCallID: "call_1"},
	}

	messages := BuildMessages("prompt", history, nil)

	assert.Len(t, messages[1].ToolCalls, 1)
	assert.Equal(t, "call_1", messages[1].ToolCalls[0].ID)
	assert.Equal(t, "call_1", messages[2].ToolCallID)
}

func TestClinicalContextTruncatesOversizedData(t *testing.T) {
	doc := &fhir.Bundle{
		ResourceType: "Bundle",
		Entry: []fhir.Entry{
			{Resource: fhir.Resource{
				"resourceType": "Observation",
				"valueString":  strings.Repeat("x", maxClinicalContextChars+50_000),
			}},
		},
	}

	context := clinicalContext(doc)

	assert.Contains(t, context, "[Data truncated due to size -")
	assert.Contains(t, context, "chars omitted]")
	// Truncation keeps the payload near the threshold rather than unbounded
	assert.Less(t, len(context), maxClinicalContextChars+1_000)
}

func TestClinicalContextSerializationFailure(t *testing.T) {
	doc := &fhir.Bundle{
		ResourceType: "Bundle",
		Entry: []fhir.Entry{
			{Resource: fhir.Resource{"resourceType": "Observation", "value": make(chan int)}},
		},
	}

	context := clinicalContext(doc)

	assert.Contains(t, context, "could not be included in this request")
	assert.NotContains(t, context, "PATIENT FHIR DATA")
}
