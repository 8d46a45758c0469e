package orchestrator

import (
	"encoding/json"
	"fmt"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/i4h/health-companion/fhir"
	"github.com/i4h/health-companion/llm"
	"go.uber.org/zap"
)

// Rough estimate: 200k chars of serialized JSON is about 50k tokens.
const maxClinicalContextChars = 200_000

// BuildMessages assembles the ordered message sequence for one model call:
// the system instructions (with the minimized clinical document injected when
// present), followed by the history in original order with tool metadata
// re-attached. Rebuilt on every turn.
func BuildMessages(systemPrompt string, history []llm.Message, doc *fhir.Bundle) []llm.Message {
	system := llm.Message{Role: "system", Content: systemPrompt}
	if doc != nil {
		system.Content += clinicalContext(doc)
	}

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, system)

	for _, msg := range history {
		messages = append(messages, llm.Message{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCalls:  msg.ToolCalls,
			ToolCallID: msg.ToolCallID,
		})
	}

	return messages
}

// clinicalContext serializes the minimized document for the system message.
// Oversized payloads are cut at the threshold with an explicit marker, never
// silently dropped; serialization failure degrades to a note so the turn
// still proceeds.
func clinicalContext(doc *fhir.Bundle) string {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		logger.Error("Error serializing clinical data", zap.Error(err))
		return "\n\nNote: Patient FHIR data is available but could not be included in this request."
	}

	serialized := string(raw)
	size := len(serialized)

	if size > maxClinicalContextChars {
		logger.Info("Clinical data exceeds context threshold, truncating",
			zap.Int("chars", size),
			zap.Int("threshold", maxClinicalContextChars))
		return fmt.Sprintf(
			"\n\nPATIENT FHIR DATA (minimized raw JSON, %d chars):\n%s...\n[Data truncated due to size - %d chars omitted]\n\nUse this data to provide personalized, context-aware responses.",
			size, serialized[:maxClinicalContextChars], size-maxClinicalContextChars)
	}

	return fmt.Sprintf(
		"\n\nPATIENT FHIR DATA (minimized raw JSON):\n%s\n\nUse this data to provide personalized, context-aware responses.",
		serialized)
}
