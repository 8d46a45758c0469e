// Package orchestrator drives the conversation turn: safety interception,
// context assembly, and the bounded tool-calling loop against the LLM.
package orchestrator

import (
	"time"

	"github.com/i4h/health-companion/llm"
	"github.com/i4h/health-companion/tools"
)

// Config holds the collaborators and bounds of the orchestration loop.
type Config struct {
	Model         llm.LLMClient
	Registry      *tools.Registry
	SystemPrompt  string
	MaxIterations int
	Temperature   float64
	CallTimeout   time.Duration
}

// Orchestrator is the conversation engine. One GenerateResponse call resolves
// one user turn to completion; turns within a session never overlap.
type Orchestrator struct {
	config Config
}
