// Package tools defines the capability contract the orchestration loop
// dispatches against, and the concrete tools the model may call.
package tools

import (
	"context"
	"fmt"

	"github.com/i4h/health-companion/fhir"
	"github.com/ollama/ollama/api"
)

// Result is the structured outcome of a tool invocation. Handlers never let
// errors escape as Go errors; failures are carried back to the model as
// normal result content so it can retry or explain conversationally.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Errorf builds a failure Result.
func Errorf(format string, a ...any) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, a...)}
}

// Tool is one named capability the model may request during a turn.
//
// Execute receives the minimized clinical document as implicit context so a
// tool can derive missing arguments (e.g. the patient's ZIP code) from the
// record. doc may be nil.
type Tool interface {
	Name() string
	Definition() api.Tool
	Execute(ctx context.Context, args api.ToolCallFunctionArguments, doc *fhir.Bundle) Result
}
