package orchestrator

import (
	"testing"
	"time"

	"github.com/i4h/health-companion/tools"
	"github.com/stretchr/testify/assert"
)

func TestBuilderDefaults(t *testing.T) {
	orch := NewOrchestratorBuilder().Build()

	assert.Equal(t, 5, orch.config.MaxIterations)
	assert.Equal(t, 0.7, orch.config.Temperature)
	assert.Equal(t, 60*time.Second, orch.config.CallTimeout)
	assert.NotNil(t, orch.config.Registry)
	assert.Contains(t, orch.config.SystemPrompt, "AI Health Companion")
}

func TestBuilderOverrides(t *testing.T) {
	registry := tools.NewRegistry()

	orch := NewOrchestratorBuilder().
		WithRegistry(registry).
		WithSystemPrompt("custom prompt").
		WithMaxIterations(3).
		WithTemperature(0.1).
		WithCallTimeout(10 * time.Second).
		Build()

	assert.Equal(t, 3, orch.config.MaxIterations)
	assert.Equal(t, 0.1, orch.config.Temperature)
	assert.Equal(t, 10*time.Second, orch.config.CallTimeout)
	assert.Same(t, registry, orch.config.Registry)
	assert.Equal(t, "custom prompt", orch.config.SystemPrompt)
}
