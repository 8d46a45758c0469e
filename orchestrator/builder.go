package orchestrator

import (
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/i4h/health-companion/llm"
	"github.com/i4h/health-companion/prompts"
	"github.com/i4h/health-companion/tools"
	"go.uber.org/zap"
)

type OrchestratorBuilder struct {
	config Config
}

func NewOrchestratorBuilder() *OrchestratorBuilder {
	return &OrchestratorBuilder{
		config: Config{
			MaxIterations: 5,
			Temperature:   0.7,
			CallTimeout:   60 * time.Second,
		},
	}
}

func (b *OrchestratorBuilder) WithModel(client llm.LLMClient) *OrchestratorBuilder {
	b.config.Model = client
	return b
}

func (b *OrchestratorBuilder) WithRegistry(registry *tools.Registry) *OrchestratorBuilder {
	b.config.Registry = registry
	return b
}

func (b *OrchestratorBuilder) WithSystemPrompt(prompt string) *OrchestratorBuilder {
	b.config.SystemPrompt = prompt
	return b
}

func (b *OrchestratorBuilder) WithMaxIterations(max int) *OrchestratorBuilder {
	b.config.MaxIterations = max
	return b
}

func (b *OrchestratorBuilder) WithTemperature(temp float64) *OrchestratorBuilder {
	b.config.Temperature = temp
	return b
}

func (b *OrchestratorBuilder) WithCallTimeout(timeout time.Duration) *OrchestratorBuilder {
	b.config.CallTimeout = timeout
	return b
}

func (b *OrchestratorBuilder) Build() *Orchestrator {
	if b.config.Registry == nil {
		b.config.Registry = tools.NewRegistry()
	}

	if b.config.SystemPrompt == "" {
		systemPrompt, err := prompts.RenderSystemPrompt()
		if err != nil {
			logger.Error("Failed to render system prompt", zap.Error(err))
		}
		b.config.SystemPrompt = systemPrompt
	}

	return &Orchestrator{config: b.config}
}
