// Package service contains the reconciliation pipeline: prompt construction,
// the LLM transport, response extraction, schema coercion, and chat
// normalization.
package service

import (
	"log/slog"

	"github.com/follmon10/memo-ai/internal/config"
	"github.com/follmon10/memo-ai/internal/llm"
)

// Services holds all service instances.
type Services struct {
	Registry *llm.Registry
	Selector *llm.Selector
	Client   *LLMClient
	Prompts  *PromptBuilder
	Coercer  *Coercer
	Pipeline *Pipeline
}

// NewServices wires the service layer. The registry is the only shared
// mutable state; everything else is stateless per invocation.
func NewServices(cfg *config.Config, logger *slog.Logger) *Services {
	if !cfg.HasAnyProvider() {
		logger.Warn("no LLM provider API keys configured, all pipeline calls will degrade")
	}

	registry := llm.NewRegistry(cfg, logger)
	selector := llm.NewSelector(registry, cfg, logger)
	client := NewLLMClient(cfg, registry, logger)
	prompts := NewPromptBuilder(cfg, logger)
	coercer := NewCoercer(logger)
	normalizer := NewNormalizer(coercer)
	imageGen := NewHTTPImageGenerator(cfg, logger)

	pipeline := NewPipeline(cfg, selector, client, prompts, coercer, normalizer, imageGen, logger)

	return &Services{
		Registry: registry,
		Selector: selector,
		Client:   client,
		Prompts:  prompts,
		Coercer:  coercer,
		Pipeline: pipeline,
	}
}
