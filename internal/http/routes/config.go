package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/follmon10/memo-ai/internal/version"
)

// NewHumaConfig creates the shared Huma configuration for the API.
func NewHumaConfig(baseURL string) huma.Config {
	cfg := huma.DefaultConfig("Memo AI API", version.Get().Short())
	cfg.Info.Description = "Reconciliation pipeline that turns free-form text and chat into typed document-store properties via LLM backends."

	// Disable $schema field in responses - it conflicts with "schema" field in SDK code generators
	cfg.CreateHooks = nil

	if baseURL != "" {
		cfg.Servers = []*huma.Server{
			{URL: baseURL, Description: "API Server"},
		}
	}

	cfg.Tags = []*huma.Tag{
		{Name: "Pipeline", Description: "Text analysis and chat reconciliation endpoints", Extensions: map[string]any{"x-displayName": "Pipeline"}},
		{Name: "Models", Description: "Available LLM models and registry control", Extensions: map[string]any{"x-displayName": "Models"}},
		{Name: "Health", Description: "System health and status", Extensions: map[string]any{"x-displayName": "Health"}},
	}

	return cfg
}
