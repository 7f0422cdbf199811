package handlers

import (
	"context"
	"log/slog"

	"github.com/follmon10/memo-ai/internal/llm"
)

// ModelsHandler exposes the capability registry.
type ModelsHandler struct {
	registry *llm.Registry
	logger   *slog.Logger
}

// NewModelsHandler creates a new models handler.
func NewModelsHandler(registry *llm.Registry, logger *slog.Logger) *ModelsHandler {
	return &ModelsHandler{registry: registry, logger: logger}
}

// ListModelsInput represents a model listing request.
type ListModelsInput struct {
	All bool `query:"all" doc:"Include every discovered model instead of only the recommended set"`
}

// ListModelsOutput represents a model listing response.
type ListModelsOutput struct {
	Body ListModelsBody
}

// ListModelsBody carries the model list and provider diagnostics.
type ListModelsBody struct {
	Models         []llm.ModelDescriptor `json:"models" doc:"Known models, sorted by provider then name"`
	ProviderErrors map[string]string     `json:"provider_errors,omitempty" doc:"Discovery failure reasons per provider"`
}

// ListModels returns the registry contents. By default only the curated
// recommended set is returned; discovery surfaces dozens of experimental
// snapshots that most clients don't want.
func (h *ModelsHandler) ListModels(ctx context.Context, input *ListModelsInput) (*ListModelsOutput, error) {
	all := h.registry.Models(ctx)

	out := make([]llm.ModelDescriptor, 0, len(all))
	for _, m := range all {
		if input.All || m.Recommended {
			out = append(out, m)
		}
	}

	return &ListModelsOutput{Body: ListModelsBody{
		Models:         out,
		ProviderErrors: h.registry.ProviderErrors(),
	}}, nil
}

// RefreshModelsOutput represents a cache refresh response.
type RefreshModelsOutput struct {
	Body struct {
		Models int `json:"models" doc:"Number of models after refresh"`
	}
}

// RefreshModels invalidates the registry cache and rebuilds it immediately.
func (h *ModelsHandler) RefreshModels(ctx context.Context, input *struct{}) (*RefreshModelsOutput, error) {
	h.registry.Invalidate()
	n := len(h.registry.Models(ctx))

	h.logger.Info("model registry refreshed", "models", n)

	out := &RefreshModelsOutput{}
	out.Body.Models = n
	return out, nil
}
