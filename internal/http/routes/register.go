package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/follmon10/memo-ai/internal/http/mw"
)

// Register registers all API routes with the given Huma API instance.
func Register(api huma.API, h *Handlers) {
	// Health check
	mw.PublicGet(api, "/api/v1/health", h.HealthCheck,
		mw.WithTags("Health"),
		mw.WithSummary("Health check"),
		mw.WithOperationID("healthCheck"))

	// Kubernetes probe (hidden from docs - internal use only)
	mw.HiddenGet(api, "/healthz", h.HealthCheck)

	// --- Pipeline ---
	mw.PublicPost(api, "/api/v1/analyze", h.Analyze.Analyze,
		mw.WithTags("Pipeline"),
		mw.WithSummary("Analyze text into schema properties"),
		mw.WithDescription("Runs the reconciliation pipeline: model selection, prompt construction, LLM call, JSON extraction, and schema coercion. Always returns a usable result; degraded runs carry a title-only fallback."),
		mw.WithOperationID("analyze"))
	mw.PublicPost(api, "/api/v1/chat", h.Chat.Chat,
		mw.WithTags("Pipeline"),
		mw.WithSummary("Chat with optional property capture"),
		mw.WithDescription("Multi-turn chat over the same pipeline. Schema-matching keys in the model output are promoted into properties; the reply message is always non-empty."),
		mw.WithOperationID("chat"))

	// --- Models ---
	mw.PublicGet(api, "/api/v1/models", h.Models.ListModels,
		mw.WithTags("Models"),
		mw.WithSummary("List known models"),
		mw.WithOperationID("listModels"))
	mw.PublicPost(api, "/api/v1/models/refresh", h.Models.RefreshModels,
		mw.WithTags("Models"),
		mw.WithSummary("Refresh the model registry"),
		mw.WithOperationID("refreshModels"))
}
