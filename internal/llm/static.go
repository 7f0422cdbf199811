package llm

// staticCatalog is the fallback model list per provider, used when dynamic
// discovery fails or credentials allow no listing call. Pricing is per 1K
// tokens in USD and reflects published provider rates; it is an estimate
// surface, not a billing source.
var staticCatalog = map[string][]ModelDescriptor{
	ProviderGemini: {
		{
			ID:              "gemini/gemini-2.5-flash",
			Name:            "gemini-2.5-flash",
			Provider:        ProviderGemini,
			Capabilities:    ModelCapabilities{SupportsVision: true, SupportsJSON: true},
			Recommended:     true,
			Description:     "Fast general-purpose model",
			InputCostPer1K:  0.0003,
			OutputCostPer1K: 0.0025,
		},
		{
			ID:              "gemini/gemini-2.5-pro",
			Name:            "gemini-2.5-pro",
			Provider:        ProviderGemini,
			Capabilities:    ModelCapabilities{SupportsVision: true, SupportsJSON: true},
			Recommended:     true,
			Description:     "Highest-quality reasoning model",
			InputCostPer1K:  0.00125,
			OutputCostPer1K: 0.01,
		},
		{
			ID:              "gemini/gemini-2.5-flash-image",
			Name:            "gemini-2.5-flash-image",
			Provider:        ProviderGemini,
			Capabilities:    ModelCapabilities{SupportsImageGeneration: true},
			Recommended:     true,
			Description:     "Image generation",
			InputCostPer1K:  0.0003,
			OutputCostPer1K: 0.039,
		},
	},
	ProviderOpenAI: {
		{
			ID:              "openai/gpt-4o",
			Name:            "gpt-4o",
			Provider:        ProviderOpenAI,
			Capabilities:    ModelCapabilities{SupportsVision: true, SupportsJSON: true},
			Recommended:     true,
			Description:     "Flagship multimodal model",
			InputCostPer1K:  0.0025,
			OutputCostPer1K: 0.01,
		},
		{
			ID:              "openai/gpt-4o-mini",
			Name:            "gpt-4o-mini",
			Provider:        ProviderOpenAI,
			Capabilities:    ModelCapabilities{SupportsVision: true, SupportsJSON: true},
			Recommended:     true,
			Description:     "Low-cost multimodal model",
			InputCostPer1K:  0.00015,
			OutputCostPer1K: 0.0006,
		},
		{
			ID:              "openai/dall-e-3",
			Name:            "dall-e-3",
			Provider:        ProviderOpenAI,
			Capabilities:    ModelCapabilities{SupportsImageGeneration: true},
			Recommended:     true,
			Description:     "Image generation",
		},
		{
			ID:           "openai/dall-e-2",
			Name:         "dall-e-2",
			Provider:     ProviderOpenAI,
			Capabilities: ModelCapabilities{SupportsImageGeneration: true},
			Description:  "Image generation (legacy)",
		},
	},
	ProviderAnthropic: {
		{
			ID:              "anthropic/claude-sonnet-4-5",
			Name:            "claude-sonnet-4-5",
			Provider:        ProviderAnthropic,
			Capabilities:    ModelCapabilities{SupportsVision: true},
			Recommended:     true,
			Description:     "Balanced quality and speed",
			InputCostPer1K:  0.003,
			OutputCostPer1K: 0.015,
		},
		{
			ID:              "anthropic/claude-haiku-4-5",
			Name:            "claude-haiku-4-5",
			Provider:        ProviderAnthropic,
			Capabilities:    ModelCapabilities{SupportsVision: true},
			Recommended:     true,
			Description:     "Fast, low-cost model",
			InputCostPer1K:  0.001,
			OutputCostPer1K: 0.005,
		},
	},
}

// StaticModels returns a copy of the static fallback list for a provider.
func StaticModels(provider string) []ModelDescriptor {
	src := staticCatalog[provider]
	out := make([]ModelDescriptor, len(src))
	copy(out, src)
	return out
}
