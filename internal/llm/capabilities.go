package llm

import "strings"

// ModelCapabilities represents normalized capabilities across providers.
// Populated from discovery metadata when available and inferred from model
// name patterns otherwise.
type ModelCapabilities struct {
	SupportsVision          bool `json:"supports_vision"`
	SupportsJSON            bool `json:"supports_json"`
	SupportsImageGeneration bool `json:"supports_image_generation"`
}

// ModelDescriptor is the registry's record for one known model.
type ModelDescriptor struct {
	// ID is the provider-prefixed identifier, e.g. "gemini/gemini-2.5-flash".
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Provider     string            `json:"provider"`
	Capabilities ModelCapabilities `json:"capabilities"`
	Recommended  bool              `json:"recommended"`
	Description  string            `json:"description,omitempty"`
	// Pricing per 1K tokens in USD. Zero means unknown.
	InputCostPer1K  float64 `json:"input_cost_per_1k,omitempty"`
	OutputCostPer1K float64 `json:"output_cost_per_1k,omitempty"`
}

// SplitModelID splits a provider-prefixed model id into provider and bare
// model name. IDs without a prefix return an empty provider.
func SplitModelID(id string) (provider, model string) {
	if i := strings.Index(id, "/"); i >= 0 {
		return id[:i], id[i+1:]
	}
	return "", id
}

// NormalizeModelName strips the provider prefix for de-duplication between
// discovered and static catalog entries.
func NormalizeModelName(id string) string {
	_, model := SplitModelID(id)
	return strings.ToLower(model)
}

// Name patterns that mark a model as text-only regardless of provider claims.
var nonVisionPatterns = []string{"gemma", "embed", "aqa", "dall-e", "tts", "whisper", "davinci", "babbage"}

// InferCapabilities derives capability flags from a bare model name. Used
// when discovery metadata does not carry explicit capability fields.
func InferCapabilities(provider, model string) ModelCapabilities {
	lower := strings.ToLower(model)

	// Image generation models are a separate capability class: they do not
	// emit JSON and are not used for vision understanding.
	if strings.Contains(lower, "image") || strings.HasPrefix(lower, "dall-e") {
		return ModelCapabilities{SupportsImageGeneration: true}
	}

	caps := ModelCapabilities{SupportsVision: true, SupportsJSON: true}
	for _, p := range nonVisionPatterns {
		if strings.Contains(lower, p) {
			caps.SupportsVision = false
			break
		}
	}

	// Anthropic's messages API has no response_format parameter; JSON is
	// requested through prompt instructions only.
	if provider == ProviderAnthropic {
		caps.SupportsJSON = false
	}

	return caps
}
