// Package llm provides the model capability registry, selection logic, and
// provider error handling.
package llm

// Provider name constants. These are the canonical keys used in
// provider-prefixed model ids ("gemini/gemini-2.5-flash").
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// APIFormat identifies the request/response wire format a provider speaks.
type APIFormat string

const (
	// APIFormatOpenAI is the chat-completions format. Gemini exposes an
	// OpenAI-compatible endpoint, so both gemini and openai use this.
	APIFormatOpenAI APIFormat = "openai"
	// APIFormatAnthropic is the Anthropic messages format.
	APIFormatAnthropic APIFormat = "anthropic"
)

// AuthType identifies how the API key is presented.
type AuthType string

const (
	AuthTypeBearer AuthType = "bearer"
	AuthTypeAPIKey AuthType = "api_key"
)

// ProviderAPIConfig describes how to talk to one provider.
type ProviderAPIConfig struct {
	BaseURL      string
	ChatEndpoint string
	APIFormat    APIFormat
	AuthType     AuthType
	AuthHeader   string
	ExtraHeaders map[string]string
}

// AnthropicVersion is the required anthropic-version header value.
const AnthropicVersion = "2023-06-01"

// providerAPIConfigs holds the static transport configuration per provider.
var providerAPIConfigs = map[string]*ProviderAPIConfig{
	ProviderGemini: {
		BaseURL:      "https://generativelanguage.googleapis.com/v1beta/openai",
		ChatEndpoint: "/chat/completions",
		APIFormat:    APIFormatOpenAI,
		AuthType:     AuthTypeBearer,
	},
	ProviderOpenAI: {
		BaseURL:      "https://api.openai.com/v1",
		ChatEndpoint: "/chat/completions",
		APIFormat:    APIFormatOpenAI,
		AuthType:     AuthTypeBearer,
	},
	ProviderAnthropic: {
		BaseURL:      "https://api.anthropic.com/v1",
		ChatEndpoint: "/messages",
		APIFormat:    APIFormatAnthropic,
		AuthType:     AuthTypeAPIKey,
		AuthHeader:   "x-api-key",
		ExtraHeaders: map[string]string{"anthropic-version": AnthropicVersion},
	},
}

// GetProviderAPIConfig returns the transport configuration for a provider,
// or nil for unknown providers.
func GetProviderAPIConfig(provider string) *ProviderAPIConfig {
	return providerAPIConfigs[provider]
}

// AllProviders returns the known provider names in a fixed order.
func AllProviders() []string {
	return []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic}
}

// IsValidProvider returns true if the provider name is known.
func IsValidProvider(provider string) bool {
	_, ok := providerAPIConfigs[provider]
	return ok
}

// Known-good stable models used to seed automatic selection chains. The
// configured default model is always consulted first; these follow in fixed
// priority order.
var (
	stableTextModels     = []string{"gemini/gemini-2.5-flash", "openai/gpt-4o-mini"}
	stableVisionModels   = []string{"gemini/gemini-2.5-flash", "openai/gpt-4o-mini"}
	stableImageGenModels = []string{"gemini/gemini-2.5-flash-image", "openai/dall-e-3", "openai/dall-e-2"}
)

// recommendedModels is the curated whitelist surfaced to users by default.
// Discovery can return dozens of experimental snapshots per provider;
// listings filter to these unless the caller asks for everything.
var recommendedModels = map[string]bool{
	"gemini/gemini-2.5-flash":       true,
	"gemini/gemini-2.5-pro":         true,
	"gemini/gemini-2.5-flash-image": true,
	"openai/gpt-4o":                 true,
	"openai/gpt-4o-mini":            true,
	"openai/gpt-4.1":                true,
	"openai/gpt-4.1-mini":           true,
	"openai/dall-e-3":               true,
	"anthropic/claude-sonnet-4-5":   true,
	"anthropic/claude-haiku-4-5":    true,
}

// IsRecommended reports whether a model id is on the curated whitelist.
func IsRecommended(id string) bool {
	return recommendedModels[id]
}
