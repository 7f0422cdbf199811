// Package models contains domain models and utility types.
package models

// PropertyType identifies the store-native type of a schema property.
type PropertyType string

// Supported property types. Anything else coming back from the store is
// treated as unknown and excluded from coercion.
const (
	PropertyTitle       PropertyType = "title"
	PropertyRichText    PropertyType = "rich_text"
	PropertySelect      PropertyType = "select"
	PropertyMultiSelect PropertyType = "multi_select"
	PropertyStatus      PropertyType = "status"
	PropertyDate        PropertyType = "date"
	PropertyCheckbox    PropertyType = "checkbox"
	PropertyNumber      PropertyType = "number"
	PropertyPeople      PropertyType = "people"
	PropertyFiles       PropertyType = "files"
)

// Valid reports whether the property type is one of the supported values.
func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTitle, PropertyRichText, PropertySelect, PropertyMultiSelect,
		PropertyStatus, PropertyDate, PropertyCheckbox, PropertyNumber,
		PropertyPeople, PropertyFiles:
		return true
	}
	return false
}

// PropertyDef describes one schema property.
type PropertyDef struct {
	Type    PropertyType `json:"type"`
	Options []string     `json:"options,omitempty"`
}

// Schema maps property names (case-sensitive, unique) to their definitions.
// Schemas come from the external store and are immutable for the duration of
// a pipeline run.
type Schema map[string]PropertyDef

// TitleKey returns the name of the first title-typed property, or "".
func (s Schema) TitleKey() string {
	for name, def := range s {
		if def.Type == PropertyTitle {
			return name
		}
	}
	return ""
}

// Message is a single chat turn sent to the LLM transport.
// ImageData, when set, is a data URL attached as a multimodal content part.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	ImageData string `json:"-"`
}

// TokenUsage holds token counts reported by the provider for one call.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Total returns the combined token count.
func (u TokenUsage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// ModelSelection records which model was requested vs. actually used, so
// callers can surface fallback transparency to the user.
type ModelSelection struct {
	Requested          string `json:"requested,omitempty"`
	Used               string `json:"used"`
	FellBack           bool   `json:"fallback_occurred"`
	CapabilityMismatch bool   `json:"capability_mismatch,omitempty"`
}

// PipelineResult is the output envelope of one analysis pipeline run. It is
// created once per invocation and never mutated after being returned.
// Degraded results still carry usable properties (at minimum a title).
type PipelineResult struct {
	Properties  map[string]CoercedProperty `json:"properties"`
	Message     string                     `json:"message,omitempty"`
	Usage       TokenUsage                 `json:"usage"`
	Cost        float64                    `json:"cost_usd"`
	Selection   ModelSelection             `json:"model_selection"`
	Degraded    bool                       `json:"degraded"`
	Recovered   bool                       `json:"recovered,omitempty"`
	ErrorDetail string                     `json:"error_detail,omitempty"`
}
