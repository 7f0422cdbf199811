package service

import (
	"fmt"
	"strings"

	"github.com/follmon10/memo-ai/internal/models"
)

// chatNeutralMessage is the placeholder used when the model produced no
// usable message and no hint to synthesize one from.
const chatNeutralMessage = "I've processed your request."

// ChatPayload is a normalized chat response: a guaranteed non-empty message
// and, when the model requested a save, coerced store properties.
type ChatPayload struct {
	Message     string
	Properties  map[string]models.CoercedProperty
	RawResponse string
}

// Normalizer post-processes chat-mode extractions. Its three transitions
// (message guarantee, property promotion, coercion) are each idempotent.
type Normalizer struct {
	coercer *Coercer
}

// NewNormalizer creates a normalizer sharing the pipeline's coercer.
func NewNormalizer(coercer *Coercer) *Normalizer {
	return &Normalizer{coercer: coercer}
}

// Normalize converts a parsed chat object into a ChatPayload. Models that
// flatten schema keys to the top level despite prompt instructions get those
// keys promoted into properties.
func (n *Normalizer) Normalize(parsed map[string]any, schema models.Schema) ChatPayload {
	payload := ChatPayload{}

	if raw, ok := parsed["raw_response"].(string); ok {
		payload.RawResponse = raw
	}

	props := propertiesOf(parsed)
	if props == nil {
		props = promoteSchemaKeys(parsed, schema)
	}

	payload.Message = messageOf(parsed, props, schema)

	if len(props) > 0 {
		payload.Properties = n.coercer.Coerce(props, schema)
	}
	return payload
}

// propertiesOf returns the nested properties map if the model emitted one.
func propertiesOf(parsed map[string]any) map[string]any {
	raw, ok := parsed["properties"]
	if !ok || raw == nil {
		return nil
	}
	if m, ok := raw.(map[string]any); ok {
		return m
	}
	return nil
}

// promoteSchemaKeys moves top-level keys that match schema property names
// into a new properties map, removing them from the top level.
func promoteSchemaKeys(parsed map[string]any, schema models.Schema) map[string]any {
	var props map[string]any
	for name := range schema {
		v, ok := parsed[name]
		if !ok {
			continue
		}
		if props == nil {
			props = make(map[string]any)
		}
		props[name] = v
		delete(parsed, name)
	}
	return props
}

// messageOf guarantees a non-empty message: the model's own message first,
// then one synthesized from a title hint, then a fixed neutral placeholder.
func messageOf(parsed map[string]any, props map[string]any, schema models.Schema) string {
	if msg, ok := parsed["message"].(string); ok {
		if trimmed := strings.TrimSpace(msg); trimmed != "" {
			return trimmed
		}
	}

	if key := schema.TitleKey(); key != "" && props != nil {
		if hint := models.ValueOf(props[key]).Text(); hint != "" {
			return fmt.Sprintf("Noted: %s", hint)
		}
	}

	return chatNeutralMessage
}
