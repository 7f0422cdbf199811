package service

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/follmon10/memo-ai/internal/models"
)

// Coercer maps extracted JSON values onto store-native property
// representations. Coercion is total: a value that cannot be cast is dropped
// from the output, never an error.
type Coercer struct {
	logger *slog.Logger
}

// NewCoercer creates a coercer. Drops are logged at debug level only.
func NewCoercer(logger *slog.Logger) *Coercer {
	return &Coercer{logger: logger}
}

// Coerce converts each schema-known key of the extracted object into a
// CoercedProperty. Output keys are always a subset of the schema's keys.
func (c *Coercer) Coerce(extracted map[string]any, schema models.Schema) map[string]models.CoercedProperty {
	out := make(map[string]models.CoercedProperty)
	for name, raw := range extracted {
		def, ok := schema[name]
		if !ok {
			c.drop(name, "not in schema")
			continue
		}
		prop, ok := c.coerceValue(models.ValueOf(raw), def)
		if !ok {
			c.drop(name, "cast failed for type "+string(def.Type))
			continue
		}
		out[name] = prop
	}
	return out
}

func (c *Coercer) coerceValue(v models.ExtractedValue, def models.PropertyDef) (models.CoercedProperty, bool) {
	switch def.Type {
	case models.PropertySelect:
		if name, ok := optionName(v); ok {
			return models.SelectProperty(name), true
		}

	case models.PropertyStatus:
		if name, ok := optionName(v); ok {
			return models.StatusProperty(name), true
		}

	case models.PropertyMultiSelect:
		items, ok := v.AsList()
		if !ok {
			// A scalar becomes a single-element list.
			items = []models.ExtractedValue{v}
		}
		var names []string
		for _, item := range items {
			if name, ok := optionName(item); ok {
				names = append(names, name)
			}
		}
		// An empty list is still emitted: it clears the property in the store.
		return models.MultiSelectProperty(names), true

	case models.PropertyDate:
		if start, ok := dateStart(v); ok {
			return models.DateProperty(start), true
		}

	case models.PropertyCheckbox:
		return models.CheckboxProperty(v.Truthy()), true

	case models.PropertyNumber:
		if n, ok := numberOf(v); ok {
			return models.NumberProperty(n), true
		}

	case models.PropertyTitle:
		if text := v.Text(); text != "" {
			return models.TitleProperty(text), true
		}

	case models.PropertyRichText:
		if text := v.Text(); text != "" {
			return models.RichTextProperty(text), true
		}

	case models.PropertyPeople, models.PropertyFiles:
		// Unsupported by the coercer, dropped without error.
	}

	return models.CoercedProperty{}, false
}

// optionName unwraps a {name: ...} object or scalar into a non-empty option
// name.
func optionName(v models.ExtractedValue) (string, bool) {
	if inner, ok := v.Field("name"); ok {
		v = inner
	}
	switch v.Kind() {
	case models.ValueString, models.ValueNumber:
		if s := strings.TrimSpace(v.Text()); s != "" {
			return s, true
		}
	}
	return "", false
}

// dateStart unwraps a {start: ...} object or string into a non-empty date
// string.
func dateStart(v models.ExtractedValue) (string, bool) {
	if inner, ok := v.Field("start"); ok {
		v = inner
	}
	if s, ok := v.AsString(); ok && strings.TrimSpace(s) != "" {
		return s, true
	}
	return "", false
}

func numberOf(v models.ExtractedValue) (float64, bool) {
	if n, ok := v.AsNumber(); ok {
		return n, true
	}
	if s, ok := v.AsString(); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func (c *Coercer) drop(key, reason string) {
	if c.logger != nil {
		c.logger.Debug("coercion dropped key", "key", key, "reason", reason)
	}
}

// maxFallbackTitleLength bounds titles synthesized from raw input text.
const maxFallbackTitleLength = 100

// EnsureTitle guarantees the schema's title property is populated, deriving
// one from the first line of the raw input when missing. A record without a
// title is useless in the store UI.
func EnsureTitle(props map[string]models.CoercedProperty, schema models.Schema, rawText string) {
	key := schema.TitleKey()
	if key == "" {
		return
	}
	if _, ok := props[key]; ok {
		return
	}
	props[key] = models.TitleProperty(FallbackTitle(rawText))
}

// FallbackTitle derives a short title from raw input text: the first
// non-empty line, truncated at a rune boundary.
func FallbackTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		runes := []rune(line)
		if len(runes) > maxFallbackTitleLength {
			return string(runes[:maxFallbackTitleLength])
		}
		return line
	}
	return "Untitled"
}
