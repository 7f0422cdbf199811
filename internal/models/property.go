package models

import (
	"encoding/json"
	"fmt"
)

// maxTextSpanLength is the store's per-span character limit for rich text
// content. Longer strings are split across multiple spans.
const maxTextSpanLength = 2000

// TextSpan is one rich-text segment in store-native form.
type TextSpan struct {
	Text struct {
		Content string `json:"content"`
	} `json:"text"`
}

// NewTextSpan builds a single span.
func NewTextSpan(content string) TextSpan {
	var s TextSpan
	s.Text.Content = content
	return s
}

// ChunkText splits a string into store-sized text spans. An empty string
// yields a single empty span so the property is still writable.
func ChunkText(s string) []TextSpan {
	if len(s) <= maxTextSpanLength {
		return []TextSpan{NewTextSpan(s)}
	}
	var spans []TextSpan
	runes := []rune(s)
	for len(runes) > 0 {
		n := maxTextSpanLength
		if n > len(runes) {
			n = len(runes)
		}
		spans = append(spans, NewTextSpan(string(runes[:n])))
		runes = runes[n:]
	}
	return spans
}

// SelectOption is a named option in store-native form.
type SelectOption struct {
	Name string `json:"name"`
}

// DateValue is a date range in store-native form. Only Start is produced by
// coercion; End survives round-trips from the store.
type DateValue struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// CoercedProperty is the store-native representation of one coerced value.
// It is a tagged union keyed by Type: exactly one payload field is set, and
// MarshalJSON emits the store's wire shape for that type.
type CoercedProperty struct {
	Type PropertyType

	Title       []TextSpan
	RichText    []TextSpan
	Select      *SelectOption
	MultiSelect []SelectOption
	Status      *SelectOption
	Date        *DateValue
	Checkbox    *bool
	Number      *float64
}

// TitleProperty builds a title property, chunking long content.
func TitleProperty(text string) CoercedProperty {
	return CoercedProperty{Type: PropertyTitle, Title: ChunkText(text)}
}

// RichTextProperty builds a rich_text property, chunking long content.
func RichTextProperty(text string) CoercedProperty {
	return CoercedProperty{Type: PropertyRichText, RichText: ChunkText(text)}
}

// SelectProperty builds a select property.
func SelectProperty(name string) CoercedProperty {
	return CoercedProperty{Type: PropertySelect, Select: &SelectOption{Name: name}}
}

// MultiSelectProperty builds a multi_select property.
func MultiSelectProperty(names []string) CoercedProperty {
	opts := make([]SelectOption, 0, len(names))
	for _, n := range names {
		opts = append(opts, SelectOption{Name: n})
	}
	return CoercedProperty{Type: PropertyMultiSelect, MultiSelect: opts}
}

// StatusProperty builds a status property.
func StatusProperty(name string) CoercedProperty {
	return CoercedProperty{Type: PropertyStatus, Status: &SelectOption{Name: name}}
}

// DateProperty builds a date property from a start string.
func DateProperty(start string) CoercedProperty {
	return CoercedProperty{Type: PropertyDate, Date: &DateValue{Start: start}}
}

// CheckboxProperty builds a checkbox property.
func CheckboxProperty(checked bool) CoercedProperty {
	return CoercedProperty{Type: PropertyCheckbox, Checkbox: &checked}
}

// NumberProperty builds a number property.
func NumberProperty(n float64) CoercedProperty {
	return CoercedProperty{Type: PropertyNumber, Number: &n}
}

// MarshalJSON emits the store-native wire shape for the property's type,
// e.g. {"select":{"name":"Work"}} or {"title":[{"text":{"content":"..."}}]}.
func (p CoercedProperty) MarshalJSON() ([]byte, error) {
	switch p.Type {
	case PropertyTitle:
		return json.Marshal(map[string]any{"title": p.Title})
	case PropertyRichText:
		return json.Marshal(map[string]any{"rich_text": p.RichText})
	case PropertySelect:
		return json.Marshal(map[string]any{"select": p.Select})
	case PropertyMultiSelect:
		return json.Marshal(map[string]any{"multi_select": p.MultiSelect})
	case PropertyStatus:
		return json.Marshal(map[string]any{"status": p.Status})
	case PropertyDate:
		return json.Marshal(map[string]any{"date": p.Date})
	case PropertyCheckbox:
		return json.Marshal(map[string]any{"checkbox": p.Checkbox})
	case PropertyNumber:
		return json.Marshal(map[string]any{"number": p.Number})
	default:
		return nil, fmt.Errorf("unsupported property type %q", p.Type)
	}
}

// Simplified returns the flat value used for few-shot rendering: the inverse
// of coercion. ok is false when the property has no renderable value.
func (p CoercedProperty) Simplified() (any, bool) {
	switch p.Type {
	case PropertyTitle:
		return joinSpans(p.Title), true
	case PropertyRichText:
		return joinSpans(p.RichText), true
	case PropertySelect:
		if p.Select == nil {
			return nil, false
		}
		return p.Select.Name, true
	case PropertyMultiSelect:
		names := make([]string, 0, len(p.MultiSelect))
		for _, opt := range p.MultiSelect {
			names = append(names, opt.Name)
		}
		return names, true
	case PropertyStatus:
		if p.Status == nil {
			return nil, false
		}
		return p.Status.Name, true
	case PropertyDate:
		if p.Date == nil {
			return nil, false
		}
		return p.Date.Start, true
	case PropertyCheckbox:
		if p.Checkbox == nil {
			return nil, false
		}
		return *p.Checkbox, true
	case PropertyNumber:
		if p.Number == nil {
			return nil, false
		}
		return *p.Number, true
	}
	return nil, false
}

func joinSpans(spans []TextSpan) string {
	var out string
	for _, s := range spans {
		out += s.Text.Content
	}
	return out
}

// SimplifyStoreProperty reduces a raw store-native property payload (as
// returned by the store API for an existing record) to the flat value shown
// in few-shot examples. ok is false when the payload does not carry a value
// for the declared type.
func SimplifyStoreProperty(def PropertyDef, raw any) (any, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		// Callers sometimes hand in already-flat example values.
		if raw == nil {
			return nil, false
		}
		return raw, true
	}

	switch def.Type {
	case PropertyTitle, PropertyRichText:
		spans, _ := obj[string(def.Type)].([]any)
		var text string
		for _, s := range spans {
			if span, ok := s.(map[string]any); ok {
				if inner, ok := span["text"].(map[string]any); ok {
					if content, ok := inner["content"].(string); ok {
						text += content
					}
				}
				// Store responses also carry a flattened plain_text field.
				if pt, ok := span["plain_text"].(string); ok && text == "" {
					text += pt
				}
			}
		}
		return text, text != ""
	case PropertySelect, PropertyStatus:
		if sel, ok := obj[string(def.Type)].(map[string]any); ok {
			if name, ok := sel["name"].(string); ok && name != "" {
				return name, true
			}
		}
	case PropertyMultiSelect:
		opts, _ := obj["multi_select"].([]any)
		var names []string
		for _, o := range opts {
			if opt, ok := o.(map[string]any); ok {
				if name, ok := opt["name"].(string); ok && name != "" {
					names = append(names, name)
				}
			}
		}
		if len(names) > 0 {
			return names, true
		}
	case PropertyDate:
		if d, ok := obj["date"].(map[string]any); ok {
			if start, ok := d["start"].(string); ok && start != "" {
				return start, true
			}
		}
	case PropertyCheckbox:
		if b, ok := obj["checkbox"].(bool); ok {
			return b, true
		}
	case PropertyNumber:
		if n, ok := obj["number"].(float64); ok {
			return n, true
		}
	}
	return nil, false
}
