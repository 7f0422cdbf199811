package service

import (
	"encoding/json"
	"strings"
)

// ExtractMode selects the failure behavior of extraction. Analysis mode
// degrades to an empty object; chat mode degrades to a placeholder message
// carrying the raw response.
type ExtractMode int

const (
	ModeAnalysis ExtractMode = iota
	ModeChat
)

// chatExtractionFailureMessage is returned as the message when no stage can
// recover JSON from a chat response.
const chatExtractionFailureMessage = "Sorry, I could not process that response. Please try again."

// Extraction is the result of recovering a JSON object from raw LLM text.
// Recovered is true when any stage beyond the direct parse succeeded.
type Extraction struct {
	Object    map[string]any
	Recovered bool
}

// extractStage is one pure recovery attempt. Stages are tried in order until
// one returns ok.
type extractStage func(raw string, mode ExtractMode) (map[string]any, bool)

var extractStages = []extractStage{
	stageDirectParse,
	stageBraceSubstring,
	stageSyntheticBraces,
}

// Extract recovers a JSON object from raw LLM output. It never fails: total
// failure resolves to an empty object (analysis) or a placeholder payload
// (chat).
func Extract(raw string, mode ExtractMode) Extraction {
	for i, stage := range extractStages {
		if obj, ok := stage(raw, mode); ok {
			return Extraction{Object: obj, Recovered: i > 0}
		}
	}

	if mode == ModeChat {
		return Extraction{
			Object: map[string]any{
				"message":      chatExtractionFailureMessage,
				"raw_response": raw,
			},
			Recovered: true,
		}
	}
	return Extraction{Object: map[string]any{}, Recovered: true}
}

// stageDirectParse strips a surrounding fenced code block and parses the
// remainder directly.
func stageDirectParse(raw string, mode ExtractMode) (map[string]any, bool) {
	return parseCandidate(stripFences(raw), mode)
}

// stageBraceSubstring parses the substring between the first "{" and the
// last "}", recovering JSON surrounded by prose commentary.
func stageBraceSubstring(raw string, mode ExtractMode) (map[string]any, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	return parseCandidate(raw[start:end+1], mode)
}

// stageSyntheticBraces wraps the raw text in braces, recovering a bare
// "key": "value" fragment missing its envelope. Chat mode only.
func stageSyntheticBraces(raw string, mode ExtractMode) (map[string]any, bool) {
	if mode != ModeChat {
		return nil, false
	}
	candidate := "{" + strings.TrimSpace(stripFences(raw)) + "}"
	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// parseCandidate parses a candidate string and normalizes non-object JSON
// values: a bare string becomes a message payload in chat mode, an array
// yields its first object element.
func parseCandidate(candidate string, mode ExtractMode) (map[string]any, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return nil, false
	}

	var v any
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return nil, false
	}

	switch t := v.(type) {
	case map[string]any:
		return t, true
	case string:
		if mode == ModeChat && t != "" {
			return map[string]any{"message": t}, true
		}
		return nil, false
	case []any:
		for _, item := range t {
			if obj, ok := item.(map[string]any); ok {
				return obj, true
			}
		}
		return nil, false
	default:
		return nil, false
	}
}

// stripFences removes a surrounding markdown code fence, language-tagged or
// bare, and trims whitespace.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = s[3:]
	// Drop an optional language tag on the opening fence line.
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		firstLine := strings.TrimSpace(s[:nl])
		if firstLine == "" || isLanguageTag(firstLine) {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func isLanguageTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return len(s) > 0
}
