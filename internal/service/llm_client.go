package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/follmon10/memo-ai/internal/config"
	"github.com/follmon10/memo-ai/internal/llm"
	"github.com/follmon10/memo-ai/internal/models"
)

// CallResult holds the outcome of one LLM call including token usage and the
// estimated cost in USD.
type CallResult struct {
	Content      string
	Usage        models.TokenUsage
	Cost         float64
	FinishReason string
}

// Transport sends a message list to a named model and returns its text
// response. The orchestrator consumes this interface so tests can substitute
// a fake.
type Transport interface {
	Send(ctx context.Context, modelID string, messages []models.Message, jsonMode bool) (*CallResult, error)
}

// LLMClient is the HTTP transport for LLM providers. Gemini is reached
// through its OpenAI-compatible endpoint, so only two wire formats exist:
// chat-completions and Anthropic messages.
type LLMClient struct {
	cfg      *config.Config
	registry *llm.Registry
	logger   *slog.Logger
	client   *http.Client
}

// NewLLMClient creates a transport client. The registry supplies per-model
// capability and pricing metadata.
func NewLLMClient(cfg *config.Config, registry *llm.Registry, logger *slog.Logger) *LLMClient {
	return &LLMClient{
		cfg:      cfg,
		registry: registry,
		logger:   logger,
		client:   &http.Client{Timeout: cfg.LLMTimeout},
	}
}

// Send implements Transport. modelID is provider-prefixed
// ("gemini/gemini-2.5-flash"). jsonMode requests structured output where the
// provider supports it; elsewhere the prompt instructions carry the contract.
func (c *LLMClient) Send(ctx context.Context, modelID string, messages []models.Message, jsonMode bool) (*CallResult, error) {
	provider, model := llm.SplitModelID(modelID)

	apiConfig := llm.GetProviderAPIConfig(provider)
	if apiConfig == nil {
		return nil, fmt.Errorf("unknown provider %q", provider)
	}

	apiKey := c.cfg.APIKeyFor(provider)
	if apiKey == "" {
		return nil, llm.ClassifyError(fmt.Errorf("no API key configured for provider %s", provider), provider, model, http.StatusUnauthorized)
	}

	var (
		body []byte
		err  error
	)
	switch apiConfig.APIFormat {
	case llm.APIFormatAnthropic:
		body, err = buildAnthropicRequest(model, messages)
	default:
		body, err = buildOpenAIRequest(model, messages, jsonMode && c.supportsJSON(ctx, modelID))
	}
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := apiConfig.BaseURL + apiConfig.ChatEndpoint

	c.logger.Debug("sending LLM request",
		"provider", provider,
		"model", model,
		"messages", len(messages),
		"json_mode", jsonMode,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuthHeaders(req, apiConfig, apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, llm.WrapError(err, provider, model)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("LLM API error",
			"provider", provider,
			"model", model,
			"status_code", resp.StatusCode,
		)
		return nil, llm.ClassifyError(
			fmt.Errorf("API error (status %d): %s", resp.StatusCode, truncateForLog(string(respBody), 500)),
			provider, model, resp.StatusCode,
		)
	}

	var result *CallResult
	switch apiConfig.APIFormat {
	case llm.APIFormatAnthropic:
		result, err = parseAnthropicResponse(respBody)
	default:
		result, err = parseOpenAIResponse(respBody)
	}
	if err != nil {
		return nil, llm.WrapError(err, provider, model)
	}

	if m, ok := c.registry.Get(ctx, modelID); ok {
		result.Cost = llm.EstimateCost(m, result.Usage.InputTokens, result.Usage.OutputTokens)
	}

	c.logger.Debug("LLM response received",
		"provider", provider,
		"model", model,
		"input_tokens", result.Usage.InputTokens,
		"output_tokens", result.Usage.OutputTokens,
		"finish_reason", result.FinishReason,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if result.FinishReason == "length" {
		c.logger.Warn("LLM output truncated at token limit",
			"provider", provider,
			"model", model,
			"output_tokens", result.Usage.OutputTokens,
		)
	}

	return result, nil
}

func (c *LLMClient) supportsJSON(ctx context.Context, modelID string) bool {
	m, ok := c.registry.Get(ctx, modelID)
	return ok && m.Capabilities.SupportsJSON
}

func (c *LLMClient) setAuthHeaders(req *http.Request, apiConfig *llm.ProviderAPIConfig, apiKey string) {
	switch apiConfig.AuthType {
	case llm.AuthTypeAPIKey:
		header := apiConfig.AuthHeader
		if header == "" {
			header = "x-api-key"
		}
		req.Header.Set(header, apiKey)
	default:
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for k, v := range apiConfig.ExtraHeaders {
		req.Header.Set(k, v)
	}
}

const defaultMaxTokens = 4096

// buildOpenAIRequest builds a chat-completions request body. Messages with
// image data become multimodal content-part arrays.
func buildOpenAIRequest(model string, messages []models.Message, jsonMode bool) ([]byte, error) {
	msgs := make([]map[string]any, 0, len(messages))
	for _, m := range messages {
		if m.ImageData != "" {
			msgs = append(msgs, map[string]any{
				"role": m.Role,
				"content": []map[string]any{
					{"type": "text", "text": m.Content},
					{"type": "image_url", "image_url": map[string]string{"url": m.ImageData}},
				},
			})
			continue
		}
		msgs = append(msgs, map[string]any{"role": m.Role, "content": m.Content})
	}

	body := map[string]any{
		"model":       model,
		"messages":    msgs,
		"temperature": 0.2,
		"max_tokens":  defaultMaxTokens,
	}
	if jsonMode {
		body["response_format"] = map[string]string{"type": "json_object"}
	}
	return json.Marshal(body)
}

// buildAnthropicRequest builds a messages-API request body. System messages
// move into the top-level system field; image data URLs become base64 source
// blocks.
func buildAnthropicRequest(model string, messages []models.Message) ([]byte, error) {
	var system string
	msgs := make([]map[string]any, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		if m.ImageData != "" {
			mediaType, data, ok := splitDataURL(m.ImageData)
			if !ok {
				return nil, fmt.Errorf("image data is not a base64 data URL")
			}
			msgs = append(msgs, map[string]any{
				"role": m.Role,
				"content": []map[string]any{
					{"type": "image", "source": map[string]string{
						"type":       "base64",
						"media_type": mediaType,
						"data":       data,
					}},
					{"type": "text", "text": m.Content},
				},
			})
			continue
		}
		msgs = append(msgs, map[string]any{"role": m.Role, "content": m.Content})
	}

	body := map[string]any{
		"model":      model,
		"messages":   msgs,
		"max_tokens": defaultMaxTokens,
	}
	if system != "" {
		body["system"] = system
	}
	return json.Marshal(body)
}

// splitDataURL splits "data:image/png;base64,AAAA" into media type and
// payload.
func splitDataURL(u string) (mediaType, data string, ok bool) {
	if !strings.HasPrefix(u, "data:") {
		return "", "", false
	}
	rest := u[len("data:"):]
	comma := strings.Index(rest, ",")
	if comma < 0 {
		return "", "", false
	}
	meta := rest[:comma]
	if !strings.HasSuffix(meta, ";base64") {
		return "", "", false
	}
	return strings.TrimSuffix(meta, ";base64"), rest[comma+1:], true
}

// parseOpenAIResponse parses a chat-completions response. Token counts use
// FlexInt because some gateways report usage as strings.
func parseOpenAIResponse(body []byte) (*CallResult, error) {
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     models.FlexInt `json:"prompt_tokens"`
			CompletionTokens models.FlexInt `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from LLM")
	}

	return &CallResult{
		Content: resp.Choices[0].Message.Content,
		Usage: models.TokenUsage{
			InputTokens:  resp.Usage.PromptTokens.Int(),
			OutputTokens: resp.Usage.CompletionTokens.Int(),
		},
		FinishReason: resp.Choices[0].FinishReason,
	}, nil
}

// parseAnthropicResponse parses a messages-API response and normalizes
// stop_reason to chat-completions finish_reason values.
func parseAnthropicResponse(body []byte) (*CallResult, error) {
	var resp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		StopReason string `json:"stop_reason"`
		Usage      struct {
			InputTokens  models.FlexInt `json:"input_tokens"`
			OutputTokens models.FlexInt `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" || block.Type == "" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("empty response from LLM")
	}

	result := &CallResult{
		Content: text.String(),
		Usage: models.TokenUsage{
			InputTokens:  resp.Usage.InputTokens.Int(),
			OutputTokens: resp.Usage.OutputTokens.Int(),
		},
	}

	switch resp.StopReason {
	case "max_tokens":
		result.FinishReason = "length"
	case "end_turn", "stop_sequence":
		result.FinishReason = "stop"
	default:
		result.FinishReason = resp.StopReason
	}
	return result, nil
}

func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
