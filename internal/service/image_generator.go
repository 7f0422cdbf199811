package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/follmon10/memo-ai/internal/config"
	"github.com/follmon10/memo-ai/internal/llm"
)

// HTTPImageGenerator generates images through the providers'
// OpenAI-compatible images endpoint. Both OpenAI and Gemini's compatibility
// layer accept this format; providers without one return a classified error
// so the pipeline degrades cleanly.
type HTTPImageGenerator struct {
	cfg    *config.Config
	logger *slog.Logger
	client *http.Client
}

// NewHTTPImageGenerator creates a generator using the config's LLM timeout.
func NewHTTPImageGenerator(cfg *config.Config, logger *slog.Logger) *HTTPImageGenerator {
	return &HTTPImageGenerator{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: cfg.LLMTimeout},
	}
}

// Generate implements ImageGenerator. The result is a base64 PNG data URL.
func (g *HTTPImageGenerator) Generate(ctx context.Context, modelID, prompt string) (string, error) {
	provider, model := llm.SplitModelID(modelID)

	apiConfig := llm.GetProviderAPIConfig(provider)
	if apiConfig == nil || apiConfig.APIFormat != llm.APIFormatOpenAI {
		return "", fmt.Errorf("provider %s has no image generation endpoint", provider)
	}

	apiKey := g.cfg.APIKeyFor(provider)
	if apiKey == "" {
		return "", llm.ClassifyError(fmt.Errorf("no API key configured for provider %s", provider), provider, model, http.StatusUnauthorized)
	}

	body, err := json.Marshal(map[string]any{
		"model":           model,
		"prompt":          prompt,
		"n":               1,
		"response_format": "b64_json",
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := apiConfig.BaseURL + "/images/generations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	g.logger.Debug("generating image", "provider", provider, "model", model, "prompt_length", len(prompt))

	resp, err := g.client.Do(req)
	if err != nil {
		return "", llm.WrapError(err, provider, model)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", llm.ClassifyError(
			fmt.Errorf("API error (status %d): %s", resp.StatusCode, truncateForLog(string(respBody), 500)),
			provider, model, resp.StatusCode,
		)
	}

	var parsed struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].B64JSON == "" {
		return "", fmt.Errorf("empty image response")
	}

	return "data:image/png;base64," + parsed.Data[0].B64JSON, nil
}
