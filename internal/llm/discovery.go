package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Discoverer lists the currently available models for one provider.
// Implementations make a single authenticated listing call; failures are
// contained by the registry, which falls back to the static catalog.
type Discoverer interface {
	Provider() string
	ListModels(ctx context.Context) ([]ModelDescriptor, error)
}

const discoveryTimeout = 10 * time.Second

// GeminiDiscoverer lists models from the Gemini API.
type GeminiDiscoverer struct {
	APIKey  string
	BaseURL string // override for tests
	Client  *http.Client
}

// Provider implements Discoverer.
func (d *GeminiDiscoverer) Provider() string { return ProviderGemini }

// ListModels fetches the model catalog and keeps entries that support
// content generation.
func (d *GeminiDiscoverer) ListModels(ctx context.Context) ([]ModelDescriptor, error) {
	baseURL := d.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", d.APIKey)

	body, err := doDiscoveryRequest(d.Client, req)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Models []struct {
			Name                       string   `json:"name"` // "models/gemini-2.5-flash"
			DisplayName                string   `json:"displayName"`
			Description                string   `json:"description"`
			SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
		} `json:"models"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse model list: %w", err)
	}

	var models []ModelDescriptor
	for _, m := range resp.Models {
		supported := false
		for _, method := range m.SupportedGenerationMethods {
			if method == "generateContent" || method == "predict" {
				supported = true
				break
			}
		}
		if !supported {
			continue
		}

		name := strings.TrimPrefix(m.Name, "models/")
		id := ProviderGemini + "/" + name
		models = append(models, ModelDescriptor{
			ID:           id,
			Name:         name,
			Provider:     ProviderGemini,
			Capabilities: InferCapabilities(ProviderGemini, name),
			Recommended:  IsRecommended(id),
			Description:  m.Description,
		})
	}

	return models, nil
}

// OpenAIDiscoverer lists models from the OpenAI API.
type OpenAIDiscoverer struct {
	APIKey  string
	BaseURL string // override for tests
	Client  *http.Client
}

// Provider implements Discoverer.
func (d *OpenAIDiscoverer) Provider() string { return ProviderOpenAI }

// openaiChatPrefixes mark ids usable through the chat or image endpoints.
// The listing endpoint also returns embeddings, audio, and moderation
// models, which are filtered out.
var openaiChatPrefixes = []string{"gpt-", "o1", "o3", "o4", "chatgpt-", "dall-e"}

// ListModels fetches the model catalog, keeping chat and image models.
func (d *OpenAIDiscoverer) ListModels(ctx context.Context) ([]ModelDescriptor, error) {
	baseURL := d.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+d.APIKey)

	body, err := doDiscoveryRequest(d.Client, req)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse model list: %w", err)
	}

	var models []ModelDescriptor
	for _, m := range resp.Data {
		lower := strings.ToLower(m.ID)
		usable := false
		for _, prefix := range openaiChatPrefixes {
			if strings.HasPrefix(lower, prefix) {
				usable = true
				break
			}
		}
		if !usable || strings.Contains(lower, "audio") || strings.Contains(lower, "realtime") || strings.Contains(lower, "transcribe") {
			continue
		}

		id := ProviderOpenAI + "/" + m.ID
		models = append(models, ModelDescriptor{
			ID:           id,
			Name:         m.ID,
			Provider:     ProviderOpenAI,
			Capabilities: InferCapabilities(ProviderOpenAI, m.ID),
			Recommended:  IsRecommended(id),
		})
	}

	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models, nil
}

func doDiscoveryRequest(client *http.Client, req *http.Request) ([]byte, error) {
	if client == nil {
		client = &http.Client{Timeout: discoveryTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
