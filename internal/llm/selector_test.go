package llm

import (
	"context"
	"errors"
	"testing"
)

func newTestSelector(t *testing.T, mutate func(*fakeDiscoverer)) *Selector {
	t.Helper()
	cfg := testConfig()
	disc := &fakeDiscoverer{provider: ProviderGemini}
	if mutate != nil {
		mutate(disc)
	}
	r := NewRegistryWithDiscoverers(cfg, nil, []Discoverer{disc})
	return NewSelector(r, cfg, nil)
}

func TestSelector_ExplicitChoiceHonored(t *testing.T) {
	s := newTestSelector(t, nil)

	sel, err := s.Select(context.Background(), InputText, "openai/gpt-4o-mini")
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if sel.ModelID != "openai/gpt-4o-mini" {
		t.Errorf("ModelID = %q, want explicit choice", sel.ModelID)
	}
	if sel.FellBack {
		t.Error("FellBack = true for a valid explicit choice")
	}
	if sel.CapabilityMismatch {
		t.Error("unexpected capability mismatch")
	}
}

func TestSelector_ExplicitChoiceCapabilityMismatchStillHonored(t *testing.T) {
	s := newTestSelector(t, nil)

	// dall-e-3 cannot do text chat, but explicit intent wins.
	sel, err := s.Select(context.Background(), InputText, "openai/dall-e-3")
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if sel.ModelID != "openai/dall-e-3" {
		t.Errorf("ModelID = %q, want explicit choice", sel.ModelID)
	}
	if !sel.CapabilityMismatch {
		t.Error("CapabilityMismatch = false, want true")
	}
}

func TestSelector_UnknownChoiceFallsBack(t *testing.T) {
	s := newTestSelector(t, nil)

	sel, err := s.Select(context.Background(), InputText, "nonexistent/model")
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if !sel.FellBack {
		t.Error("FellBack = false, want true for unknown choice")
	}
	if sel.ModelID != "gemini/gemini-2.5-flash" {
		t.Errorf("ModelID = %q, want default chain head", sel.ModelID)
	}
	if sel.RequestedID != "nonexistent/model" {
		t.Errorf("RequestedID = %q, want original request preserved", sel.RequestedID)
	}
}

func TestSelector_ChoiceFromUnavailableProviderFallsBack(t *testing.T) {
	cfg := testConfig()
	cfg.AnthropicAPIKey = ""
	r := NewRegistryWithDiscoverers(cfg, nil, nil)
	s := NewSelector(r, cfg, nil)

	sel, err := s.Select(context.Background(), InputText, "anthropic/claude-sonnet-4-5")
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if !sel.FellBack {
		t.Error("FellBack = false, want true when provider lacks credentials")
	}
}

func TestSelector_AutomaticPerKind(t *testing.T) {
	s := newTestSelector(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		kind InputKind
		want string
	}{
		{"text uses default", InputText, "gemini/gemini-2.5-flash"},
		{"vision uses default", InputVision, "gemini/gemini-2.5-flash"},
		{"image generation uses dedicated chain", InputImageGeneration, "gemini/gemini-2.5-flash-image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := s.Select(ctx, tt.kind, "")
			if err != nil {
				t.Fatalf("Select() error: %v", err)
			}
			if sel.ModelID != tt.want {
				t.Errorf("ModelID = %q, want %q", sel.ModelID, tt.want)
			}
			if sel.FellBack {
				t.Error("FellBack should be false for automatic selection without a request")
			}
		})
	}
}

func TestSelector_ChainSkipsUnavailableDefault(t *testing.T) {
	cfg := testConfig()
	cfg.GeminiAPIKey = ""
	cfg.DefaultTextModel = "gemini/gemini-2.5-flash"
	r := NewRegistryWithDiscoverers(cfg, nil, nil)
	s := NewSelector(r, cfg, nil)

	sel, err := s.Select(context.Background(), InputText, "")
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if sel.ModelID != "openai/gpt-4o-mini" {
		t.Errorf("ModelID = %q, want next chain entry when default provider is unavailable", sel.ModelID)
	}
}

func TestSelector_ChainExhaustedPrefersTextOnlyModel(t *testing.T) {
	cfg := testConfig()
	cfg.GeminiAPIKey = ""
	cfg.OpenAIAPIKey = ""
	cfg.AnthropicAPIKey = "test-key"
	// Registry order puts the vision model first; a text input should still
	// land on the text-only model, the cheaper tier.
	disc := &fakeDiscoverer{
		provider: ProviderAnthropic,
		models: []ModelDescriptor{
			{
				ID:           "anthropic/a-vision",
				Name:         "a-vision",
				Provider:     ProviderAnthropic,
				Capabilities: ModelCapabilities{SupportsVision: true},
			},
			{
				ID:       "anthropic/b-text",
				Name:     "b-text",
				Provider: ProviderAnthropic,
			},
		},
	}
	r := NewRegistryWithDiscoverers(cfg, nil, []Discoverer{disc})
	s := NewSelector(r, cfg, nil)

	sel, err := s.Select(context.Background(), InputText, "")
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if sel.ModelID != "anthropic/b-text" {
		t.Errorf("ModelID = %q, want anthropic/b-text (text-only preferred after chain)", sel.ModelID)
	}

	// Vision input has no text-only preference and takes registry order.
	sel, err = s.Select(context.Background(), InputVision, "")
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if sel.ModelID != "anthropic/a-vision" {
		t.Errorf("ModelID = %q, want anthropic/a-vision for vision input", sel.ModelID)
	}
}

func TestSelector_NoAvailableModel(t *testing.T) {
	cfg := testConfig()
	cfg.GeminiAPIKey = ""
	cfg.OpenAIAPIKey = ""
	cfg.AnthropicAPIKey = ""
	r := NewRegistryWithDiscoverers(cfg, nil, nil)
	s := NewSelector(r, cfg, nil)

	_, err := s.Select(context.Background(), InputText, "")
	if !errors.Is(err, ErrNoAvailableModel) {
		t.Errorf("err = %v, want ErrNoAvailableModel", err)
	}
}

func TestSelector_ImageGenerationRequiresCapability(t *testing.T) {
	cfg := testConfig()
	cfg.GeminiAPIKey = ""
	cfg.OpenAIAPIKey = ""
	cfg.AnthropicAPIKey = "test-key"
	// Anthropic's static catalog has no image generation models.
	r := NewRegistryWithDiscoverers(cfg, nil, nil)
	s := NewSelector(r, cfg, nil)

	_, err := s.Select(context.Background(), InputImageGeneration, "")
	if !errors.Is(err, ErrNoAvailableModel) {
		t.Errorf("err = %v, want ErrNoAvailableModel", err)
	}
}
