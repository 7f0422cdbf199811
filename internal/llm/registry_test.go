package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/follmon10/memo-ai/internal/config"
)

// fakeDiscoverer returns canned models or a canned error.
type fakeDiscoverer struct {
	provider string
	models   []ModelDescriptor
	err      error
	calls    int
}

func (f *fakeDiscoverer) Provider() string { return f.provider }

func (f *fakeDiscoverer) ListModels(ctx context.Context) ([]ModelDescriptor, error) {
	f.calls++
	return f.models, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		GeminiAPIKey:       "test-key",
		OpenAIAPIKey:       "test-key",
		DefaultTextModel:   "gemini/gemini-2.5-flash",
		DefaultVisionModel: "gemini/gemini-2.5-flash",
		ModelCacheTTL:      time.Hour,
	}
}

func TestRegistry_DiscoveryFailureFallsBackToStatic(t *testing.T) {
	cfg := testConfig()
	disc := &fakeDiscoverer{provider: ProviderGemini, err: errors.New("API error (status 503)")}
	r := NewRegistryWithDiscoverers(cfg, nil, []Discoverer{disc})

	models := r.Models(context.Background())
	if len(models) == 0 {
		t.Fatal("expected static fallback models after discovery failure")
	}

	found := false
	for _, m := range models {
		if m.ID == "gemini/gemini-2.5-flash" {
			found = true
		}
	}
	if !found {
		t.Error("static gemini catalog entry missing from merged list")
	}

	errs := r.ProviderErrors()
	if errs[ProviderGemini] == "" {
		t.Error("discovery failure reason not recorded")
	}
}

func TestRegistry_DedupesDiscoveredAndStatic(t *testing.T) {
	cfg := testConfig()
	disc := &fakeDiscoverer{
		provider: ProviderGemini,
		models: []ModelDescriptor{
			{
				ID:           "gemini/gemini-2.5-flash",
				Name:         "gemini-2.5-flash",
				Provider:     ProviderGemini,
				Capabilities: ModelCapabilities{SupportsVision: true, SupportsJSON: true},
			},
		},
	}
	r := NewRegistryWithDiscoverers(cfg, nil, []Discoverer{disc})

	count := 0
	for _, m := range r.Models(context.Background()) {
		if NormalizeModelName(m.ID) == "gemini-2.5-flash" && m.Provider == ProviderGemini {
			count++
		}
	}
	if count != 1 {
		t.Errorf("gemini-2.5-flash appears %d times, want 1", count)
	}

	// Static pricing is merged onto the discovered entry.
	m, ok := r.Get(context.Background(), "gemini/gemini-2.5-flash")
	if !ok {
		t.Fatal("model not found")
	}
	if m.InputCostPer1K == 0 {
		t.Error("static pricing was not merged onto discovered entry")
	}
}

func TestRegistry_SkipsProvidersWithoutCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.OpenAIAPIKey = ""
	cfg.AnthropicAPIKey = ""
	r := NewRegistryWithDiscoverers(cfg, nil, nil)

	for _, m := range r.Models(context.Background()) {
		if m.Provider != ProviderGemini {
			t.Errorf("unexpected provider %q in registry without credentials", m.Provider)
		}
	}
}

func TestRegistry_CacheAndInvalidate(t *testing.T) {
	cfg := testConfig()
	disc := &fakeDiscoverer{provider: ProviderGemini}
	r := NewRegistryWithDiscoverers(cfg, nil, []Discoverer{disc})

	ctx := context.Background()
	r.Models(ctx)
	r.Models(ctx)
	if disc.calls != 1 {
		t.Errorf("discovery ran %d times within TTL, want 1", disc.calls)
	}

	r.Invalidate()
	r.Models(ctx)
	if disc.calls != 2 {
		t.Errorf("discovery ran %d times after Invalidate, want 2", disc.calls)
	}
}

func TestRegistry_SortedByProviderThenName(t *testing.T) {
	cfg := testConfig()
	cfg.AnthropicAPIKey = "test-key"
	r := NewRegistryWithDiscoverers(cfg, nil, nil)

	models := r.Models(context.Background())
	for i := 1; i < len(models); i++ {
		prev, cur := models[i-1], models[i]
		if prev.Provider > cur.Provider || (prev.Provider == cur.Provider && prev.Name > cur.Name) {
			t.Fatalf("registry order violated at %d: %s/%s before %s/%s",
				i, prev.Provider, prev.Name, cur.Provider, cur.Name)
		}
	}
}

func TestRegistry_ByCapability(t *testing.T) {
	cfg := testConfig()
	r := NewRegistryWithDiscoverers(cfg, nil, nil)

	gens := r.ByCapability(context.Background(), func(c ModelCapabilities) bool {
		return c.SupportsImageGeneration
	})
	if len(gens) == 0 {
		t.Fatal("expected at least one image generation model")
	}
	for _, m := range gens {
		if !m.Capabilities.SupportsImageGeneration {
			t.Errorf("%s does not support image generation", m.ID)
		}
	}
}
