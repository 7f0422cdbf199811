package llm

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/follmon10/memo-ai/internal/config"
)

// Registry owns the model descriptor cache. It merges dynamically discovered
// models with the static fallback catalog, de-duplicated by normalized name.
// Reads are concurrent; rebuilds take the write lock. Stale reads during a
// rebuild are acceptable.
type Registry struct {
	cfg         *config.Config
	logger      *slog.Logger
	discoverers []Discoverer
	ttl         time.Duration

	mu           sync.RWMutex
	models       []ModelDescriptor
	byID         map[string]ModelDescriptor
	providerErrs map[string]string
	builtAt      time.Time
}

// NewRegistry creates a registry using the default discoverers for every
// provider with configured credentials.
func NewRegistry(cfg *config.Config, logger *slog.Logger) *Registry {
	var discoverers []Discoverer
	if cfg.GeminiAPIKey != "" {
		discoverers = append(discoverers, &GeminiDiscoverer{APIKey: cfg.GeminiAPIKey})
	}
	if cfg.OpenAIAPIKey != "" {
		discoverers = append(discoverers, &OpenAIDiscoverer{APIKey: cfg.OpenAIAPIKey})
	}
	// Anthropic has no public listing endpoint worth the call; its static
	// catalog is authoritative.
	return NewRegistryWithDiscoverers(cfg, logger, discoverers)
}

// NewRegistryWithDiscoverers creates a registry with explicit discoverers.
// Tests inject fakes here.
func NewRegistryWithDiscoverers(cfg *config.Config, logger *slog.Logger, discoverers []Discoverer) *Registry {
	return &Registry{
		cfg:         cfg,
		logger:      logger,
		discoverers: discoverers,
		ttl:         cfg.ModelCacheTTL,
	}
}

// Models returns descriptors for every known model whose provider has
// credentials, rebuilding the cache if it has expired.
func (r *Registry) Models(ctx context.Context) []ModelDescriptor {
	r.ensureFresh(ctx)

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ModelDescriptor, len(r.models))
	copy(out, r.models)
	return out
}

// Get returns the descriptor for a model id.
func (r *Registry) Get(ctx context.Context, id string) (ModelDescriptor, bool) {
	r.ensureFresh(ctx)

	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	return m, ok
}

// IsAvailable reports whether credentials are configured for a provider.
func (r *Registry) IsAvailable(provider string) bool {
	return r.cfg.IsProviderAvailable(provider)
}

// ByCapability returns available models matching a capability predicate, in
// registry order (provider, then name).
func (r *Registry) ByCapability(ctx context.Context, match func(ModelCapabilities) bool) []ModelDescriptor {
	var out []ModelDescriptor
	for _, m := range r.Models(ctx) {
		if match(m.Capabilities) {
			out = append(out, m)
		}
	}
	return out
}

// ProviderErrors returns the most recent discovery failure reason per
// provider, for diagnostic surfacing. Providers whose discovery succeeded
// (or never ran) are absent.
func (r *Registry) ProviderErrors() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.providerErrs))
	for k, v := range r.providerErrs {
		out[k] = v
	}
	return out
}

// Invalidate drops the cache so the next read rebuilds it.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builtAt = time.Time{}
}

func (r *Registry) ensureFresh(ctx context.Context) {
	r.mu.RLock()
	fresh := !r.builtAt.IsZero() && time.Since(r.builtAt) < r.ttl
	r.mu.RUnlock()
	if fresh {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another goroutine may have rebuilt while we waited for the lock.
	if !r.builtAt.IsZero() && time.Since(r.builtAt) < r.ttl {
		return
	}
	r.rebuildLocked(ctx)
}

// rebuildLocked merges discovery results with the static catalog. Discovery
// failure for a provider is recorded and the static list used instead; it
// never propagates.
func (r *Registry) rebuildLocked(ctx context.Context) {
	providerErrs := make(map[string]string)
	discovered := make(map[string][]ModelDescriptor)

	for _, d := range r.discoverers {
		provider := d.Provider()
		models, err := d.ListModels(ctx)
		if err != nil {
			providerErrs[provider] = err.Error()
			if r.logger != nil {
				r.logger.Warn("model discovery failed, using static catalog",
					"provider", provider,
					"error", err,
				)
			}
			continue
		}
		discovered[provider] = models
	}

	var merged []ModelDescriptor
	for _, provider := range AllProviders() {
		if !r.cfg.IsProviderAvailable(provider) {
			continue
		}

		static := StaticModels(provider)
		staticByName := make(map[string]ModelDescriptor, len(static))
		for _, m := range static {
			staticByName[NormalizeModelName(m.ID)] = m
		}

		seen := make(map[string]bool)
		for _, m := range discovered[provider] {
			key := NormalizeModelName(m.ID)
			if seen[key] {
				continue
			}
			seen[key] = true
			// Static entries carry curated pricing and descriptions that
			// discovery lacks.
			if s, ok := staticByName[key]; ok {
				if m.InputCostPer1K == 0 {
					m.InputCostPer1K = s.InputCostPer1K
					m.OutputCostPer1K = s.OutputCostPer1K
				}
				if m.Description == "" {
					m.Description = s.Description
				}
			}
			merged = append(merged, m)
		}
		for _, m := range static {
			key := NormalizeModelName(m.ID)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, m)
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Provider != merged[j].Provider {
			return merged[i].Provider < merged[j].Provider
		}
		return merged[i].Name < merged[j].Name
	})

	byID := make(map[string]ModelDescriptor, len(merged))
	for _, m := range merged {
		byID[m.ID] = m
	}

	r.models = merged
	r.byID = byID
	r.providerErrs = providerErrs
	r.builtAt = time.Now()

	if r.logger != nil {
		r.logger.Info("model registry rebuilt",
			"models", len(merged),
			"discovery_errors", len(providerErrs),
		)
	}
}
