package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/follmon10/memo-ai/internal/config"
)

// InputKind describes the shape of a pipeline input for model selection.
type InputKind int

const (
	InputText InputKind = iota
	InputVision
	InputImageGeneration
)

// String returns the kind name for logging.
func (k InputKind) String() string {
	switch k {
	case InputText:
		return "text"
	case InputVision:
		return "vision"
	case InputImageGeneration:
		return "image_generation"
	}
	return "unknown"
}

// Selection is the result of one model selection.
type Selection struct {
	// ModelID is the provider-prefixed id of the chosen model.
	ModelID string
	// RequestedID is the user's explicit choice, if any.
	RequestedID string
	// FellBack is true when the user's choice could not be honored.
	FellBack bool
	// CapabilityMismatch is true when an honored explicit choice lacks the
	// capability the input kind needs. Explicit intent wins, but callers
	// can surface a warning.
	CapabilityMismatch bool
}

// Selector picks a concrete model for an input kind using ordered fallback
// chains and registry lookups. Selection is never retried internally;
// retries belong to the orchestrator around the transport call.
type Selector struct {
	registry *Registry
	cfg      *config.Config
	logger   *slog.Logger
}

// NewSelector creates a model selector.
func NewSelector(registry *Registry, cfg *config.Config, logger *slog.Logger) *Selector {
	return &Selector{registry: registry, cfg: cfg, logger: logger}
}

// Select resolves a model for the input kind. A valid explicit userChoice is
// honored as-is, capability mismatch or not. An invalid or unavailable
// choice falls through to automatic selection with FellBack set. Returns
// ErrNoAvailableModel when nothing satisfies the capability filter.
func (s *Selector) Select(ctx context.Context, kind InputKind, userChoice string) (Selection, error) {
	sel := Selection{RequestedID: userChoice}

	if userChoice != "" {
		if m, ok := s.registry.Get(ctx, userChoice); ok && s.registry.IsAvailable(m.Provider) {
			sel.ModelID = m.ID
			sel.CapabilityMismatch = !capabilityMatches(kind, m.Capabilities)
			if sel.CapabilityMismatch && s.logger != nil {
				s.logger.Warn("honoring explicit model despite capability mismatch",
					"model", m.ID,
					"input_kind", kind.String(),
				)
			}
			return sel, nil
		}
		sel.FellBack = true
		if s.logger != nil {
			s.logger.Info("requested model unavailable, selecting automatically",
				"requested", userChoice,
				"input_kind", kind.String(),
			)
		}
	}

	id, err := s.selectAutomatic(ctx, kind)
	if err != nil {
		return Selection{RequestedID: userChoice, FellBack: sel.FellBack}, err
	}
	sel.ModelID = id
	return sel, nil
}

// selectAutomatic walks the fallback chain for the kind, then any available
// capability-matching model in registry order.
func (s *Selector) selectAutomatic(ctx context.Context, kind InputKind) (string, error) {
	for _, id := range s.fallbackChain(kind) {
		if m, ok := s.registry.Get(ctx, id); ok && s.registry.IsAvailable(m.Provider) && capabilityMatches(kind, m.Capabilities) {
			return m.ID, nil
		}
	}

	// Chain exhausted: text input takes a text-only model first, the cheaper
	// tier, before falling back to anything capability-matching.
	if kind == InputText {
		textOnly := s.registry.ByCapability(ctx, func(c ModelCapabilities) bool {
			return !c.SupportsVision && !c.SupportsImageGeneration
		})
		if len(textOnly) > 0 {
			return textOnly[0].ID, nil
		}
	}

	// First available match in registry order.
	candidates := s.registry.ByCapability(ctx, func(c ModelCapabilities) bool {
		return capabilityMatches(kind, c)
	})
	if len(candidates) > 0 {
		return candidates[0].ID, nil
	}

	return "", fmt.Errorf("no model supports %s input: %w", kind.String(), ErrNoAvailableModel)
}

// fallbackChain returns the ordered candidate list for a kind. The
// configured default leads; known-good stable models follow.
func (s *Selector) fallbackChain(kind InputKind) []string {
	switch kind {
	case InputVision:
		return dedupeChain(s.cfg.DefaultVisionModel, stableVisionModels)
	case InputImageGeneration:
		return dedupeChain("", stableImageGenModels)
	default:
		return dedupeChain(s.cfg.DefaultTextModel, stableTextModels)
	}
}

func dedupeChain(first string, rest []string) []string {
	var chain []string
	seen := make(map[string]bool)
	if first != "" {
		chain = append(chain, first)
		seen[first] = true
	}
	for _, id := range rest {
		if !seen[id] {
			chain = append(chain, id)
			seen[id] = true
		}
	}
	return chain
}

func capabilityMatches(kind InputKind, caps ModelCapabilities) bool {
	switch kind {
	case InputVision:
		return caps.SupportsVision
	case InputImageGeneration:
		return caps.SupportsImageGeneration
	default:
		// Any conversational model handles text; image generators do not.
		return !caps.SupportsImageGeneration
	}
}
