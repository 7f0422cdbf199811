package llm

import (
	"errors"
	"net/http"
	"testing"
)

func TestLLMError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *LLMError
		expected string
	}{
		{
			name:     "with user message",
			err:      &LLMError{UserMessage: "User-friendly message"},
			expected: "User-friendly message",
		},
		{
			name:     "with wrapped error",
			err:      &LLMError{Err: errors.New("wrapped error")},
			expected: "wrapped error",
		},
		{
			name:     "empty error",
			err:      &LLMError{},
			expected: "unknown LLM error",
		},
		{
			name:     "user message takes priority",
			err:      &LLMError{UserMessage: "User message", Err: errors.New("wrapped")},
			expected: "User message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.err.Error()
			if result != tt.expected {
				t.Errorf("Error() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestLLMError_Unwrap(t *testing.T) {
	wrapped := errors.New("wrapped error")
	llmErr := &LLMError{Err: wrapped}

	if llmErr.Unwrap() != wrapped {
		t.Error("Unwrap() should return the wrapped error")
	}
	if !errors.Is(llmErr, wrapped) {
		t.Error("errors.Is should work with Unwrap")
	}
}

func TestClassifyError_ByStatusCode(t *testing.T) {
	tests := []struct {
		name          string
		statusCode    int
		wantCategory  string
		wantRetryable bool
		wantFallback  bool
		wantSentinel  error
	}{
		{
			name:          "rate limited",
			statusCode:    http.StatusTooManyRequests,
			wantCategory:  "rate_limit",
			wantRetryable: true,
			wantFallback:  true,
		},
		{
			name:         "payment required",
			statusCode:   http.StatusPaymentRequired,
			wantCategory: "quota_exceeded",
			wantFallback: true,
		},
		{
			name:          "service unavailable",
			statusCode:    http.StatusServiceUnavailable,
			wantCategory:  "provider_error",
			wantRetryable: true,
			wantFallback:  true,
			wantSentinel:  ErrModelUnavailable,
		},
		{
			name:         "unauthorized",
			statusCode:   http.StatusUnauthorized,
			wantCategory: "invalid_key",
			wantSentinel: ErrInvalidAPIKey,
		},
		{
			name:         "forbidden",
			statusCode:   http.StatusForbidden,
			wantCategory: "invalid_key",
			wantSentinel: ErrInvalidAPIKey,
		},
		{
			name:          "bad gateway",
			statusCode:    http.StatusBadGateway,
			wantCategory:  "provider_error",
			wantRetryable: true,
			wantFallback:  true,
			wantSentinel:  ErrProviderError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(errors.New("upstream failure"), ProviderOpenAI, "gpt-4o-mini", tt.statusCode)
			if got.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", got.Category, tt.wantCategory)
			}
			if got.Retryable != tt.wantRetryable {
				t.Errorf("Retryable = %v, want %v", got.Retryable, tt.wantRetryable)
			}
			if got.ShouldFallback != tt.wantFallback {
				t.Errorf("ShouldFallback = %v, want %v", got.ShouldFallback, tt.wantFallback)
			}
			if tt.wantSentinel != nil && !errors.Is(got, tt.wantSentinel) {
				t.Errorf("err does not wrap %v", tt.wantSentinel)
			}
		})
	}
}

func TestClassifyError_ByMessage(t *testing.T) {
	tests := []struct {
		name         string
		msg          string
		wantCategory string
		wantSentinel error
	}{
		{"rate limit text", "RESOURCE_EXHAUSTED: quota exceeded for rate limit", "rate_limit", nil},
		{"overloaded", "the model is overloaded right now", "provider_error", ErrModelUnavailable},
		{"model not found", "model not found: gpt-9", "model_unsupported", ErrModelUnavailable},
		{"bad key", "API key not valid. Please pass a valid API key.", "invalid_key", ErrInvalidAPIKey},
		{"context length", "maximum context length exceeded", "content_too_long", ErrContentTooLong},
		{"timeout", "context deadline exceeded", "timeout", ErrProviderError},
		{"unknown", "something strange happened", "unknown", ErrProviderError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(errors.New(tt.msg), ProviderGemini, "gemini-2.5-flash", 0)
			if got.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", got.Category, tt.wantCategory)
			}
			if tt.wantSentinel != nil && !errors.Is(got, tt.wantSentinel) {
				t.Errorf("err does not wrap %v", tt.wantSentinel)
			}
		})
	}
}

func TestClassifyError_FeatureUnsupportedOverridesStatus(t *testing.T) {
	got := ClassifyError(errors.New("response_format is not supported for this model"), ProviderOpenAI, "gpt-3.5", http.StatusBadRequest)
	if !errors.Is(got, ErrModelFeatureUnsupported) {
		t.Error("expected ErrModelFeatureUnsupported")
	}
	if !got.ShouldFallback {
		t.Error("feature errors must fall back to the next model")
	}
	if got.Retryable {
		t.Error("feature errors are not retryable with the same model")
	}
}

func TestWrapError_ExtractsStatusFromMessage(t *testing.T) {
	err := errors.New("API error (status 429): slow down")
	got := WrapError(err, ProviderGemini, "gemini-2.5-flash")
	if got.Category != "rate_limit" {
		t.Errorf("Category = %q, want rate_limit", got.Category)
	}
	if !got.Retryable {
		t.Error("429 must be retryable")
	}
}

func TestWrapError_PassesThroughClassified(t *testing.T) {
	orig := &LLMError{Err: ErrInvalidAPIKey, Category: "invalid_key"}
	got := WrapError(orig, ProviderOpenAI, "gpt-4o")
	if got != orig {
		t.Error("already-classified error should pass through unchanged")
	}
}

func TestIsAuthError(t *testing.T) {
	if !IsAuthError(&LLMError{Err: ErrInvalidAPIKey}) {
		t.Error("classified invalid-key error should be an auth error")
	}
	if IsAuthError(&LLMError{Err: ErrProviderError}) {
		t.Error("provider error should not be an auth error")
	}
	if !IsAuthError(ErrInvalidAPIKey) {
		t.Error("bare sentinel should be an auth error")
	}
}

func TestIsNoAvailableModel(t *testing.T) {
	wrapped := &LLMError{Err: ErrNoAvailableModel}
	if !IsNoAvailableModel(wrapped) {
		t.Error("wrapped sentinel should match")
	}
	if IsNoAvailableModel(errors.New("other")) {
		t.Error("unrelated error should not match")
	}
}
