package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error categories for LLM operations.
var (
	// ErrNoAvailableModel indicates no model satisfies the selection filter.
	// This is the only fatal selection error: the pipeline cannot proceed
	// without a model.
	ErrNoAvailableModel = errors.New("no available model")

	// ErrModelUnavailable indicates a specific model is unavailable.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrModelFeatureUnsupported indicates the model doesn't support a
	// required feature (e.g. response_format for JSON mode).
	ErrModelFeatureUnsupported = errors.New("model feature unsupported")

	// ErrInvalidAPIKey indicates the API key is invalid or expired.
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrProviderError indicates a general provider-side failure.
	ErrProviderError = errors.New("provider error")

	// ErrContentTooLong indicates the prompt exceeded the model's context.
	ErrContentTooLong = errors.New("content too long")
)

// LLMError represents a transport or provider error with classification the
// orchestrator uses to decide between retry, fallback, and degradation.
type LLMError struct {
	// Original error from the provider
	Err error

	// HTTP status code (if applicable)
	StatusCode int

	// Provider name (gemini, openai, anthropic)
	Provider string

	// Model that was being used
	Model string

	// User-friendly message to display
	UserMessage string

	// Raw error message for diagnostics
	RawMessage string

	// Error category for classification (rate_limit, invalid_key, etc.)
	Category string

	// Whether a retry with the same model may succeed
	Retryable bool

	// Whether this error should trigger fallback to the next model
	ShouldFallback bool
}

func (e *LLMError) Error() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown LLM error"
}

func (e *LLMError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether the error is credential-related. The chat
// degradation path uses this to hint the user at misconfigured API keys.
func (e *LLMError) IsAuthError() bool {
	return errors.Is(e.Err, ErrInvalidAPIKey)
}

// ClassifyError analyzes an error from an LLM call and returns a classified
// LLMError. Status code takes priority; 400s and unknown codes fall through
// to message-pattern classification.
func ClassifyError(err error, provider, model string, statusCode int) *LLMError {
	if err == nil {
		return nil
	}

	errStr := strings.ToLower(err.Error())
	llmErr := &LLMError{
		Err:        err,
		StatusCode: statusCode,
		Provider:   provider,
		Model:      model,
		RawMessage: err.Error(),
	}

	// Feature errors override status code classification: a 400 for an
	// unsupported response_format should fall back, not abort.
	if containsFeatureUnsupported(errStr) {
		llmErr.Err = ErrModelFeatureUnsupported
		llmErr.Category = "model_unsupported"
		llmErr.UserMessage = "This model doesn't support structured output."
		llmErr.ShouldFallback = true
		return llmErr
	}

	switch statusCode {
	case http.StatusTooManyRequests: // 429
		llmErr.Category = "rate_limit"
		llmErr.UserMessage = "Rate limit exceeded. Please wait before retrying."
		llmErr.Retryable = true
		llmErr.ShouldFallback = true

	case http.StatusPaymentRequired: // 402
		llmErr.Category = "quota_exceeded"
		llmErr.UserMessage = "Payment required. Please check your API key's billing status."
		llmErr.ShouldFallback = true

	case http.StatusServiceUnavailable: // 503
		llmErr.Err = ErrModelUnavailable
		llmErr.Category = "provider_error"
		llmErr.UserMessage = "The model is temporarily unavailable. Please try again later."
		llmErr.Retryable = true
		llmErr.ShouldFallback = true

	case http.StatusUnauthorized, http.StatusForbidden: // 401, 403
		llmErr.Err = ErrInvalidAPIKey
		llmErr.Category = "invalid_key"
		llmErr.UserMessage = "Invalid API key. Please check your provider configuration."
		// Don't hammer the provider with a known-bad key, and don't try
		// other models on the same provider with it either.

	case http.StatusBadGateway, http.StatusGatewayTimeout: // 502, 504
		llmErr.Err = ErrProviderError
		llmErr.Category = "provider_error"
		llmErr.UserMessage = "The LLM provider is experiencing issues. Please try again."
		llmErr.Retryable = true
		llmErr.ShouldFallback = true

	default:
		llmErr = classifyByErrorMessage(llmErr, errStr)
	}

	return llmErr
}

// containsFeatureUnsupported checks if the error indicates a model feature
// is unsupported.
func containsFeatureUnsupported(errStr string) bool {
	patterns := []string{
		"response_format is not supported",
		"response_format not supported",
		"structured output not supported",
		"json mode not supported",
		"json_object not supported",
		"does not support response_format",
		"does not support structured",
	}
	for _, p := range patterns {
		if strings.Contains(errStr, p) {
			return true
		}
	}
	return false
}

// classifyByErrorMessage analyzes error message content for known patterns.
func classifyByErrorMessage(llmErr *LLMError, errStr string) *LLMError {
	switch {
	case strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "ratelimit") || strings.Contains(errStr, "resource_exhausted"):
		llmErr.Category = "rate_limit"
		llmErr.UserMessage = "Rate limit exceeded. Please wait before retrying."
		llmErr.Retryable = true
		llmErr.ShouldFallback = true

	case strings.Contains(errStr, "overloaded") || strings.Contains(errStr, "capacity"):
		llmErr.Err = ErrModelUnavailable
		llmErr.Category = "provider_error"
		llmErr.UserMessage = "Model is overloaded. Please try again later."
		llmErr.Retryable = true
		llmErr.ShouldFallback = true

	case strings.Contains(errStr, "model not found") || strings.Contains(errStr, "invalid model"):
		llmErr.Err = ErrModelUnavailable
		llmErr.Category = "model_unsupported"
		llmErr.UserMessage = "The specified model is not available."
		llmErr.ShouldFallback = true

	case strings.Contains(errStr, "invalid api key") || strings.Contains(errStr, "api key not valid") || strings.Contains(errStr, "authentication"):
		llmErr.Err = ErrInvalidAPIKey
		llmErr.Category = "invalid_key"
		llmErr.UserMessage = "Invalid API key. Please check your provider configuration."

	case strings.Contains(errStr, "context") && strings.Contains(errStr, "length"):
		llmErr.Err = ErrContentTooLong
		llmErr.Category = "content_too_long"
		llmErr.UserMessage = "The content is too long for the model."
		// Content issue, not provider issue: another model likely fails too.

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded"):
		llmErr.Err = ErrProviderError
		llmErr.Category = "timeout"
		llmErr.UserMessage = "Request timed out. The model took too long to respond."
		llmErr.Retryable = true
		llmErr.ShouldFallback = true

	default:
		llmErr.Err = ErrProviderError
		llmErr.Category = "unknown"
		llmErr.UserMessage = fmt.Sprintf("LLM error: %s", llmErr.RawMessage)
		llmErr.ShouldFallback = true
	}

	return llmErr
}

// WrapError wraps a raw error into a classified LLMError, extracting an
// HTTP status from the message when the error isn't already classified.
func WrapError(err error, provider, model string) *LLMError {
	if err == nil {
		return nil
	}

	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return llmErr
	}

	return ClassifyError(err, provider, model, extractStatusCode(err.Error()))
}

// extractStatusCode attempts to extract an HTTP status code from an error
// message. Common patterns: "status 429", "API error (status 503)".
func extractStatusCode(errMsg string) int {
	patterns := []struct {
		substr string
		code   int
	}{
		{"status 429", http.StatusTooManyRequests},
		{"status 402", http.StatusPaymentRequired},
		{"status 401", http.StatusUnauthorized},
		{"status 403", http.StatusForbidden},
		{"status 503", http.StatusServiceUnavailable},
		{"status 502", http.StatusBadGateway},
		{"status 504", http.StatusGatewayTimeout},
		{"status 500", http.StatusInternalServerError},
		{"429", http.StatusTooManyRequests},
		{"503", http.StatusServiceUnavailable},
	}

	errLower := strings.ToLower(errMsg)
	for _, p := range patterns {
		if strings.Contains(errLower, p.substr) {
			return p.code
		}
	}

	return 0
}

// IsRetryable returns true if the error is retryable with the same model.
func IsRetryable(err error) bool {
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return llmErr.Retryable
	}
	return false
}

// GetUserMessage returns a user-friendly message for the error.
func GetUserMessage(err error) string {
	var llmErr *LLMError
	if errors.As(err, &llmErr) && llmErr.UserMessage != "" {
		return llmErr.UserMessage
	}
	return "An unexpected error occurred. Please try again."
}

// IsNoAvailableModel checks for the fatal no-model condition.
func IsNoAvailableModel(err error) bool {
	return errors.Is(err, ErrNoAvailableModel)
}

// IsAuthError reports whether the error, classified or not, is
// credential-related.
func IsAuthError(err error) bool {
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return llmErr.IsAuthError()
	}
	return errors.Is(err, ErrInvalidAPIKey)
}
