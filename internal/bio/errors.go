package bio

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyInput marks a submission whose information field was empty or
// whitespace-only. It is a guard, not a failure: callers treat it as a
// disabled action and never show it in the error slot.
var ErrEmptyInput = errors.New("no information provided")

// genericUserMessage is shown when a provider failure carries no usable explanation
const genericUserMessage = "An error occurred while generating the biography. Please try again."

// ConfigurationError reports a missing provider credential. It is detected
// before any network call is dispatched and is not retryable.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("biography generator is not configured: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ProviderError reports a failed generation call (network fault, provider
// rejection, or an unusable response).
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("generation failed: %v", e.Err)
	}
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// UserMessage converts a Generate error into the text shown to users.
// Configuration problems are reported verbatim so operators know what to
// fix; provider failures prefer the provider's own explanation and fall
// back to a generic message when none is available.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var confErr *ConfigurationError
	if errors.As(err, &confErr) {
		return confErr.Error()
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		if provErr.Err != nil && strings.TrimSpace(provErr.Err.Error()) != "" {
			return provErr.Err.Error()
		}
		return genericUserMessage
	}

	return genericUserMessage
}
