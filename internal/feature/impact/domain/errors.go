// Package domain defines domain-level errors for the impact feature.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAIProviderFailure indicates the AI capability failed, timed out or is unreachable.
	// The analyzer recovers from it by using the rule-based narrative.
	ErrAIProviderFailure = errors.New("ai provider failure")

	// ErrAIValidation indicates the AI capability answered with output that failed structural validation.
	ErrAIValidation = fmt.Errorf("ai output validation: %w", ErrAIProviderFailure)
)
