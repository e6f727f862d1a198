package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions the caller is expected to branch on
// with errors.Is.
var (
	// ErrBackendNotReady means the rendering backend answered but has no
	// checkpoints loaded yet. Retryable, not a hard failure.
	ErrBackendNotReady = errors.New("rendering backend is still loading models")

	// ErrGenerationInFlight means another job currently holds the
	// single-flight slot. New requests are rejected, never queued.
	ErrGenerationInFlight = errors.New("a generation job is already in progress")

	// ErrCooldownActive means the previous job started too recently.
	ErrCooldownActive = errors.New("generation cooldown is active")

	// ErrNoOutputProduced means the job completed but exposed no image
	// output in any node result.
	ErrNoOutputProduced = errors.New("job completed without producing an image")
)

// ConfigurationError indicates a required setting is missing. Fatal,
// surfaced immediately, never retried.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Setting)
}

// BackendError carries a non-success HTTP response from either the text
// generation or the rendering backend.
type BackendError struct {
	Backend string // "llm" or "comfy"
	Status  int
	Body    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend returned HTTP %d: %s", e.Backend, e.Status, e.Body)
}

// TemplateError indicates a broken workflow template: an unresolved
// placeholder or a graph invariant violation. Points at a packaging bug,
// not at runtime conditions.
type TemplateError struct {
	Reason string
}

func (e *TemplateError) Error() string {
	return "workflow template error: " + e.Reason
}

// GenerationRejected is a backend-side validation failure on submit.
// Hint is populated when the error text matches known stale-option
// patterns, giving the user a concrete remediation.
type GenerationRejected struct {
	Detail string
	Hint   string
}

func (e *GenerationRejected) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("generation rejected: %s (%s)", e.Detail, e.Hint)
	}
	return "generation rejected: " + e.Detail
}
