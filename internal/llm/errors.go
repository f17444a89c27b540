package llm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrBackendUnavailable marks connectivity failures: the backend
	// could not be reached at all.
	ErrBackendUnavailable = errors.New("language model backend unavailable")

	// ErrTimeout marks a generation call that exceeded its deadline.
	ErrTimeout = errors.New("language model call timed out")
)

// GenerationError wraps a backend failure that occurred while generating
// an answer. It is terminal for the current request; callers must not retry.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// classifyError maps a raw provider error onto the error taxonomy:
// deadline errors become ErrTimeout, transport errors become
// ErrBackendUnavailable, everything else is a GenerationError.
func classifyError(provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	return &GenerationError{Provider: provider, Err: err}
}
