package stratacache

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks construction-time validation failures
	// (non-positive max size, nil backend). Never retried.
	ErrConfiguration = errors.New("stratacache: configuration error")

	// ErrStrategy marks strategy contract violations at call time.
	ErrStrategy = errors.New("stratacache: strategy error")

	// ErrTTLRequired is returned by the TTL strategy when neither a per-call
	// ttl nor a configured default resolves to a positive duration.
	ErrTTLRequired = fmt.Errorf("%w: ttl must be positive (per call or default)", ErrStrategy)
)

// SourceReadError wraps a failure of the configured read callback so callers
// can distinguish source-read failures from backend failures.
type SourceReadError struct {
	Key string
	Err error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("failed to read %q from data store: %v", e.Key, e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }

// SourceWriteError wraps a failure of the configured write callback. On the
// write-through path the backend is left untouched when this is returned.
type SourceWriteError struct {
	Key string
	Err error
}

func (e *SourceWriteError) Error() string {
	return fmt.Sprintf("failed to write %q to data store: %v", e.Key, e.Err)
}

func (e *SourceWriteError) Unwrap() error { return e.Err }
