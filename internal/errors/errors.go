// Package errors provides the typed error kinds that cross component
// boundaries in gitalong, plus thin convenience wrappers around the
// standard errors package so call sites can use errors.Is/errors.As without
// a second import.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors usable with errors.Is() for coarse-grained error kind checks.
var (
	// ErrNotSetUp indicates no .gitalong.json exists at the repository root.
	ErrNotSetUp = errors.New("gitalong is not set up on this repository")

	// ErrAlreadySetUp indicates setup was invoked on an already-configured repository.
	ErrAlreadySetUp = errors.New("gitalong is already set up on this repository")

	// ErrStoreUnavailable indicates the store backend could not be reached after retries.
	ErrStoreUnavailable = errors.New("store is unavailable")

	// ErrStoreConflict indicates the retry budget was exhausted resolving a write conflict.
	ErrStoreConflict = errors.New("store write conflict could not be resolved")

	// ErrGitOperationFailed indicates a git subprocess returned a non-zero exit code.
	ErrGitOperationFailed = errors.New("git operation failed")

	// ErrPermissionDenied indicates a filesystem permission change was refused.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidConfig indicates a malformed or missing .gitalong.json field.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Errorf creates a new formatted error.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Wrap wraps an error with a message for additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted message for additional context.
func Wrapf(err error, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether target is in err's chain.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GitError wraps a failed git subprocess invocation with enough context to
// reproduce it: the operation name, its arguments, exit state, and stderr.
type GitError struct {
	Operation string
	Args      []string
	Err       error
	Stderr    string
}

func (e *GitError) Error() string {
	msg := fmt.Sprintf("git %s failed", e.Operation)
	if e.Stderr != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Stderr)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *GitError) Unwrap() error { return e.Err }

// NewGitError creates a GitError wrapping ErrGitOperationFailed.
func NewGitError(operation string, args []string, stderr string) *GitError {
	return &GitError{
		Operation: operation,
		Args:      args,
		Err:       ErrGitOperationFailed,
		Stderr:    stderr,
	}
}

// PermissionError describes a filesystem permission change that was refused.
type PermissionError struct {
	Path string
	Err  error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("cannot change permissions on %s: %v", e.Path, e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// NewPermissionError creates a PermissionError wrapping ErrPermissionDenied.
func NewPermissionError(path string, cause error) *PermissionError {
	return &PermissionError{Path: path, Err: fmt.Errorf("%w: %v", ErrPermissionDenied, cause)}
}

// ConfigError describes a malformed or missing configuration field.
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("invalid configuration for %s = %v: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid configuration for %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a ConfigError wrapping ErrInvalidConfig.
func NewConfigError(field string, value interface{}, cause error) *ConfigError {
	return &ConfigError{Field: field, Value: value, Err: fmt.Errorf("%w: %v", ErrInvalidConfig, cause)}
}

// StoreError describes a store backend failure: either exhausted retries
// against a flaky/unreachable backend, or a conflict that optimistic retry
// could not resolve.
type StoreError struct {
	Locator string
	Attempt int
	Err     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed after %d attempt(s): %v", e.Locator, e.Attempt, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreUnavailableError creates a StoreError wrapping ErrStoreUnavailable.
func NewStoreUnavailableError(locator string, attempt int, cause error) *StoreError {
	return &StoreError{Locator: locator, Attempt: attempt, Err: fmt.Errorf("%w: %v", ErrStoreUnavailable, cause)}
}

// NewStoreConflictError creates a StoreError wrapping ErrStoreConflict.
func NewStoreConflictError(locator string, attempt int, cause error) *StoreError {
	return &StoreError{Locator: locator, Attempt: attempt, Err: fmt.Errorf("%w: %v", ErrStoreConflict, cause)}
}
