package registry

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common failure conditions.
var (
	// ErrRegistryUnavailable indicates the registry endpoint could not be
	// reached or answered with a server-side failure.
	ErrRegistryUnavailable = errors.New("registry unavailable")

	// ErrNoResource indicates the service index does not advertise a resource
	// the operation needs.
	ErrNoResource = errors.New("service index has no matching resource")
)

// NetworkError represents a failure during network operations.
// It matches ErrRegistryUnavailable under errors.Is.
type NetworkError struct {
	URL     string
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network request to %s failed: %s: %v", e.URL, e.Message, e.Err)
	}
	return fmt.Sprintf("network request to %s failed: %s", e.URL, e.Message)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrRegistryUnavailable
}

// RegistryError represents an unexpected status from the registry.
type RegistryError struct {
	URL        string
	Package    string
	StatusCode int
	Message    string
}

func (e *RegistryError) Error() string {
	if e.Package == "" {
		return fmt.Sprintf("registry error for %s (status %d): %s", e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("registry error for package %q (status %d): %s", e.Package, e.StatusCode, e.Message)
}

// IsNotFound returns true if the error indicates a package was not found.
func (e *RegistryError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Is reports server-side failures and throttling as ErrRegistryUnavailable.
func (e *RegistryError) Is(target error) bool {
	return target == ErrRegistryUnavailable &&
		(e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests)
}

// ConflictError is returned by Push when the target already holds a package
// version (HTTP 409). Message carries the registry's own description, which
// usually names the conflicting version.
type ConflictError struct {
	Path    string
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// PushError is any push failure other than a conflict.
type PushError struct {
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *PushError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("push of %s failed: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("push of %s failed (status %d): %s", e.Path, e.StatusCode, e.Message)
}

func (e *PushError) Unwrap() error {
	return e.Err
}

// IsConflict reports whether err is (or wraps) a *ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
