package syncer

import (
	"errors"
	"fmt"

	"github.com/schmitthub/nugetsync/internal/semver"
)

var (
	// ErrPushTimeout indicates the conflict-retry loop ran out of its
	// wall-clock budget.
	ErrPushTimeout = errors.New("push retry budget exceeded")

	// ErrEnumerationTimeout indicates catalog paging ran past its bound.
	ErrEnumerationTimeout = errors.New("package enumeration timed out")
)

// DownloadFailedError is returned when the source fails to serve a version
// it listed. "Not available" is not a failure; see registry.Client.Download.
type DownloadFailedError struct {
	Package string
	Version *semver.Version
	Err     error
}

func (e *DownloadFailedError) Error() string {
	return fmt.Sprintf("downloading %s %s: %v", e.Package, e.Version, e.Err)
}

func (e *DownloadFailedError) Unwrap() error {
	return e.Err
}

// PushFatalError wraps any push failure the pipeline does not recover from,
// including conflicts that do not name a staged version.
type PushFatalError struct {
	Package string
	Err     error
}

func (e *PushFatalError) Error() string {
	return fmt.Sprintf("pushing %s: %v", e.Package, e.Err)
}

func (e *PushFatalError) Unwrap() error {
	return e.Err
}
