// Package registry talks to NuGet package registries.
//
// Client is the narrow capability set the sync core needs: list versions,
// page through package names, download one nupkg, push a batch of nupkgs.
// NuGetClient implements it over the NuGet v3 HTTP protocol; registrytest
// provides an in-memory fake and an httptest-backed feed.
package registry

import (
	"context"
	"time"

	"github.com/schmitthub/nugetsync/internal/semver"
)

// Client defines the registry operations used by the sync core.
// This interface enables mocking for tests and supports alternative registry implementations.
type Client interface {
	// ListVersions returns every published version of a package. A package
	// that does not exist yields an empty slice, not an error. Unreachable
	// endpoints fail with an error matching ErrRegistryUnavailable.
	ListVersions(ctx context.Context, packageName string) ([]*semver.Version, error)

	// ListPackageNames returns one page of package names matching an empty
	// query. hasMore reports whether the page came back full; servers may cap
	// take, so only an empty page proves the catalog is exhausted.
	ListPackageNames(ctx context.Context, skip, take int, includePrerelease bool) (names []string, hasMore bool, err error)

	// Download writes the nupkg for id to destPath. It returns false, nil when
	// the registry has no downloadable artifact for id; transport and server
	// faults are errors.
	Download(ctx context.Context, id PackageIdentity, destPath string) (bool, error)

	// Push publishes the given nupkg files as one batch within timeout.
	// A version that already exists fails with *ConflictError; anything else
	// fails with *PushError. Files published by an earlier call on the same
	// client are not sent again.
	Push(ctx context.Context, paths []string, timeout time.Duration) error
}

// Ensure NuGetClient implements Client.
var _ Client = (*NuGetClient)(nil)
