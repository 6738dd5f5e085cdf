package registrytest

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/schmitthub/nugetsync/internal/registry"
	"github.com/schmitthub/nugetsync/internal/semver"
)

// Compile-time interface check.
var _ registry.Client = (*FakeClient)(nil)

// FakeClient is an in-memory registry.Client. By default it serves packages
// added with AddPackage and accepts pushes of nupkgs built by BuildPackage,
// rejecting versions it already holds with a *registry.ConflictError.
//
// Each method has a corresponding Fn field. If set, the fake delegates to it
// instead of the in-memory behavior. Every call is recorded in Calls.
type FakeClient struct {
	*store

	// mu protects Calls from concurrent access.
	mu sync.Mutex

	// Calls records the method names invoked on this fake, in order.
	Calls []string

	published map[string]struct{}

	ListVersionsFn     func(ctx context.Context, packageName string) ([]*semver.Version, error)
	ListPackageNamesFn func(ctx context.Context, skip, take int, includePrerelease bool) ([]string, bool, error)
	DownloadFn         func(ctx context.Context, id registry.PackageIdentity, destPath string) (bool, error)
	PushFn             func(ctx context.Context, paths []string, timeout time.Duration) error
}

// NewFakeClient returns an empty FakeClient.
func NewFakeClient() *FakeClient {
	return &FakeClient{store: newStore(), published: make(map[string]struct{})}
}

// AddPackage publishes versions of name. Invalid versions panic.
func (f *FakeClient) AddPackage(name string, versions ...string) *FakeClient {
	for _, v := range versions {
		f.add(name, v, MustBuildPackage(name, v))
	}
	return f
}

// MarkUnavailable keeps version listed but makes Download report it missing.
func (f *FakeClient) MarkUnavailable(name, version string) *FakeClient {
	f.setContent(name, version, nil)
	return f
}

// Versions returns the versions of name currently held, ascending.
func (f *FakeClient) Versions(name string) []string {
	return semver.Strings(f.versions(name))
}

// Pushed returns every identity accepted by Push, sorted as "Name Version".
func (f *FakeClient) Pushed() []string {
	return f.pushedStrings()
}

// CallCount returns how many times method was invoked.
func (f *FakeClient) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.Calls {
		if c == method {
			n++
		}
	}
	return n
}

// Reset clears the Calls log.
func (f *FakeClient) Reset() {
	f.mu.Lock()
	f.Calls = nil
	f.mu.Unlock()
}

func (f *FakeClient) record(method string) {
	f.mu.Lock()
	f.Calls = append(f.Calls, method)
	f.mu.Unlock()
}

func (f *FakeClient) ListVersions(ctx context.Context, packageName string) ([]*semver.Version, error) {
	f.record("ListVersions")
	if f.ListVersionsFn != nil {
		return f.ListVersionsFn(ctx, packageName)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.versions(packageName), nil
}

func (f *FakeClient) ListPackageNames(ctx context.Context, skip, take int, includePrerelease bool) ([]string, bool, error) {
	f.record("ListPackageNames")
	if f.ListPackageNamesFn != nil {
		return f.ListPackageNamesFn(ctx, skip, take, includePrerelease)
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	page := paginate(f.names(includePrerelease), skip, take)
	return page, take > 0 && len(page) >= take, nil
}

func (f *FakeClient) Download(ctx context.Context, id registry.PackageIdentity, destPath string) (bool, error) {
	f.record("Download")
	if f.DownloadFn != nil {
		return f.DownloadFn(ctx, id, destPath)
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	content, ok := f.content(id.Name, id.Version.Normalized())
	if !ok {
		return false, nil
	}
	if err := os.WriteFile(destPath, content, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// Push accepts files in order and stops at the first conflict, leaving
// earlier files of the batch published. Paths published before are skipped.
func (f *FakeClient) Push(ctx context.Context, paths []string, timeout time.Duration) error {
	f.record("Push")
	if f.PushFn != nil {
		return f.PushFn(ctx, paths, timeout)
	}
	for _, p := range paths {
		f.mu.Lock()
		_, done := f.published[p]
		f.mu.Unlock()
		if done {
			continue
		}
		if err := ctx.Err(); err != nil {
			return &registry.PushError{Path: p, Message: "request failed", Err: err}
		}
		content, err := os.ReadFile(p)
		if err != nil {
			return &registry.PushError{Path: p, Message: "opening package", Err: err}
		}
		name, version, err := ReadIdentity(content)
		if err != nil {
			return &registry.PushError{Path: p, StatusCode: 400, Message: err.Error()}
		}
		if !f.add(name, version, content) {
			return &registry.ConflictError{
				Path:    p,
				Message: fmt.Sprintf("Response status code does not indicate success: 409 (%s)", conflictMessage(name, version)),
			}
		}
		f.recordPush(name, version)
		f.mu.Lock()
		f.published[p] = struct{}{}
		f.mu.Unlock()
	}
	return nil
}

func paginate(names []string, skip, take int) []string {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(names) {
		return []string{}
	}
	end := len(names)
	if take >= 0 && skip+take < end {
		end = skip + take
	}
	return names[skip:end]
}
