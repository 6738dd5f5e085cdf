package registrytest

import (
	"sort"
	"strings"
	"sync"

	"github.com/schmitthub/nugetsync/internal/registry"
	"github.com/schmitthub/nugetsync/internal/semver"
)

// store is the package table shared by FakeClient and Feed.
type store struct {
	mu     sync.Mutex
	order  []string
	pkgs   map[string]*storedPackage
	pushed []registry.PackageIdentity
}

type storedPackage struct {
	name     string
	versions []*storedVersion
}

type storedVersion struct {
	version *semver.Version
	content []byte
}

func newStore() *store {
	return &store{pkgs: make(map[string]*storedPackage)}
}

func key(name string) string { return strings.ToLower(name) }

// lookup must be called with mu held.
func (s *store) lookup(name, version string) (*storedPackage, *storedVersion) {
	p := s.pkgs[key(name)]
	if p == nil {
		return nil, nil
	}
	want := semver.MustParse(version).Normalized()
	for _, v := range p.versions {
		if strings.EqualFold(v.version.Normalized(), want) {
			return p, v
		}
	}
	return p, nil
}

// add stores a version and reports false if it was already present.
func (s *store) add(name, version string, content []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, v := s.lookup(name, version)
	if v != nil {
		return false
	}
	if p == nil {
		p = &storedPackage{name: name}
		s.pkgs[key(name)] = p
		s.order = append(s.order, key(name))
	}
	p.versions = append(p.versions, &storedVersion{version: semver.MustParse(version), content: content})
	return true
}

func (s *store) setContent(name, version string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, v := s.lookup(name, version); v != nil {
		v.content = content
	}
}

func (s *store) versions(name string) []*semver.Version {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pkgs[key(name)]
	if p == nil {
		return []*semver.Version{}
	}
	out := make([]*semver.Version, 0, len(p.versions))
	for _, v := range p.versions {
		out = append(out, v.version)
	}
	semver.Sort(out)
	return out
}

func (s *store) content(name, version string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !semver.IsValid(version) {
		return nil, false
	}
	_, v := s.lookup(name, version)
	if v == nil || v.content == nil {
		return nil, false
	}
	return v.content, true
}

// names returns display names in insertion order. Without prerelease,
// packages that only carry prerelease versions are left out.
func (s *store) names(includePrerelease bool) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.order))
	for _, k := range s.order {
		p := s.pkgs[k]
		if includePrerelease || hasStable(p) {
			out = append(out, p.name)
		}
	}
	return out
}

func hasStable(p *storedPackage) bool {
	for _, v := range p.versions {
		if !v.version.IsPrerelease() {
			return true
		}
	}
	return false
}

func (s *store) recordPush(name, version string) {
	s.mu.Lock()
	s.pushed = append(s.pushed, registry.PackageIdentity{Name: name, Version: semver.MustParse(version)})
	s.mu.Unlock()
}

func (s *store) pushedIdentities() []registry.PackageIdentity {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]registry.PackageIdentity, len(s.pushed))
	copy(out, s.pushed)
	return out
}

// pushedStrings renders pushed identities as "Name Version", sorted.
func (s *store) pushedStrings() []string {
	ids := s.pushedIdentities()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	sort.Strings(out)
	return out
}
