// Package semver provides the NuGet flavour of semantic versions used to
// decide which package versions are missing from a registry.
//
// Parsing and prerelease precedence come from Masterminds/semver. NuGet adds an
// optional fourth "revision" component (1.2.3.4) which is kept alongside the
// parsed value and ordered between the patch and the prerelease label.
// A zero revision is the same version as no revision (1.0.0.0 == 1.0.0).
// Prerelease labels compare case-insensitively (1.0.0-Beta == 1.0.0-beta).
package semver

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	mmsemver "github.com/Masterminds/semver/v3"
)

// fourPart matches NuGet legacy versions with a revision component.
var fourPart = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)\.(\d+)([-+].*)?$`)

// Version is a parsed package version.
type Version struct {
	sv *mmsemver.Version

	// key is sv with the prerelease label lower-cased, used for ordering.
	key *mmsemver.Version

	// Revision is the NuGet fourth numeric component, 0 when absent.
	Revision uint64

	// Original is the string the version was parsed from.
	Original string
}

// Parse parses a NuGet version string (1.2, 1.2.3, 1.2.3.4, each optionally
// followed by -prerelease and +metadata).
func Parse(s string) (*Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("invalid version %q: empty string", s)
	}

	input := s
	var revision uint64
	if m := fourPart.FindStringSubmatch(s); m != nil {
		r, err := strconv.ParseUint(m[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid version %q: revision: %w", s, err)
		}
		revision = r
		input = m[1] + "." + m[2] + "." + m[3] + m[5]
	}

	sv, err := mmsemver.NewVersion(input)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", s, err)
	}
	key, err := mmsemver.NewVersion(strings.ToLower(input))
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", s, err)
	}

	return &Version{sv: sv, key: key, Revision: revision, Original: s}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) *Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsValid reports whether s parses as a version.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

func (v *Version) Major() uint64 { return v.sv.Major() }
func (v *Version) Minor() uint64 { return v.sv.Minor() }
func (v *Version) Patch() uint64 { return v.sv.Patch() }

// Prerelease returns the prerelease label without the leading dash.
func (v *Version) Prerelease() string { return v.sv.Prerelease() }

// Metadata returns the build metadata without the leading plus.
func (v *Version) Metadata() string { return v.sv.Metadata() }

// IsPrerelease reports whether the version carries a prerelease label.
func (v *Version) IsPrerelease() bool { return v.sv.Prerelease() != "" }

// Normalized returns the canonical form: three (or four, when the revision is
// non-zero) numeric components plus the prerelease label. Build metadata is
// dropped because it does not take part in equality.
func (v *Version) Normalized() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d.%d", v.sv.Major(), v.sv.Minor(), v.sv.Patch())
	if v.Revision > 0 {
		fmt.Fprintf(&b, ".%d", v.Revision)
	}
	if pre := v.sv.Prerelease(); pre != "" {
		b.WriteString("-")
		b.WriteString(pre)
	}
	return b.String()
}

// String returns the original text when available, the normalized form otherwise.
func (v *Version) String() string {
	if v.Original != "" {
		return v.Original
	}
	return v.Normalized()
}

// Compare returns -1, 0 or 1. Ordering is major, minor, patch, revision, then
// prerelease precedence (a release sorts after all of its prereleases).
// Labels are compared ignoring case.
func (v *Version) Compare(o *Version) int {
	if c := core(v).Compare(core(o)); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Revision, o.Revision); c != 0 {
		return c
	}
	return v.key.Compare(o.key)
}

// Equal reports whether v and o denote the same version. Metadata is ignored;
// the prerelease label must match apart from case.
func (v *Version) Equal(o *Version) bool {
	if v == nil || o == nil {
		return v == o
	}
	return v.Compare(o) == 0
}

func core(v *Version) *mmsemver.Version {
	return mmsemver.New(v.sv.Major(), v.sv.Minor(), v.sv.Patch(), "", "")
}

// Sort orders versions ascending in place.
func Sort(vs []*Version) {
	slices.SortStableFunc(vs, func(a, b *Version) int { return a.Compare(b) })
}

// Strings renders versions with String, preserving order.
func Strings(vs []*Version) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.String())
	}
	return out
}
