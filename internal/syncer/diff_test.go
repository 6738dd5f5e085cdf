package syncer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schmitthub/nugetsync/internal/semver"
)

func versions(ss ...string) []*semver.Version {
	out := make([]*semver.Version, 0, len(ss))
	for _, s := range ss {
		out = append(out, semver.MustParse(s))
	}
	return out
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name              string
		source            []string
		target            []string
		includePrerelease bool
		want              []string
	}{
		{
			name:   "stable only",
			source: []string{"1.0.1", "1.0.2", "1.0.3-alpha1"},
			target: []string{"1.0.1"},
			want:   []string{"1.0.2"},
		},
		{
			name:              "with prerelease",
			source:            []string{"1.0.1", "1.0.2", "1.0.3-alpha1"},
			target:            []string{"1.0.1"},
			includePrerelease: true,
			want:              []string{"1.0.2", "1.0.3-alpha1"},
		},
		{
			name:   "empty target",
			source: []string{"2.0.0", "1.0.0"},
			want:   []string{"2.0.0", "1.0.0"},
		},
		{
			name:   "empty source",
			target: []string{"1.0.0"},
			want:   []string{},
		},
		{
			name:   "equal values in different spellings",
			source: []string{"1.0.0.0", "1.0.0+build.5", "1.2"},
			target: []string{"1.0.0", "1.2.0"},
			want:   []string{},
		},
		{
			name:   "revision is a distinct version",
			source: []string{"1.0.0.1"},
			target: []string{"1.0.0"},
			want:   []string{"1.0.0.1"},
		},
		{
			name:              "prerelease label case is ignored",
			source:            []string{"1.0.0-Beta", "1.0.0-RC.2"},
			target:            []string{"1.0.0-beta"},
			includePrerelease: true,
			want:              []string{"1.0.0-RC.2"},
		},
		{
			name:              "prerelease label must match apart from case",
			source:            []string{"1.0.0-beta.2"},
			target:            []string{"1.0.0-beta.1"},
			includePrerelease: true,
			want:              []string{"1.0.0-beta.2"},
		},
		{
			name:   "target prerelease does not hide stable",
			source: []string{"1.0.0"},
			target: []string{"1.0.0-rc1"},
			want:   []string{"1.0.0"},
		},
		{
			name:   "duplicates in source collapse",
			source: []string{"1.0.0", "1.0.0", "1.0.0.0"},
			want:   []string{"1.0.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(versions(tt.source...), versions(tt.target...), tt.includePrerelease)
			assert.Equal(t, tt.want, semver.Strings(got))
		})
	}
}

func TestDiff_SetDifference(t *testing.T) {
	s := versions("1.0.0", "1.1.0-beta", "1.1.0", "2.0.0-rc.1", "2.0.0", "2.0.0.3")
	targets := [][]*semver.Version{
		nil,
		versions("1.0.0"),
		versions("1.1.0-beta", "2.0.0"),
		versions("3.0.0"),
		s,
	}

	for _, target := range targets {
		all := Diff(s, target, true)
		for _, v := range s {
			inTarget := contains(target, v)
			assert.Equal(t, !inTarget, contains(all, v), "version %s", v)
		}

		stable := Diff(s, target, false)
		for _, v := range all {
			assert.Equal(t, !v.IsPrerelease(), contains(stable, v), "version %s", v)
		}
		assert.Len(t, stable, len(all)-countPrerelease(all))
	}
}

func TestDiff_Idempotent(t *testing.T) {
	sets := [][]*semver.Version{
		nil,
		versions("1.0.0"),
		versions("1.0.0", "1.0.1-alpha", "2.0.0.1"),
	}
	for _, s := range sets {
		assert.Empty(t, Diff(s, s, true))
		assert.Empty(t, Diff(s, s, false))
	}
}

func TestDiff_Deterministic(t *testing.T) {
	source := versions("3.0.0", "1.0.0", "2.0.0")
	first := semver.Strings(Diff(source, nil, false))
	for range 5 {
		assert.Equal(t, first, semver.Strings(Diff(source, nil, false)))
	}
}

func countPrerelease(vs []*semver.Version) int {
	n := 0
	for _, v := range vs {
		if v.IsPrerelease() {
			n++
		}
	}
	return n
}
