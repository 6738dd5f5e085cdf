package semver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		normalized string
		revision   uint64
		prerelease string
		wantErr    bool
	}{
		{name: "full semver", input: "1.2.3", normalized: "1.2.3"},
		{name: "major.minor", input: "2.1", normalized: "2.1.0"},
		{name: "with prerelease", input: "1.0.3-alpha1", normalized: "1.0.3-alpha1", prerelease: "alpha1"},
		{name: "dotted prerelease", input: "1.0.0-beta.2", normalized: "1.0.0-beta.2", prerelease: "beta.2"},
		{name: "metadata dropped from normalized", input: "1.0.0+build.5", normalized: "1.0.0"},
		{name: "four part", input: "1.2.3.4", normalized: "1.2.3.4", revision: 4},
		{name: "four part zero revision", input: "1.2.3.0", normalized: "1.2.3"},
		{name: "four part with prerelease", input: "1.2.3.4-rc", normalized: "1.2.3.4-rc", revision: 4, prerelease: "rc"},
		{name: "surrounding whitespace", input: " 3.0.0 ", normalized: "3.0.0"},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "not-a-version", wantErr: true},
		{name: "five part", input: "1.2.3.4.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.normalized, got.Normalized())
			assert.Equal(t, tt.revision, got.Revision)
			assert.Equal(t, tt.prerelease, got.Prerelease())
			assert.Equal(t, tt.prerelease != "", got.IsPrerelease())
		})
	}
}

func TestString_PrefersOriginal(t *testing.T) {
	v := MustParse("1.0")
	assert.Equal(t, "1.0", v.String())
	assert.Equal(t, "1.0.0", v.Normalized())
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"2.0.0", "1.9.9", 1},
		{"1.0.0-alpha", "1.0.0", -1},
		{"1.0.0-alpha", "1.0.0-beta", -1},
		{"1.0.3-alpha2", "1.0.3-alpha1", 1},
		{"1.0.0.1", "1.0.0", 1},
		{"1.0.0.1", "1.0.1", -1},
		{"1.0.0.0", "1.0.0", 0},
		{"1.0.0.1-rc", "1.0.0.1", -1},
		{"1.0.0+a", "1.0.0+b", 0},
		{"1.0", "1.0.0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			a, b := MustParse(tt.a), MustParse(tt.b)
			assert.Equal(t, tt.want, a.Compare(b))
			assert.Equal(t, -tt.want, b.Compare(a))
			assert.Equal(t, tt.want == 0, a.Equal(b))
		})
	}
}

func TestEqual_PrereleaseLabelMustMatch(t *testing.T) {
	assert.False(t, MustParse("1.0.3-alpha1").Equal(MustParse("1.0.3-alpha2")))
	assert.False(t, MustParse("1.0.3-alpha1").Equal(MustParse("1.0.3")))
	assert.True(t, MustParse("1.0.3-alpha1").Equal(MustParse("1.0.3-alpha1")))
}

func TestEqual_PrereleaseLabelIgnoresCase(t *testing.T) {
	a, b := MustParse("1.0.0-Beta"), MustParse("1.0.0-beta")
	assert.True(t, a.Equal(b))
	assert.Equal(t, 0, a.Compare(b))
	assert.Equal(t, "1.0.0-Beta", a.String())
	assert.Equal(t, -1, MustParse("1.0.0-ALPHA").Compare(MustParse("1.0.0-beta")))
	assert.True(t, MustParse("1.0.0.1-RC.1").Equal(MustParse("1.0.0.1-rc.1")))
}

func TestEqual_Nil(t *testing.T) {
	var a, b *Version
	assert.True(t, a.Equal(b))
	assert.False(t, MustParse("1.0.0").Equal(nil))
}

func TestSort(t *testing.T) {
	vs := []*Version{
		MustParse("1.0.3-alpha1"),
		MustParse("1.0.2"),
		MustParse("1.0.3"),
		MustParse("1.0.1"),
		MustParse("1.0.2.5"),
	}
	Sort(vs)
	assert.Equal(t, []string{"1.0.1", "1.0.2", "1.0.2.5", "1.0.3-alpha1", "1.0.3"}, Strings(vs))
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("1.2.3"))
	assert.False(t, IsValid("x.y.z"))
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("bogus") })
}
