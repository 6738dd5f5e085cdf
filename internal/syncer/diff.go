package syncer

import (
	"github.com/schmitthub/nugetsync/internal/semver"
)

// Diff returns the versions in source that target does not hold, in source
// order with duplicates removed. Without includePrerelease, prerelease
// versions are dropped from the result; inputs are never filtered.
func Diff(source, target []*semver.Version, includePrerelease bool) []*semver.Version {
	missing := make([]*semver.Version, 0)
	for _, v := range source {
		if v == nil || contains(target, v) || contains(missing, v) {
			continue
		}
		if !includePrerelease && v.IsPrerelease() {
			continue
		}
		missing = append(missing, v)
	}
	return missing
}

func contains(vs []*semver.Version, v *semver.Version) bool {
	for _, o := range vs {
		if v.Equal(o) {
			return true
		}
	}
	return false
}
