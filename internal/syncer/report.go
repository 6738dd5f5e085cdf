package syncer

import (
	"github.com/schmitthub/nugetsync/internal/semver"
)

// Report collects the per-package results of a run.
type Report struct {
	DryRun  bool
	Results []*PushResult
}

// Add appends a package result. Nil results are ignored.
func (r *Report) Add(res *PushResult) {
	if res != nil {
		r.Results = append(r.Results, res)
	}
}

// Totals sums version counts over all packages.
type Totals struct {
	Packages    int `json:"packages"`
	Missing     int `json:"missing"`
	Pushed      int `json:"pushed"`
	Skipped     int `json:"skipped"`
	Unavailable int `json:"unavailable"`
}

func (r *Report) Totals() Totals {
	t := Totals{Packages: len(r.Results)}
	for _, res := range r.Results {
		t.Missing += len(res.Missing)
		t.Pushed += len(res.Pushed)
		t.Skipped += len(res.Skipped)
		t.Unavailable += len(res.Unavailable)
	}
	return t
}

// PackageSummary is the serializable form of one PushResult.
type PackageSummary struct {
	Package     string   `json:"package"`
	Missing     []string `json:"missing"`
	Pushed      []string `json:"pushed"`
	Skipped     []string `json:"skipped"`
	Unavailable []string `json:"unavailable"`
}

// Summaries renders every result with version strings.
func (r *Report) Summaries() []PackageSummary {
	out := make([]PackageSummary, 0, len(r.Results))
	for _, res := range r.Results {
		out = append(out, PackageSummary{
			Package:     res.Package,
			Missing:     semver.Strings(res.Missing),
			Pushed:      semver.Strings(res.Pushed),
			Skipped:     semver.Strings(res.Skipped),
			Unavailable: semver.Strings(res.Unavailable),
		})
	}
	return out
}
