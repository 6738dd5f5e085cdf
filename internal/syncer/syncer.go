// Package syncer copies package versions that exist in a source NuGet
// registry but not in a target one.
//
// Diff computes what is missing, Pipeline stages and pushes it with
// conflict-aware retry, Enumerator pages the source catalog, and Syncer ties
// them together for one package or the whole catalog. Work is strictly
// sequential: one package is listed, diffed, downloaded and pushed before the
// next begins.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/schmitthub/nugetsync/internal/iostreams"
	"github.com/schmitthub/nugetsync/internal/metrics"
	"github.com/schmitthub/nugetsync/internal/registry"
	"github.com/schmitthub/nugetsync/internal/semver"
)

// Syncer holds the source and target registries for one run.
type Syncer struct {
	source     registry.Client
	target     registry.Client
	config     Config
	pipeline   *Pipeline
	enumerator *Enumerator
	log        iostreams.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// New creates a Syncer copying from source to target.
func New(source, target registry.Client, config Config, opts ...Option) *Syncer {
	config = config.withDefaults()
	o := newOptions(opts)
	return &Syncer{
		source:     source,
		target:     target,
		config:     config,
		pipeline:   NewPipeline(source, target, config, opts...),
		enumerator: NewEnumerator(source, config, opts...),
		log:        o.log,
		metrics:    o.metrics,
		now:        o.now,
	}
}

// FindMissing lists packageName on both sides and diffs the results.
func (s *Syncer) FindMissing(ctx context.Context, packageName string, includePrerelease bool) ([]*semver.Version, error) {
	source, err := s.source.ListVersions(ctx, packageName)
	if err != nil {
		return nil, fmt.Errorf("listing %s in source: %w", packageName, err)
	}
	target, err := s.target.ListVersions(ctx, packageName)
	if err != nil {
		return nil, fmt.Errorf("listing %s in target: %w", packageName, err)
	}

	s.log.Debug().
		Str("package", packageName).
		Int("source", len(source)).
		Int("target", len(target)).
		Msg("listed versions")

	return Diff(source, target, includePrerelease), nil
}

// SyncPackage copies the versions of packageName missing from the target.
// In dry-run mode it only reports them.
func (s *Syncer) SyncPackage(ctx context.Context, packageName string, includePrerelease bool) (*PushResult, error) {
	start := s.now()

	missing, err := s.FindMissing(ctx, packageName, includePrerelease)
	if err != nil {
		s.metrics.Failure(metrics.ReasonList)
		return nil, err
	}
	s.metrics.VersionsMissing(len(missing))

	result := &PushResult{Package: packageName, Missing: missing}
	switch {
	case len(missing) == 0:
		s.log.Info().Str("package", packageName).Msg("target is up to date")
	case s.config.DryRun:
		s.log.Info().Str("package", packageName).Strs("missing", semver.Strings(missing)).Msg("dry run, not pushing")
	default:
		s.log.Info().Str("package", packageName).Strs("missing", semver.Strings(missing)).Msg("syncing missing versions")
		pushed, err := s.pipeline.Push(ctx, packageName, missing)
		if err != nil {
			s.metrics.Failure(failureReason(err))
			return nil, err
		}
		pushed.Missing = missing
		result = pushed
	}

	s.metrics.PackageProcessed(s.now().Sub(start))
	return result, nil
}

// SyncAll enumerates the source catalog and syncs each package in turn.
// The first failure stops the run; the report holds the packages finished
// before it.
func (s *Syncer) SyncAll(ctx context.Context, includePrerelease bool) (*Report, error) {
	report := &Report{DryRun: s.config.DryRun}

	names, err := s.enumerator.ListAllPackageNames(ctx, includePrerelease)
	if err != nil {
		if errors.Is(err, ErrEnumerationTimeout) {
			s.metrics.Failure(metrics.ReasonTimeout)
		} else {
			s.metrics.Failure(metrics.ReasonEnumerate)
		}
		return report, err
	}
	s.log.Info().Int("packages", len(names)).Msg("discovered source packages")

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		result, err := s.SyncPackage(ctx, name, includePrerelease)
		if err != nil {
			return report, fmt.Errorf("syncing %s: %w", name, err)
		}
		report.Add(result)
	}

	return report, nil
}

// Sync runs SyncPackage for one name, or SyncAll when packageName is empty.
func (s *Syncer) Sync(ctx context.Context, packageName string, includePrerelease bool) (*Report, error) {
	if packageName == "" {
		return s.SyncAll(ctx, includePrerelease)
	}

	report := &Report{DryRun: s.config.DryRun}
	result, err := s.SyncPackage(ctx, packageName, includePrerelease)
	if err != nil {
		return report, err
	}
	report.Add(result)
	return report, nil
}

func failureReason(err error) string {
	var downloadErr *DownloadFailedError
	switch {
	case errors.As(err, &downloadErr):
		return metrics.ReasonDownload
	case errors.Is(err, ErrPushTimeout):
		return metrics.ReasonTimeout
	default:
		return metrics.ReasonPush
	}
}
