package syncer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/schmitthub/nugetsync/internal/iostreams"
	"github.com/schmitthub/nugetsync/internal/metrics"
	"github.com/schmitthub/nugetsync/internal/registry"
	"github.com/schmitthub/nugetsync/internal/semver"
)

// conflictVersion finds version tokens in a registry conflict message.
// Revision and dotted prerelease parts are optional extensions of the plain
// major.minor.patch[-label] form.
var conflictVersion = regexp.MustCompile(`\d+\.\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z]+(?:\.[0-9A-Za-z]+)*)?`)

// PushResult describes what one pipeline run did with the requested versions.
type PushResult struct {
	Package string

	// Missing were found in the source but not in the target.
	Missing []*semver.Version
	// Pushed were published to the target.
	Pushed []*semver.Version
	// Skipped were rejected by the target as already present.
	Skipped []*semver.Version
	// Unavailable were listed by the source but not downloadable.
	Unavailable []*semver.Version
}

// stagedArtifact is a downloaded nupkg waiting to be pushed. The pipeline
// call that created it owns the file.
type stagedArtifact struct {
	Version  *semver.Version
	Path     string
	Original string
}

// Pipeline downloads versions from the source into scratch files and pushes
// them to the target as one batch, dropping versions the target reports as
// conflicts and retrying the rest.
type Pipeline struct {
	source  registry.Client
	target  registry.Client
	config  Config
	log     iostreams.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewPipeline creates a Pipeline. Zero config fields take their defaults.
func NewPipeline(source, target registry.Client, config Config, opts ...Option) *Pipeline {
	o := newOptions(opts)
	return &Pipeline{
		source:  source,
		target:  target,
		config:  config.withDefaults(),
		log:     o.log,
		metrics: o.metrics,
		now:     o.now,
	}
}

// Push stages and publishes versions of packageName. Every scratch file it
// creates is removed before it returns.
func (p *Pipeline) Push(ctx context.Context, packageName string, versions []*semver.Version) (*PushResult, error) {
	result := &PushResult{Package: packageName}
	if len(versions) == 0 {
		return result, nil
	}

	start := p.now()

	var staged []*stagedArtifact
	defer func() {
		for _, a := range staged {
			p.discard(a)
		}
	}()

	for _, v := range versions {
		a := &stagedArtifact{
			Version:  v,
			Path:     filepath.Join(p.config.ScratchDir, uuid.NewString()+".nupkg"),
			Original: v.String(),
		}
		// Track before downloading so a partial file is still cleaned up.
		staged = append(staged, a)

		ok, err := p.source.Download(ctx, registry.PackageIdentity{Name: packageName, Version: v}, a.Path)
		if err != nil {
			return nil, &DownloadFailedError{Package: packageName, Version: v, Err: err}
		}
		if !ok {
			staged = staged[:len(staged)-1]
			p.discard(a)
			result.Unavailable = append(result.Unavailable, v)
			p.metrics.VersionUnavailable()
			p.log.Warn().Str("package", packageName).Str("version", a.Original).Msg("version not available from source, skipping")
			continue
		}
		p.log.Debug().Str("package", packageName).Str("version", a.Original).Msg("staged version")
	}

	for len(staged) > 0 {
		p.metrics.PushAttempt()
		err := p.target.Push(ctx, artifactPaths(staged), p.config.PushTimeout)
		if err == nil {
			for _, a := range staged {
				result.Pushed = append(result.Pushed, a.Version)
			}
			p.metrics.VersionsPushed(len(staged))
			p.log.Info().Str("package", packageName).Strs("versions", semver.Strings(result.Pushed)).Msg("pushed versions")
			return result, nil
		}

		var conflict *registry.ConflictError
		if !errors.As(err, &conflict) {
			return nil, &PushFatalError{Package: packageName, Err: err}
		}

		i := conflictingArtifact(staged, packageName, conflict)
		if i < 0 {
			return nil, &PushFatalError{Package: packageName, Err: fmt.Errorf("unrecognized conflict: %w", err)}
		}

		a := staged[i]
		staged = slices.Delete(staged, i, i+1)
		p.discard(a)
		result.Skipped = append(result.Skipped, a.Version)
		p.metrics.VersionSkipped()
		p.log.Info().Str("package", packageName).Str("version", a.Original).Msg("version already exists in target, skipping")

		if elapsed := p.now().Sub(start); len(staged) > 0 && elapsed > p.config.RetryBudget {
			return nil, fmt.Errorf("pushing %s: %w after %s", packageName, ErrPushTimeout, elapsed.Round(time.Second))
		}
	}

	return result, nil
}

// discard removes a staged file. A file that was never written is fine.
func (p *Pipeline) discard(a *stagedArtifact) {
	if err := os.Remove(a.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		p.log.Warn().Err(err).Str("path", a.Path).Msg("failed to remove staged package")
	}
}

// conflictingArtifact returns the index of the staged artifact the conflict
// refers to, or -1. The rejected file path wins when the client reports one;
// otherwise the first version named in the message after the package ID is
// removed from it.
func conflictingArtifact(staged []*stagedArtifact, packageName string, conflict *registry.ConflictError) int {
	if conflict.Path != "" {
		for i, a := range staged {
			if a.Path == conflict.Path {
				return i
			}
		}
	}

	msg := conflict.Message
	if packageName != "" {
		msg = removeFold(msg, packageName)
	}
	for _, token := range conflictVersion.FindAllString(msg, -1) {
		v, err := semver.Parse(token)
		if err != nil {
			continue
		}
		for i, a := range staged {
			if a.Version.Equal(v) {
				return i
			}
		}
	}
	return -1
}

// removeFold deletes every case-insensitive occurrence of sub from s.
func removeFold(s, sub string) string {
	lower, lsub := strings.ToLower(s), strings.ToLower(sub)
	if len(lower) != len(s) || len(lsub) != len(sub) {
		return s
	}
	var b strings.Builder
	for {
		i := strings.Index(lower, lsub)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		b.WriteByte(' ')
		s, lower = s[i+len(sub):], lower[i+len(sub):]
	}
}

func artifactPaths(staged []*stagedArtifact) []string {
	paths := make([]string, 0, len(staged))
	for _, a := range staged {
		paths = append(paths, a.Path)
	}
	return paths
}
