package syncer

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/schmitthub/nugetsync/internal/iostreams"
	"github.com/schmitthub/nugetsync/internal/registry"
)

// Enumerator pages through a registry's whole package catalog.
type Enumerator struct {
	client   registry.Client
	pageSize int
	timeout  time.Duration
	log      iostreams.Logger
	now      func() time.Time
}

// NewEnumerator creates an Enumerator using config's page size and timeout.
func NewEnumerator(client registry.Client, config Config, opts ...Option) *Enumerator {
	config = config.withDefaults()
	o := newOptions(opts)
	return &Enumerator{
		client:   client,
		pageSize: config.PageSize,
		timeout:  config.EnumerationTimeout,
		log:      o.log,
		now:      o.now,
	}
}

// ListAllPackageNames returns every package name in the catalog, sorted and
// deduplicated case-insensitively (the first casing seen wins).
//
// Paging advances by the number of names received. It ends on an empty page,
// or on a page shorter than the largest one seen so far. A server that caps
// take below the page size is therefore still read to the end.
func (e *Enumerator) ListAllPackageNames(ctx context.Context, includePrerelease bool) ([]string, error) {
	start := e.now()
	seen := make(map[string]struct{})
	names := make([]string, 0)
	// full is the largest page served so far, the server's effective take.
	full := 0

	for skip := 0; ; {
		if elapsed := e.now().Sub(start); elapsed > e.timeout {
			return nil, fmt.Errorf("%w after %s with %d names collected", ErrEnumerationTimeout, elapsed.Round(time.Second), len(names))
		}

		page, _, err := e.client.ListPackageNames(ctx, skip, e.pageSize, includePrerelease)
		if err != nil {
			return nil, fmt.Errorf("listing package names at offset %d: %w", skip, err)
		}
		e.log.Debug().Int("skip", skip).Int("count", len(page)).Msg("fetched catalog page")
		if len(page) == 0 {
			break
		}
		skip += len(page)
		last := len(page) < full
		full = max(full, len(page))

		for _, name := range page {
			k := strings.ToLower(name)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			names = append(names, name)
		}
		if last {
			break
		}
	}

	slices.SortFunc(names, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return names, nil
}
