package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate reports every invalid setting. Empty registry URLs pass; the
// sync command requires them separately.
func (c *Config) Validate() error {
	var errs []error

	for _, u := range []struct{ key, value string }{
		{"package_source", c.PackageSource},
		{"package_target", c.PackageTarget},
	} {
		if u.value == "" {
			continue
		}
		if err := validateURL(u.value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", u.key, err))
		}
	}

	for _, d := range []struct {
		key   string
		value int64
	}{
		{"push_timeout", int64(c.PushTimeout)},
		{"retry_budget", int64(c.RetryBudget)},
		{"enumeration_timeout", int64(c.EnumerationTimeout)},
		{"http_timeout", int64(c.HTTPTimeout)},
		{"page_size", int64(c.PageSize)},
	} {
		if d.value <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be positive", d.key))
		}
	}

	return errors.Join(errs...)
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q is not an http(s) URL", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}
