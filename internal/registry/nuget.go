package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/schmitthub/nugetsync/internal/iostreams"
	"github.com/schmitthub/nugetsync/internal/semver"
)

const (
	defaultTimeout   = 100 * time.Second
	defaultUserAgent = "nugetsync"

	// basicAuthUser is the user name sent with token credentials. Feeds that
	// take a personal access token (Azure Artifacts, GitHub Packages) ignore it.
	basicAuthUser = "az"

	apiKeyHeader          = "X-NuGet-ApiKey"
	protocolVersionHeader = "X-NuGet-Protocol-Version"
	protocolVersion       = "4.1.0"

	maxErrorBody = 1024
)

// NuGetClient talks to one NuGet v3 feed.
// Implements the Client interface. Not safe for concurrent use.
type NuGetClient struct {
	endpoint   Endpoint
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	log        iostreams.Logger

	index     *serviceIndex
	published map[string]struct{}
}

// Option configures a NuGetClient.
type Option func(*NuGetClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(n *NuGetClient) {
		n.httpClient = c
	}
}

// WithTimeout sets the timeout for read requests. Pushes use the timeout
// passed to Push instead.
func WithTimeout(d time.Duration) Option {
	return func(n *NuGetClient) {
		n.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(n *NuGetClient) {
		n.userAgent = ua
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l iostreams.Logger) Option {
	return func(n *NuGetClient) {
		n.log = l
	}
}

// NewNuGetClient creates a client for the feed whose service index lives at
// endpoint.URL (usually ending in index.json).
func NewNuGetClient(endpoint Endpoint, opts ...Option) *NuGetClient {
	nop := zerolog.Nop()
	c := &NuGetClient{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		timeout:    defaultTimeout,
		userAgent:  defaultUserAgent,
		log:        &nop,
		published:  make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	// Apply timeout to client if not custom
	if c.httpClient.Timeout == 0 {
		c.httpClient.Timeout = c.timeout
	}

	return c
}

// Endpoint returns the endpoint this client talks to.
func (c *NuGetClient) Endpoint() Endpoint {
	return c.endpoint
}

// ListVersions lists versions from the flat container (PackageBaseAddress).
func (c *NuGetClient) ListVersions(ctx context.Context, packageName string) ([]*semver.Version, error) {
	base, err := c.resource(ctx, resourcePackageBaseAddress)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/%s/index.json", base, url.PathEscape(strings.ToLower(packageName)))

	resp, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		c.log.Debug().Str("package", packageName).Str("feed", c.endpoint.URL).Msg("package not found")
		return []*semver.Version{}, nil
	default:
		return nil, statusError(u, packageName, resp)
	}

	var vr versionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, &NetworkError{URL: u, Message: "failed to decode response", Err: err}
	}

	versions := make([]*semver.Version, 0, len(vr.Versions))
	for _, s := range vr.Versions {
		v, err := semver.Parse(s)
		if err != nil {
			c.log.Warn().Err(err).Str("package", packageName).Str("version", s).Msg("ignoring unparseable version")
			continue
		}
		versions = append(versions, v)
	}

	return versions, nil
}

// ListPackageNames queries the search service with an empty query.
func (c *NuGetClient) ListPackageNames(ctx context.Context, skip, take int, includePrerelease bool) ([]string, bool, error) {
	search, err := c.resource(ctx, searchQueryTypes...)
	if err != nil {
		return nil, false, err
	}

	q := url.Values{}
	q.Set("q", "")
	q.Set("skip", strconv.Itoa(skip))
	q.Set("take", strconv.Itoa(take))
	q.Set("prerelease", strconv.FormatBool(includePrerelease))
	q.Set("semVerLevel", "2.0.0")
	u := search + "?" + q.Encode()

	resp, err := c.get(ctx, u)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, statusError(u, "", resp)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, false, &NetworkError{URL: u, Message: "failed to decode response", Err: err}
	}

	names := make([]string, 0, len(sr.Data))
	for _, d := range sr.Data {
		if d.ID != "" {
			names = append(names, d.ID)
		}
	}

	return names, take > 0 && len(sr.Data) >= take, nil
}

// Download fetches the nupkg from the flat container into destPath.
// A 404 means the artifact is not available and yields false, nil.
func (c *NuGetClient) Download(ctx context.Context, id PackageIdentity, destPath string) (bool, error) {
	base, err := c.resource(ctx, resourcePackageBaseAddress)
	if err != nil {
		return false, err
	}

	lowerID := strings.ToLower(id.Name)
	lowerVersion := strings.ToLower(id.Version.Normalized())
	u := fmt.Sprintf("%s/%s/%s/%s.%s.nupkg",
		base, url.PathEscape(lowerID), url.PathEscape(lowerVersion),
		url.PathEscape(lowerID), url.PathEscape(lowerVersion))

	resp, err := c.get(ctx, u)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return false, nil
	default:
		return false, statusError(u, id.Name, resp)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return false, fmt.Errorf("creating %s: %w", destPath, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(destPath)
		return false, &NetworkError{URL: u, Message: "failed to read package content", Err: err}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(destPath)
		return false, fmt.Errorf("writing %s: %w", destPath, err)
	}

	c.log.Debug().Str("package", id.Name).Str("version", id.Version.String()).Str("path", destPath).Msg("downloaded package")
	return true, nil
}

// Push uploads each file to the publish endpoint in order. The whole batch
// shares one deadline of timeout. Files this client already published are
// not sent again, so a batch can be retried after a conflict.
func (c *NuGetClient) Push(ctx context.Context, paths []string, timeout time.Duration) error {
	if len(paths) == 0 {
		return nil
	}

	publish, err := c.resource(ctx, resourcePackagePublish)
	if err != nil {
		return &PushError{Message: "resolving publish endpoint", Err: err}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// The read timeout must not cut large uploads short; ctx bounds them.
	pushClient := *c.httpClient
	pushClient.Timeout = 0

	for _, p := range paths {
		if _, done := c.published[p]; done {
			continue
		}
		if err := c.pushOne(ctx, &pushClient, publish, p); err != nil {
			return err
		}
		c.published[p] = struct{}{}
	}
	return nil
}

func (c *NuGetClient) pushOne(ctx context.Context, client *http.Client, publishURL, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &PushError{Path: path, Message: "opening package", Err: err}
	}
	defer f.Close()

	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("package", "package.nupkg")
		if err == nil {
			_, err = io.Copy(part, f)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, http.MethodPut, publishURL, pr)
	if err != nil {
		return &PushError{Path: path, Message: "building request", Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(protocolVersionHeader, protocolVersion)
	if c.endpoint.Token != "" {
		req.Header.Set(apiKeyHeader, c.endpoint.Token)
	}

	resp, err := c.do(client, req)
	if err != nil {
		return &PushError{Path: path, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		c.log.Debug().Str("path", path).Int("status", resp.StatusCode).Msg("pushed package")
		return nil
	case resp.StatusCode == http.StatusConflict:
		return &ConflictError{Path: path, Message: failureMessage(resp)}
	default:
		return &PushError{Path: path, StatusCode: resp.StatusCode, Message: failureMessage(resp)}
	}
}

// resource resolves a service index resource URL, without trailing slash.
func (c *NuGetClient) resource(ctx context.Context, types ...string) (string, error) {
	idx, err := c.serviceIndex(ctx)
	if err != nil {
		return "", err
	}
	id, ok := idx.find(types...)
	if !ok {
		return "", fmt.Errorf("%w: %s at %s", ErrNoResource, strings.Join(types, ", "), c.endpoint.URL)
	}
	return strings.TrimSuffix(id, "/"), nil
}

// serviceIndex fetches and caches the feed's service index.
func (c *NuGetClient) serviceIndex(ctx context.Context) (*serviceIndex, error) {
	if c.index != nil {
		return c.index, nil
	}

	resp, err := c.get(ctx, c.endpoint.URL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(c.endpoint.URL, "", resp)
	}

	var idx serviceIndex
	if err := json.NewDecoder(resp.Body).Decode(&idx); err != nil {
		return nil, &NetworkError{URL: c.endpoint.URL, Message: "failed to decode service index", Err: err}
	}
	if len(idx.Resources) == 0 {
		return nil, &RegistryError{URL: c.endpoint.URL, StatusCode: resp.StatusCode, Message: "service index lists no resources"}
	}

	c.index = &idx
	return c.index, nil
}

func (c *NuGetClient) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return c.do(c.httpClient, req)
}

func (c *NuGetClient) newRequest(ctx context.Context, method, u string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, &NetworkError{URL: u, Message: "failed to create request", Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.endpoint.Token != "" {
		req.SetBasicAuth(basicAuthUser, c.endpoint.Token)
	}
	return req, nil
}

func (c *NuGetClient) do(client *http.Client, req *http.Request) (*http.Response, error) {
	c.log.Debug().Str("method", req.Method).Str("url", req.URL.Redacted()).Msg("registry request")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: req.URL.Redacted(), Message: "request failed", Err: err}
	}
	return resp, nil
}

func statusError(u, pkg string, resp *http.Response) *RegistryError {
	return &RegistryError{
		URL:        u,
		Package:    pkg,
		StatusCode: resp.StatusCode,
		Message:    readErrorBody(resp),
	}
}

// failureMessage renders a failed push the way NuGet tooling reports it,
// keeping the registry's reason phrase and body so conflicts name the version.
func failureMessage(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if b := strings.TrimSpace(string(body)); b != "" {
		if strings.HasPrefix(b, reason) {
			reason = b
		} else {
			reason += " - " + b
		}
	}
	return fmt.Sprintf("Response status code does not indicate success: %d (%s)", resp.StatusCode, reason)
}

func readErrorBody(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}
	return http.StatusText(resp.StatusCode)
}
