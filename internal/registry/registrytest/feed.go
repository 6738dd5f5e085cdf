package registrytest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/schmitthub/nugetsync/internal/registry"
	"github.com/schmitthub/nugetsync/internal/semver"
)

// Feed is a NuGet v3 feed served by httptest. It implements the service
// index, the flat container, the search query service and package publish.
//
// When Token is set, reads require basic auth with Token as the password and
// pushes require it as the X-NuGet-ApiKey header.
type Feed struct {
	*store

	Server *httptest.Server
	Token  string

	mu         sync.Mutex
	requests   []string
	pushStatus int
}

// NewFeed starts a feed. Call Close when done.
func NewFeed() *Feed {
	f := &Feed{store: newStore()}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v3/index.json", f.handleIndex)
	mux.HandleFunc("GET /v3-flatcontainer/{id}/index.json", f.handleVersions)
	mux.HandleFunc("GET /v3-flatcontainer/{id}/{version}/{file}", f.handleDownload)
	mux.HandleFunc("GET /query", f.handleSearch)
	mux.HandleFunc("PUT /api/v2/package", f.handlePush)

	f.Server = httptest.NewServer(f.logRequests(mux))
	return f
}

// SetPushStatus makes every push answer with status instead of storing the
// package. Zero restores normal publishing.
func (f *Feed) SetPushStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushStatus = status
}

// Close shuts the server down.
func (f *Feed) Close() {
	f.Server.Close()
}

// URL is the service index URL.
func (f *Feed) URL() string {
	return f.Server.URL + "/v3/index.json"
}

// Endpoint returns the feed URL with its token.
func (f *Feed) Endpoint() registry.Endpoint {
	return registry.Endpoint{URL: f.URL(), Token: f.Token}
}

// AddPackage publishes versions of name. Invalid versions panic.
func (f *Feed) AddPackage(name string, versions ...string) *Feed {
	for _, v := range versions {
		f.add(name, v, MustBuildPackage(name, v))
	}
	return f
}

// MarkUnavailable keeps version listed but makes its download 404.
func (f *Feed) MarkUnavailable(name, version string) *Feed {
	f.setContent(name, version, nil)
	return f
}

// Versions returns the versions of name currently held, ascending.
func (f *Feed) Versions(name string) []string {
	return semver.Strings(f.versions(name))
}

// Pushed returns every identity accepted by publish, sorted as "Name Version".
func (f *Feed) Pushed() []string {
	return f.pushedStrings()
}

// Requests returns how many requests had a "METHOD /path" line starting with prefix.
func (f *Feed) Requests(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, r := range f.requests {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

func (f *Feed) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (f *Feed) authorized(r *http.Request) bool {
	if f.Token == "" {
		return true
	}
	_, pass, ok := r.BasicAuth()
	return ok && pass == f.Token
}

func (f *Feed) handleIndex(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	base := f.Server.URL
	writeJSON(w, map[string]any{
		"version": "3.0.0",
		"resources": []map[string]string{
			{"@id": base + "/v3-flatcontainer/", "@type": "PackageBaseAddress/3.0.0"},
			{"@id": base + "/query", "@type": "SearchQueryService/3.0.0-beta"},
			{"@id": base + "/api/v2/package", "@type": "PackagePublish/2.0.0"},
		},
	})
}

func (f *Feed) handleVersions(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	versions := f.versions(r.PathValue("id"))
	if len(versions) == 0 {
		http.NotFound(w, r)
		return
	}
	out := make([]string, 0, len(versions))
	for _, v := range versions {
		out = append(out, strings.ToLower(v.Normalized()))
	}
	writeJSON(w, map[string]any{"versions": out})
}

func (f *Feed) handleDownload(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, version := r.PathValue("id"), r.PathValue("version")
	if r.PathValue("file") != id+"."+version+".nupkg" {
		http.NotFound(w, r)
		return
	}
	content, ok := f.content(id, version)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(content)
}

func (f *Feed) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	q := r.URL.Query()
	skip, _ := strconv.Atoi(q.Get("skip"))
	take, err := strconv.Atoi(q.Get("take"))
	if err != nil {
		take = 20
	}
	prerelease, _ := strconv.ParseBool(q.Get("prerelease"))

	names := f.names(prerelease)
	page := paginate(names, skip, take)
	data := make([]map[string]string, 0, len(page))
	for _, n := range page {
		data = append(data, map[string]string{"id": n})
	}
	writeJSON(w, map[string]any{"totalHits": len(names), "data": data})
}

func (f *Feed) handlePush(w http.ResponseWriter, r *http.Request) {
	if f.Token != "" && r.Header.Get("X-NuGet-ApiKey") != f.Token {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	f.mu.Lock()
	status := f.pushStatus
	f.mu.Unlock()
	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	file, _, err := r.FormFile("package")
	if err != nil {
		http.Error(w, fmt.Sprintf("missing package: %v", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	name, version, err := ReadIdentity(content)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !semver.IsValid(version) {
		http.Error(w, "invalid version "+version, http.StatusBadRequest)
		return
	}

	if !f.add(name, version, content) {
		http.Error(w, conflictMessage(name, version), http.StatusConflict)
		return
	}
	f.recordPush(name, version)
	w.WriteHeader(http.StatusCreated)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
