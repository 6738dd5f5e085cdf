package registry

import (
	"github.com/schmitthub/nugetsync/internal/semver"
)

// PackageIdentity names one version of one package.
type PackageIdentity struct {
	Name    string
	Version *semver.Version
}

func (p PackageIdentity) String() string {
	return p.Name + " " + p.Version.String()
}

// Endpoint is a registry URL plus its optional credential. The token is
// opaque and never printed.
type Endpoint struct {
	URL   string
	Token string
}

// String renders the endpoint with the token redacted.
func (e Endpoint) String() string {
	if e.Token == "" {
		return e.URL + " (anonymous)"
	}
	return e.URL + " (token: ***)"
}

// HasToken reports whether a credential is configured.
func (e Endpoint) HasToken() bool {
	return e.Token != ""
}

// Service index resource types used by NuGetClient.
const (
	resourcePackageBaseAddress = "PackageBaseAddress/3.0.0"
	resourcePackagePublish     = "PackagePublish/2.0.0"
)

// searchQueryTypes lists accepted search resource types in preference order.
var searchQueryTypes = []string{
	"SearchQueryService/3.5.0",
	"SearchQueryService/3.0.0-rc",
	"SearchQueryService/3.0.0-beta",
	"SearchQueryService",
}

// serviceIndex is the NuGet v3 service index document (index.json).
type serviceIndex struct {
	Version   string            `json:"version"`
	Resources []serviceResource `json:"resources"`
}

type serviceResource struct {
	ID   string `json:"@id"`
	Type string `json:"@type"`
}

// find returns the @id of the first resource matching any of types,
// honouring the order of types.
func (s *serviceIndex) find(types ...string) (string, bool) {
	for _, t := range types {
		for _, r := range s.Resources {
			if r.Type == t && r.ID != "" {
				return r.ID, true
			}
		}
	}
	return "", false
}

// versionsResponse is the flat container version listing.
type versionsResponse struct {
	Versions []string `json:"versions"`
}

// searchResponse is the subset of the search query service response we read.
type searchResponse struct {
	TotalHits int `json:"totalHits"`
	Data      []struct {
		ID string `json:"id"`
	} `json:"data"`
}
