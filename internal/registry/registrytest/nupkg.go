// Package registrytest provides test doubles for registry.Client: an
// in-memory FakeClient and an httptest-backed NuGet v3 Feed.
package registrytest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

type nuspec struct {
	XMLName  xml.Name `xml:"package"`
	Xmlns    string   `xml:"xmlns,attr,omitempty"`
	Metadata struct {
		ID          string `xml:"id"`
		Version     string `xml:"version"`
		Authors     string `xml:"authors"`
		Description string `xml:"description"`
	} `xml:"metadata"`
}

// BuildPackage returns a minimal nupkg archive holding only a nuspec.
func BuildPackage(name, version string) ([]byte, error) {
	var spec nuspec
	spec.Xmlns = "http://schemas.microsoft.com/packaging/2013/05/nuspec.xsd"
	spec.Metadata.ID = name
	spec.Metadata.Version = version
	spec.Metadata.Authors = "nugetsync"
	spec.Metadata.Description = "test package"

	doc, err := xml.MarshalIndent(spec, "", "  ")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name + ".nuspec")
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(append([]byte(xml.Header), doc...)); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MustBuildPackage is BuildPackage that panics on error.
func MustBuildPackage(name, version string) []byte {
	b, err := BuildPackage(name, version)
	if err != nil {
		panic(err)
	}
	return b
}

// ReadIdentity returns the id and version recorded in a nupkg's nuspec.
func ReadIdentity(content []byte) (id, version string, err error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", "", fmt.Errorf("reading nupkg: %w", err)
	}

	for _, f := range zr.File {
		if path.Dir(f.Name) != "." || !strings.HasSuffix(strings.ToLower(f.Name), ".nuspec") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", "", err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", "", err
		}

		var spec nuspec
		if err := xml.Unmarshal(data, &spec); err != nil {
			return "", "", fmt.Errorf("parsing %s: %w", f.Name, err)
		}
		if spec.Metadata.ID == "" || spec.Metadata.Version == "" {
			return "", "", fmt.Errorf("%s: missing id or version", f.Name)
		}
		return spec.Metadata.ID, spec.Metadata.Version, nil
	}

	return "", "", fmt.Errorf("nupkg has no nuspec")
}

// ReadIdentityFile is ReadIdentity for a file on disk.
func ReadIdentityFile(p string) (id, version string, err error) {
	content, err := os.ReadFile(p)
	if err != nil {
		return "", "", err
	}
	return ReadIdentity(content)
}

func conflictMessage(name, version string) string {
	return fmt.Sprintf("Conflict - The feed already contains '%s %s'.", name, version)
}
