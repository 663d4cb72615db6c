// Package modpath resolves the qualified import paths a parsed module
// declares against a project manifest, checking any pinned version
// constraint with semver. This is bookkeeping over an already-parsed
// import list, not semantic analysis: no symbol table, no type
// information, and a mismatch produces a Conflict value rather than an
// error the caller must abort on.
package modpath

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// PackageEntry is one manifest-declared package: the dotted path it's
// published under, the version it publishes, and an optional semver
// constraint that the declared version is checked against whenever the
// package is imported.
type PackageEntry struct {
	Path       string `json:"path"`
	Version    string `json:"version"`
	Constraint string `json:"constraint,omitempty"`
}

// Manifest is the project-level dependency declaration a `ddc` project
// carries alongside its sources, expressed as plain JSON (see SPEC_FULL.md
// §3 for why JSON was picked over a fetched TOML/YAML library).
type Manifest struct {
	Module   string         `json:"module"`
	Packages []PackageEntry `json:"packages"`
}

// LoadManifest decodes a Manifest from r.
func LoadManifest(r io.Reader) (*Manifest, error) {
	var m Manifest

	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("modpath: decode manifest: %w", err)
	}

	return &m, nil
}

// Lookup finds the manifest entry for a dotted import path, matching
// either the exact path or the longest declared prefix (so `import
// std.io.file;` resolves against a manifest entry for `std.io`).
func (m *Manifest) Lookup(path []string) (PackageEntry, bool) {
	joined := strings.Join(path, ".")

	best := PackageEntry{}
	found := false

	for _, pkg := range m.Packages {
		if pkg.Path == joined {
			return pkg, true
		}

		if strings.HasPrefix(joined, pkg.Path+".") && len(pkg.Path) > len(best.Path) {
			best = pkg
			found = true
		}
	}

	return best, found
}
