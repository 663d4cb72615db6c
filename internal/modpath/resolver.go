package modpath

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/jacob-carlborg/ddc/internal/ast"
)

// Conflict is one import whose manifest entry's declared version does not
// satisfy that entry's constraint, or whose declared version or constraint
// string itself doesn't parse.
type Conflict struct {
	ImportPath []string
	Declared   string
	Constraint string
	Reason     string
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s: declared version %q does not satisfy %q: %s",
		joinPath(c.ImportPath), c.Declared, c.Constraint, c.Reason)
}

func joinPath(path []string) string {
	out := ""

	for i, p := range path {
		if i > 0 {
			out += "."
		}

		out += p
	}

	return out
}

// Resolver checks a module's parsed import declarations against a
// Manifest.
type Resolver struct {
	manifest *Manifest
}

// NewResolver builds a Resolver over m.
func NewResolver(m *Manifest) *Resolver {
	return &Resolver{manifest: m}
}

// CheckModule walks every DeclImport in arena reachable from module's
// Inner list and returns every version conflict found. It never mutates
// the arena and never touches internal/diag — import-version mismatches
// are a build-graph concern, not a parse error.
func (r *Resolver) CheckModule(arena *ast.Arena, module ast.DeclID) []Conflict {
	var conflicts []Conflict

	if module == ast.NoDecl {
		return conflicts
	}

	mod := arena.Decl(module)

	for _, id := range mod.Inner {
		if id == ast.NoDecl {
			continue
		}

		d := arena.Decl(id)
		if d.Kind != ast.DeclImport {
			continue
		}

		if c, ok := r.checkImport(d.ImportPath); ok {
			conflicts = append(conflicts, c)
		}
	}

	return conflicts
}

func (r *Resolver) checkImport(path []string) (Conflict, bool) {
	entry, found := r.manifest.Lookup(path)
	if !found || entry.Constraint == "" {
		return Conflict{}, false
	}

	declared, err := semver.NewVersion(entry.Version)
	if err != nil {
		return Conflict{
			ImportPath: path, Declared: entry.Version, Constraint: entry.Constraint,
			Reason: fmt.Sprintf("unparseable version: %v", err),
		}, true
	}

	constraint, err := semver.NewConstraint(entry.Constraint)
	if err != nil {
		return Conflict{
			ImportPath: path, Declared: entry.Version, Constraint: entry.Constraint,
			Reason: fmt.Sprintf("unparseable constraint: %v", err),
		}, true
	}

	if !constraint.Check(declared) {
		return Conflict{
			ImportPath: path, Declared: entry.Version, Constraint: entry.Constraint,
			Reason: "version out of range",
		}, true
	}

	return Conflict{}, false
}
