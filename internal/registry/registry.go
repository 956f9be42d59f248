package registry

import (
	"sort"

	"github.com/maraichr/framelint/pkg/schema"
)

// Options configures schema recognition during collection and resolution.
type Options struct {
	// ExtraBases are additional root base class names that mark a class as
	// a schema, on top of the built-in ones.
	ExtraBases []string
}

// rootBases mark a class as a schema when they appear in its base chain.
var rootBases = map[string]bool{
	"BaseSchema":     true,
	"DataFrameModel": true,
	"DataFrame":      true,
	"BaseFrame":      true,
}

func (o Options) isRootBase(name string) bool {
	if rootBases[name] {
		return true
	}
	for _, b := range o.ExtraBases {
		if b == name {
			return true
		}
	}
	return false
}

// DeclKind separates class declarations from module-level derivations.
type DeclKind string

const (
	DeclClass   DeclKind = "class"
	DeclCompose DeclKind = "compose"
	DeclSelect  DeclKind = "select"
	DeclDrop    DeclKind = "drop"
)

// Decl is one raw schema declaration collected from a single file. Decls
// are produced per file in parallel and resolved together afterwards.
type Decl struct {
	Kind DeclKind
	Name string
	File string
	Line int
	Col  int

	// Class declarations.
	Bases      []string
	Columns    []*schema.Column
	Groups     []*schema.Group
	AllowExtra *bool // nil means the default (true)

	// Compose: Operands are the two sides. Select/Drop: Operands[0] is the
	// source schema and Items the member attribute names.
	Operands []string
	Items    []string
}

// Registry holds every resolved schema for a run. It is written during
// resolution, frozen once, and read-only afterwards.
type Registry struct {
	schemas    map[string]*schema.Definition
	unresolved map[string]bool
	frozen     bool
}

// Get returns a resolved schema by name. Consulting the registry before
// Freeze is a fault in the calling pass, not a lint finding.
func (r *Registry) Get(name string) (*schema.Definition, bool) {
	r.mustBeFrozen()
	d, ok := r.schemas[name]
	return d, ok
}

// Unresolved reports whether name was declared but failed to resolve.
// Bindings to unresolved schemas stay unknown so one declaration error does
// not cascade into reference errors.
func (r *Registry) Unresolved(name string) bool {
	r.mustBeFrozen()
	return r.unresolved[name]
}

// Known reports whether name is any declared schema, resolved or not.
func (r *Registry) Known(name string) bool {
	r.mustBeFrozen()
	if r.unresolved[name] {
		return true
	}
	_, ok := r.schemas[name]
	return ok
}

// Names returns all resolved schema names in sorted order.
func (r *Registry) Names() []string {
	r.mustBeFrozen()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Freeze marks the registry read-only. Resolve must have completed first.
func (r *Registry) Freeze() {
	r.frozen = true
}

func (r *Registry) mustBeFrozen() {
	if !r.frozen {
		panic("registry: consulted before freeze")
	}
}
