package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/maraichr/framelint/pkg/diag"
	"github.com/maraichr/framelint/pkg/schema"
)

// Resolve builds the registry from every collected declaration. It runs
// single-threaded after the collection barrier; with the same declarations
// the result is identical regardless of collection order.
func Resolve(decls []Decl, opts Options) (*Registry, []diag.Diagnostic) {
	sorted := make([]Decl, len(decls))
	copy(sorted, decls)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].File != sorted[j].File {
			return sorted[i].File < sorted[j].File
		}
		return sorted[i].Line < sorted[j].Line
	})

	r := &resolver{
		opts:   opts,
		byName: make(map[string]*Decl),
		state:  make(map[string]int),
		reg: &Registry{
			schemas:    make(map[string]*schema.Definition),
			unresolved: make(map[string]bool),
		},
	}
	// The first declaration of a name wins; later duplicates are shadowed.
	for i := range sorted {
		d := &sorted[i]
		if _, dup := r.byName[d.Name]; !dup {
			r.byName[d.Name] = d
		}
	}
	for i := range sorted {
		r.resolve(sorted[i].Name)
	}
	return r.reg, r.diags
}

type resolver struct {
	opts   Options
	byName map[string]*Decl
	state  map[string]int
	reg    *Registry
	diags  []diag.Diagnostic
}

const (
	stateUnvisited = iota
	stateVisiting
	stateDone
)

// resolve returns the definition for name, or nil when name is not a
// schema or failed to resolve. Failures are recorded as unresolved so
// bindings to them stay unknown instead of cascading reference errors.
func (r *resolver) resolve(name string) *schema.Definition {
	switch r.state[name] {
	case stateDone:
		return r.reg.schemas[name]
	case stateVisiting:
		d := r.byName[name]
		r.fail(d, diag.CodeSchemaCycle,
			fmt.Sprintf("schema %s is part of an inheritance or composition cycle", name))
		return nil
	}
	d := r.byName[name]
	if d == nil {
		return nil
	}
	r.state[name] = stateVisiting

	var def *schema.Definition
	switch d.Kind {
	case DeclClass:
		def = r.resolveClass(d)
	case DeclCompose:
		def = r.resolveCompose(d)
	case DeclSelect, DeclDrop:
		def = r.resolveSubset(d)
	}

	r.state[name] = stateDone
	if def == nil || r.reg.unresolved[name] {
		return nil
	}
	def.Name = d.Name
	def.File = d.File
	def.Line = d.Line
	r.reg.schemas[name] = def
	return def
}

// resolveClass folds schema bases left to right, then applies the class's
// own declarations, which shadow inherited ones by attribute name.
func (r *resolver) resolveClass(d *Decl) *schema.Definition {
	isSchema := false
	acc := &schema.Definition{AllowExtra: true}
	origin := make(map[string]string)

	for _, base := range d.Bases {
		if r.opts.isRootBase(base) {
			isSchema = true
			continue
		}
		if r.byName[base] == nil {
			continue
		}
		bdef := r.resolve(base)
		if bdef == nil {
			if r.reg.unresolved[base] {
				r.reg.unresolved[d.Name] = true
			}
			continue
		}
		isSchema = true
		if !r.foldBase(d, acc, bdef, origin) {
			return nil
		}
		if !bdef.AllowExtra {
			acc.AllowExtra = false
		}
	}
	if !isSchema || r.reg.unresolved[d.Name] {
		return nil
	}

	for _, c := range d.Columns {
		cc := c.Clone()
		if err := cc.CompilePattern(); err != nil {
			r.fail(d, diag.CodeSchemaConflict,
				fmt.Sprintf("schema %s: invalid pattern for column set '%s': %v", d.Name, c.Name, err))
			return nil
		}
		if prev := findAttr(acc, cc.Name); prev >= 0 {
			acc.Columns[prev] = cc
		} else {
			acc.Columns = append(acc.Columns, cc)
		}
	}
	for _, g := range d.Groups {
		gg := &schema.Group{Name: g.Name, Members: append([]string(nil), g.Members...)}
		replaced := false
		for i, prev := range acc.Groups {
			if prev.Name == gg.Name {
				acc.Groups[i] = gg
				replaced = true
				break
			}
		}
		if !replaced {
			acc.Groups = append(acc.Groups, gg)
		}
	}
	if d.AllowExtra != nil {
		acc.AllowExtra = *d.AllowExtra
	}
	return acc
}

// foldBase merges one resolved base into acc, detecting column type
// conflicts between bases the way the runtime metaclass does over the MRO.
func (r *resolver) foldBase(d *Decl, acc, base *schema.Definition, origin map[string]string) bool {
	for _, c := range base.Columns {
		if i := findAttr(acc, c.Name); i >= 0 {
			prev := acc.Columns[i]
			if prev.Type != c.Type {
				r.fail(d, diag.CodeSchemaConflict, (&schema.ConflictError{
					Column:  c.Name,
					TypeA:   prev.Type,
					SchemaA: origin[c.Name],
					TypeB:   c.Type,
					SchemaB: base.Name,
				}).Error())
				return false
			}
			continue
		}
		acc.Columns = append(acc.Columns, c.Clone())
		origin[c.Name] = base.Name
	}
	for _, g := range base.Groups {
		exists := false
		for _, prev := range acc.Groups {
			if prev.Name == g.Name {
				exists = true
				break
			}
		}
		if !exists {
			acc.Groups = append(acc.Groups, &schema.Group{Name: g.Name, Members: append([]string(nil), g.Members...)})
		}
	}
	return true
}

// resolveCompose handles X = A + B at module level.
func (r *resolver) resolveCompose(d *Decl) *schema.Definition {
	if len(d.Operands) != 2 {
		return nil
	}
	// Both operands must at least be declared; otherwise this assignment
	// composes something other than schemas.
	if r.byName[d.Operands[0]] == nil || r.byName[d.Operands[1]] == nil {
		return nil
	}
	left := r.resolve(d.Operands[0])
	right := r.resolve(d.Operands[1])
	if left == nil || right == nil {
		if r.reg.unresolved[d.Operands[0]] || r.reg.unresolved[d.Operands[1]] {
			r.reg.unresolved[d.Name] = true
		}
		return nil
	}
	combined, err := schema.Compose(left, right, d.Name)
	if err != nil {
		r.fail(d, diag.CodeSchemaConflict, err.Error())
		return nil
	}
	return combined
}

// resolveSubset handles X = S.select([...]) and X = S.drop([...]).
// Members from another schema are rejected like the runtime rejects them;
// unknown members are reported and skipped so checking can continue.
func (r *resolver) resolveSubset(d *Decl) *schema.Definition {
	if len(d.Operands) != 1 || r.byName[d.Operands[0]] == nil {
		return nil
	}
	src := r.resolve(d.Operands[0])
	if src == nil {
		if r.reg.unresolved[d.Operands[0]] {
			r.reg.unresolved[d.Name] = true
		}
		return nil
	}

	verb := "select"
	if d.Kind == DeclDrop {
		verb = "drop"
	}
	var items []string
	for _, it := range d.Items {
		if dot := strings.IndexByte(it, '.'); dot >= 0 {
			r.diags = append(r.diags, diag.Diagnostic{
				File:     d.File,
				Line:     d.Line,
				Column:   d.Col,
				Severity: diag.SeverityError,
				Code:     diag.CodeUnknownColumn,
				Message: fmt.Sprintf("cannot %s '%s': column belongs to %s, not %s",
					verb, it[dot+1:], it[:dot], src.Name),
			})
			continue
		}
		items = append(items, it)
	}

	var def *schema.Definition
	var unknown []string
	if d.Kind == DeclSelect {
		def, unknown = src.Select(items, d.Name)
	} else {
		def, unknown = src.Drop(items, d.Name)
	}
	for _, u := range unknown {
		dg := diag.Diagnostic{
			File:     d.File,
			Line:     d.Line,
			Column:   d.Col,
			Severity: diag.SeverityError,
			Code:     diag.CodeUnknownColumn,
			Message:  fmt.Sprintf("cannot %s '%s': column does not exist in %s", verb, u, src.Name),
		}
		if s := schema.Suggest(u, src.AttrNames()); s != "" {
			dg.Suggestion = s
			dg.Message += fmt.Sprintf(" (did you mean '%s'?)", s)
		}
		r.diags = append(r.diags, dg)
	}
	return def
}

func (r *resolver) fail(d *Decl, code diag.Code, msg string) {
	if d == nil {
		return
	}
	r.reg.unresolved[d.Name] = true
	r.diags = append(r.diags, diag.Diagnostic{
		File:     d.File,
		Line:     d.Line,
		Column:   d.Col,
		Severity: diag.SeverityError,
		Code:     code,
		Message:  msg,
	})
}

func findAttr(d *schema.Definition, name string) int {
	for i, c := range d.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}
