package analysis

import "github.com/maraichr/framelint/pkg/schema"

// Confidence grades how a binding was established. Explicit annotations and
// factory calls are certain; anything propagated through frame operations
// is inferred.
type Confidence string

const (
	ConfidenceCertain  Confidence = "certain"
	ConfidenceInferred Confidence = "inferred"
)

// Binding is the schema attached to one variable at one point in the walk.
// A nil Def is an explicit unknown: it shadows any outer-scope binding
// without offering anything to check against. Bindings are never mutated in
// place; writes produce a replacement so forked branch states stay isolated.
type Binding struct {
	Def   *schema.Definition
	Extra map[string]bool
	Conf  Confidence
	Line  int
}

// Known reports whether the binding carries a checkable schema.
func (b *Binding) Known() bool {
	return b != nil && b.Def != nil
}

// Has reports whether label is addressable through the schema or through a
// column written earlier on this same variable.
func (b *Binding) Has(label string) bool {
	if !b.Known() {
		return false
	}
	if b.Extra[label] {
		return true
	}
	_, ok := b.Def.Lookup(label)
	return ok
}

// withExtra returns a copy of the binding with label added to the overlay.
func (b *Binding) withExtra(label string) *Binding {
	extra := make(map[string]bool, len(b.Extra)+1)
	for k := range b.Extra {
		extra[k] = true
	}
	extra[label] = true
	return &Binding{Def: b.Def, Extra: extra, Conf: b.Conf, Line: b.Line}
}

// inferred returns the binding downgraded to inferred confidence, with its
// own overlay copy so the source variable keeps its state.
func (b *Binding) inferred() *Binding {
	extra := make(map[string]bool, len(b.Extra))
	for k := range b.Extra {
		extra[k] = true
	}
	return &Binding{Def: b.Def, Extra: extra, Conf: ConfidenceInferred, Line: b.Line}
}

func unbound() *Binding { return &Binding{} }

// env is one lexical scope of variable bindings. Function scopes chain to
// the module scope so globals stay visible; assignment always binds in the
// innermost scope, matching Python.
type env struct {
	parent *env
	vars   map[string]*Binding
}

func newEnv(parent *env) *env {
	return &env{parent: parent, vars: make(map[string]*Binding)}
}

func (e *env) lookup(name string) *Binding {
	for s := e; s != nil; s = s.parent {
		if b, ok := s.vars[name]; ok {
			return b
		}
	}
	return nil
}

func (e *env) bind(name string, b *Binding) {
	if b == nil {
		b = unbound()
	}
	e.vars[name] = b
}

// fork copies the scope for one branch arm. The parent chain is shared;
// bindings themselves are immutable so sharing pointers is safe.
func (e *env) fork() *env {
	vars := make(map[string]*Binding, len(e.vars))
	for k, v := range e.vars {
		vars[k] = v
	}
	return &env{parent: e.parent, vars: vars}
}

// mergeVars joins branch arms back into one scope map. A variable bound to
// different schemas across arms downgrades to unknown rather than guessing;
// matching bindings keep their schema with the written-column overlays
// unioned, so no arm's writes produce stale reports after the join.
func mergeVars(branches ...*env) map[string]*Binding {
	keys := make(map[string]bool)
	for _, br := range branches {
		for k := range br.vars {
			keys[k] = true
		}
	}
	merged := make(map[string]*Binding, len(keys))
	for k := range keys {
		var acc *Binding
		for i, br := range branches {
			v := br.lookup(k)
			if i == 0 {
				acc = v
				continue
			}
			acc = mergeBindings(acc, v)
		}
		if acc != nil {
			merged[k] = acc
		}
	}
	return merged
}

func mergeBindings(a, b *Binding) *Binding {
	if !a.Known() && !b.Known() {
		return unbound()
	}
	if !a.Known() || !b.Known() || a.Def != b.Def {
		return unbound()
	}
	extra := make(map[string]bool, len(a.Extra)+len(b.Extra))
	for k := range a.Extra {
		extra[k] = true
	}
	for k := range b.Extra {
		extra[k] = true
	}
	conf := ConfidenceCertain
	if a.Conf == ConfidenceInferred || b.Conf == ConfidenceInferred {
		conf = ConfidenceInferred
	}
	line := a.Line
	if b.Line < line {
		line = b.Line
	}
	return &Binding{Def: a.Def, Extra: extra, Conf: conf, Line: line}
}
