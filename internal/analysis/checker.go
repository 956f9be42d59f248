package analysis

import (
	"fmt"

	"github.com/maraichr/framelint/internal/parser"
	"github.com/maraichr/framelint/internal/registry"
	"github.com/maraichr/framelint/pkg/diag"
	"github.com/maraichr/framelint/pkg/schema"
)

// Options extends the built-in recognition sets from configuration.
type Options struct {
	ExtraFrameTypes []string
	ExtraPreserving []string
}

// Check walks one parsed file against the frozen registry and returns its
// diagnostics. Each file owns its checker, so files can be checked in
// parallel without coordination.
func Check(f *parser.File, reg *registry.Registry, opts Options) []diag.Diagnostic {
	c := &checker{
		file:      f.Path,
		reg:       reg,
		opts:      opts,
		functions: make(map[string]string),
	}
	c.scanReturns(f.Body)
	c.walkStmts(newEnv(nil), f.Body)
	return c.diags
}

type checker struct {
	file      string
	reg       *registry.Registry
	opts      Options
	functions map[string]string
	diags     []diag.Diagnostic
}

// scanReturns records every function whose return annotation names a frame
// schema, so calls bind correctly even before the definition appears.
func (c *checker) scanReturns(stmts []parser.Stmt) {
	for _, s := range stmts {
		switch st := s.(type) {
		case *parser.FuncDef:
			if st.Returns != nil {
				if name := c.annotationSchema(st.Returns); name != "" {
					if _, dup := c.functions[st.Name]; !dup {
						c.functions[st.Name] = name
					}
				}
			}
			c.scanReturns(st.Body)
		case *parser.ClassDef:
			c.scanReturns(st.Body)
		case *parser.If:
			c.scanReturns(st.Body)
			c.scanReturns(st.Else)
		case *parser.For:
			c.scanReturns(st.Body)
			c.scanReturns(st.Else)
		case *parser.While:
			c.scanReturns(st.Body)
			c.scanReturns(st.Else)
		case *parser.With:
			c.scanReturns(st.Body)
		case *parser.Try:
			c.scanReturns(st.Body)
			for _, h := range st.Handlers {
				c.scanReturns(h)
			}
			c.scanReturns(st.Else)
			c.scanReturns(st.Finally)
		}
	}
}

// walkStmts runs one scope to completion, then analyzes the functions
// defined in it with the scope's final bindings as their enclosing state.
func (c *checker) walkStmts(e *env, stmts []parser.Stmt) {
	var funcs []*parser.FuncDef
	c.walkBlock(e, stmts, &funcs)
	for _, fd := range funcs {
		c.walkFunc(e, fd)
	}
}

func (c *checker) walkFunc(parent *env, fd *parser.FuncDef) {
	fe := newEnv(parent)
	for _, p := range fd.Params {
		b := unbound()
		if p.Annotation != nil {
			if name := c.annotationSchema(p.Annotation); name != "" {
				b = stamped(c.bindingFor(name, ConfidenceCertain), fd.Pos.Line)
			}
		}
		// Parameters always shadow enclosing names, annotated or not.
		fe.bind(p.Name, b)
	}
	c.walkStmts(fe, fd.Body)
}

func (c *checker) walkBlock(e *env, stmts []parser.Stmt, funcs *[]*parser.FuncDef) {
	for _, s := range stmts {
		switch st := s.(type) {
		case *parser.FuncDef:
			*funcs = append(*funcs, st)
		case *parser.ClassDef:
			// Methods are checked like functions. Class bodies outside of
			// schema declarations carry nothing worth judging.
			for _, b := range st.Body {
				if m, ok := b.(*parser.FuncDef); ok {
					*funcs = append(*funcs, m)
				}
			}
		case *parser.Assign:
			c.walkAssign(e, st)
		case *parser.AnnAssign:
			c.walkAnnAssign(e, st)
		case *parser.AugAssign:
			c.checkExpr(e, st.Value)
			switch t := st.Target.(type) {
			case *parser.Subscript:
				c.checkWrite(e, t)
			case *parser.Name:
				// x += v keeps x's binding.
			default:
				c.checkExpr(e, t)
			}
		case *parser.If:
			c.checkExpr(e, st.Cond)
			body := e.fork()
			c.walkBlock(body, st.Body, funcs)
			els := e.fork()
			c.walkBlock(els, st.Else, funcs)
			e.vars = mergeVars(body, els)
		case *parser.For:
			c.checkExpr(e, st.Iter)
			body := e.fork()
			c.bindLoopTarget(body, st.Target)
			c.walkBlock(body, st.Body, funcs)
			e.vars = mergeVars(body, e.fork())
			c.walkBlock(e, st.Else, funcs)
		case *parser.While:
			c.checkExpr(e, st.Cond)
			body := e.fork()
			c.walkBlock(body, st.Body, funcs)
			e.vars = mergeVars(body, e.fork())
			c.walkBlock(e, st.Else, funcs)
		case *parser.With:
			for _, item := range st.Items {
				c.checkExpr(e, item)
			}
			c.walkBlock(e, st.Body, funcs)
		case *parser.Try:
			body := e.fork()
			c.walkBlock(body, st.Body, funcs)
			c.walkBlock(body, st.Else, funcs)
			arms := []*env{body}
			for _, h := range st.Handlers {
				he := e.fork()
				c.walkBlock(he, h, funcs)
				arms = append(arms, he)
			}
			e.vars = mergeVars(arms...)
			c.walkBlock(e, st.Finally, funcs)
		case *parser.Return:
			if st.Value != nil {
				c.checkExpr(e, st.Value)
			}
		case *parser.ExprStmt:
			c.checkExpr(e, st.Value)
		}
	}
}

func (c *checker) walkAssign(e *env, st *parser.Assign) {
	c.checkExpr(e, st.Value)
	b := c.valueBinding(e, st.Value)
	for _, t := range st.Targets {
		switch tt := t.(type) {
		case *parser.Name:
			e.bind(tt.ID, stamped(b, st.Pos.Line))
		case *parser.Subscript:
			c.checkWrite(e, tt)
		case *parser.Tuple:
			c.bindUnpack(e, tt.Elts)
		case *parser.List:
			c.bindUnpack(e, tt.Elts)
		case *parser.Attribute:
			c.checkExpr(e, tt)
		}
	}
}

func (c *checker) walkAnnAssign(e *env, st *parser.AnnAssign) {
	if st.Value != nil {
		c.checkExpr(e, st.Value)
	}
	name, ok := st.Target.(*parser.Name)
	if !ok {
		if sub, isSub := st.Target.(*parser.Subscript); isSub {
			c.checkWrite(e, sub)
		} else {
			c.checkExpr(e, st.Target)
		}
		return
	}
	// The annotation wins over the right-hand side when both name a schema.
	if s := c.annotationSchema(st.Annotation); s != "" {
		e.bind(name.ID, stamped(c.bindingFor(s, ConfidenceCertain), st.Pos.Line))
		return
	}
	if st.Value != nil {
		e.bind(name.ID, stamped(c.valueBinding(e, st.Value), st.Pos.Line))
	}
}

// bindUnpack handles tuple and list assignment targets. Nothing recognized
// distributes a schema across an unpacking, so every name goes unknown.
func (c *checker) bindUnpack(e *env, elts []parser.Expr) {
	for _, el := range elts {
		switch t := el.(type) {
		case *parser.Name:
			e.bind(t.ID, unbound())
		case *parser.Subscript:
			c.checkWrite(e, t)
		case *parser.Attribute:
			c.checkExpr(e, t)
		case *parser.Tuple:
			c.bindUnpack(e, t.Elts)
		case *parser.List:
			c.bindUnpack(e, t.Elts)
		}
	}
}

func (c *checker) bindLoopTarget(e *env, target parser.Expr) {
	switch t := target.(type) {
	case *parser.Name:
		e.bind(t.ID, unbound())
	case *parser.Tuple:
		for _, el := range t.Elts {
			c.bindLoopTarget(e, el)
		}
	case *parser.List:
		for _, el := range t.Elts {
			c.bindLoopTarget(e, el)
		}
	}
}

// stamped records the line a binding took effect, for diagnostics.
func stamped(b *Binding, line int) *Binding {
	if b == nil {
		return unbound()
	}
	nb := *b
	nb.Line = line
	return &nb
}

func (c *checker) bindingFor(name string, conf Confidence) *Binding {
	if def, ok := c.reg.Get(name); ok {
		return &Binding{Def: def, Conf: conf}
	}
	// Undeclared or unresolved: shadow without a schema so one bad schema
	// does not cascade into reference errors.
	return unbound()
}

// --- Reference checking ---

func (c *checker) checkExpr(e *env, x parser.Expr) {
	if x == nil {
		return
	}
	switch t := x.(type) {
	case *parser.Attribute:
		c.checkAttribute(e, t)
	case *parser.Subscript:
		c.checkSubscript(e, t)
	case *parser.Call:
		for _, a := range t.Args {
			c.checkExpr(e, a)
		}
		for _, kw := range t.Keywords {
			c.checkExpr(e, kw.Value)
		}
		c.checkExpr(e, t.Func)
	case *parser.BinOp:
		c.checkExpr(e, t.Left)
		c.checkExpr(e, t.Right)
	case *parser.List:
		for _, el := range t.Elts {
			c.checkExpr(e, el)
		}
	case *parser.Tuple:
		for _, el := range t.Elts {
			c.checkExpr(e, el)
		}
	case *parser.Opaque:
		for _, p := range t.Parts {
			c.checkExpr(e, p)
		}
	}
}

func (c *checker) checkAttribute(e *env, attr *parser.Attribute) {
	if base, ok := attr.Value.(*parser.Name); ok {
		b := e.lookup(base.ID)
		switch {
		case b.Known():
			// Data attribute access resolves against labels, like the
			// runtime does: an aliased column is reachable by its alias.
			if !b.Has(attr.Attr) && !schema.IsReservedFrameMethod(attr.Attr) {
				c.reportUnknown(attr.Pos, attr.Attr, b)
			}
		case b == nil && c.reg.Known(base.ID):
			c.checkSchemaAttr(attr, base.ID)
		}
	}
	c.checkExpr(e, attr.Value)
}

// schemaClassAttrs are schema class configuration attributes, legal to
// reference even though they are not columns.
var schemaClassAttrs = map[string]bool{
	"allow_extra_columns": true,
	"enforce_columns":     true,
	"greedy_column_sets":  true,
}

// checkSchemaAttr judges Schema.attr references: typos in direct schema
// attribute access are findings too.
func (c *checker) checkSchemaAttr(attr *parser.Attribute, schemaName string) {
	def, ok := c.reg.Get(schemaName)
	if !ok {
		return
	}
	name := attr.Attr
	if factoryMethods[name] || schemaClassAttrs[name] || schema.IsReservedFrameMethod(name) {
		return
	}
	if def.HasAttr(name) {
		return
	}
	d := diag.Diagnostic{
		File:     c.file,
		Line:     attr.Pos.Line,
		Column:   attr.Pos.Col,
		Severity: diag.SeverityError,
		Code:     diag.CodeUnknownColumn,
		Message:  fmt.Sprintf("column '%s' does not exist in %s", name, def.Name),
	}
	if s := def.SuggestAttr(name); s != "" {
		d.Suggestion = s
		d.Message += fmt.Sprintf(" (did you mean '%s'?)", s)
	}
	c.diags = append(c.diags, d)
}

func (c *checker) checkSubscript(e *env, sub *parser.Subscript) {
	if base, ok := sub.Value.(*parser.Name); ok {
		if b := e.lookup(base.ID); b.Known() {
			switch idx := sub.Index.(type) {
			case *parser.Str:
				if !b.Has(idx.Value) {
					c.reportUnknown(idx.Pos, idx.Value, b)
				}
			case *parser.List:
				for _, el := range idx.Elts {
					if s, isStr := el.(*parser.Str); isStr && !b.Has(s.Value) {
						c.reportUnknown(s.Pos, s.Value, b)
					}
				}
			case *parser.Attribute:
				// df[Schema.col]: the referenced column's label must be
				// addressable on df's own schema.
				if label, resolved := c.schemaColumnKey(idx); resolved && !b.Has(label) {
					c.reportUnknown(sub.Pos, label, b)
				}
			}
			// Any other index shape is computed; deliberately skipped.
		}
	}
	c.checkExpr(e, sub.Value)
	c.checkExpr(e, sub.Index)
}

// checkWrite judges df["col"] = ... targets. The written column joins the
// variable's overlay whether or not it is declared, so later reads of it
// are not re-flagged.
func (c *checker) checkWrite(e *env, sub *parser.Subscript) {
	base, ok := sub.Value.(*parser.Name)
	if !ok {
		c.checkExpr(e, sub.Value)
		c.checkExpr(e, sub.Index)
		return
	}
	b := e.lookup(base.ID)
	if !b.Known() {
		c.checkExpr(e, sub.Index)
		return
	}
	label := ""
	switch idx := sub.Index.(type) {
	case *parser.Str:
		label = idx.Value
	case *parser.Attribute:
		if l, resolved := c.schemaColumnKey(idx); resolved {
			label = l
		}
		c.checkExpr(e, idx)
	default:
		c.checkExpr(e, sub.Index)
		return
	}
	if label == "" || b.Has(label) {
		return
	}
	if !b.Def.AllowExtra {
		c.diags = append(c.diags, diag.Diagnostic{
			File:     c.file,
			Line:     sub.Pos.Line,
			Column:   sub.Pos.Col,
			Severity: diag.SeverityError,
			Code:     diag.CodeUndeclaredColumnMutation,
			Message: fmt.Sprintf("column '%s' is not declared in %s, which does not allow extra columns",
				label, b.Def.Name),
		})
	}
	e.bind(base.ID, b.withExtra(label))
}

// schemaColumnKey resolves Schema.col to the column's subscript label.
func (c *checker) schemaColumnKey(attr *parser.Attribute) (string, bool) {
	base, ok := attr.Value.(*parser.Name)
	if !ok || !c.reg.Known(base.ID) {
		return "", false
	}
	def, ok := c.reg.Get(base.ID)
	if !ok {
		return "", false
	}
	col, ok := def.Attr(attr.Attr)
	if !ok {
		return "", false
	}
	return col.LookupKey(), true
}

func (c *checker) reportUnknown(pos parser.Pos, label string, b *Binding) {
	d := diag.Diagnostic{
		File:     c.file,
		Line:     pos.Line,
		Column:   pos.Col,
		Severity: diag.SeverityError,
		Code:     diag.CodeUnknownColumn,
		Message: fmt.Sprintf("column '%s' does not exist in %s (bound at line %d)",
			label, b.Def.Name, b.Line),
	}
	if s := b.Def.SuggestLabel(label); s != "" {
		d.Suggestion = s
		d.Message += fmt.Sprintf(" (did you mean '%s'?)", s)
	}
	c.diags = append(c.diags, d)
}

// --- Binding resolution ---

// valueBinding resolves the schema carried by an expression. It never
// reports reads; checkExpr owns those. The only diagnostics it emits are
// combination conflicts and select/drop arguments, which are invisible to
// the plain read walk.
func (c *checker) valueBinding(e *env, x parser.Expr) *Binding {
	switch t := x.(type) {
	case *parser.Name:
		if b := e.lookup(t.ID); b.Known() {
			nb := *b
			return &nb
		}
		return nil
	case *parser.Call:
		return c.callBinding(e, t)
	case *parser.Subscript:
		recv := c.valueBinding(e, t.Value)
		if !recv.Known() {
			return nil
		}
		switch idx := t.Index.(type) {
		case *parser.Str:
			// Scalar column extraction yields a series, not a frame.
			return nil
		case *parser.Tuple:
			return nil
		case *parser.List:
			labels := make([]string, 0, len(idx.Elts))
			for _, el := range idx.Elts {
				s, isStr := el.(*parser.Str)
				if !isStr {
					return nil
				}
				labels = append(labels, s.Value)
			}
			return c.subsetBinding(recv, labels, true, false)
		default:
			// Boolean masks and other computed filters keep the schema.
			return recv.inferred()
		}
	}
	return nil
}

func (c *checker) callBinding(e *env, call *parser.Call) *Binding {
	switch fn := call.Func.(type) {
	case *parser.Subscript:
		// DataFrame[Schema](...) instantiation.
		if base, ok := fn.Value.(*parser.Name); ok && c.isFrameType(base.ID) {
			if s, ok := fn.Index.(*parser.Name); ok {
				return c.bindingFor(s.ID, ConfidenceCertain)
			}
		}
	case *parser.Name:
		if fn.ID == "concat" {
			return c.concatBinding(e, call)
		}
		if s, ok := c.functions[fn.ID]; ok {
			return c.bindingFor(s, ConfidenceCertain)
		}
		if c.reg.Known(fn.ID) {
			// Schema() instantiates an empty typed frame.
			return c.bindingFor(fn.ID, ConfidenceCertain)
		}
	case *parser.Attribute:
		return c.methodBinding(e, call, fn)
	}
	return nil
}

func (c *checker) methodBinding(e *env, call *parser.Call, fn *parser.Attribute) *Binding {
	if factoryMethods[fn.Attr] {
		if b := c.factoryBinding(call, fn); b != nil {
			return b
		}
	}
	switch fn.Attr {
	case "merge", "join":
		left := c.valueBinding(e, fn.Value)
		var right *Binding
		if len(call.Args) > 0 {
			right = c.valueBinding(e, call.Args[0])
		}
		if !left.Known() || !right.Known() {
			return nil
		}
		return c.composeBinding(call.Pos, left, right)
	case "concat":
		return c.concatBinding(e, call)
	case "select":
		recv := c.valueBinding(e, fn.Value)
		labels, ok := literalLabels(call)
		if !recv.Known() || !ok {
			return nil
		}
		return c.subsetBinding(recv, labels, true, true)
	case "drop":
		recv := c.valueBinding(e, fn.Value)
		labels, ok := literalLabels(call)
		if !recv.Known() || !ok {
			return nil
		}
		return c.subsetBinding(recv, labels, false, true)
	}
	if c.isPreserving(fn.Attr) {
		recv := c.valueBinding(e, fn.Value)
		if !recv.Known() {
			return nil
		}
		return recv.inferred()
	}
	return nil
}

// factoryBinding recognizes the constructor shapes that name a schema:
// PandasFrame.from_schema(df, S), tf.PolarsFrame.from_schema(df, S),
// S.from_pandas(df), S.read_csv(path), S().read_parquet(path), and a
// schema= keyword on any of them.
func (c *checker) factoryBinding(call *parser.Call, fn *parser.Attribute) *Binding {
	for _, kw := range call.Keywords {
		if kw.Name != "schema" {
			continue
		}
		if s, ok := kw.Value.(*parser.Name); ok && c.reg.Known(s.ID) {
			return c.bindingFor(s.ID, ConfidenceCertain)
		}
	}
	switch recv := fn.Value.(type) {
	case *parser.Attribute:
		if c.isFrameType(recv.Attr) && len(call.Args) >= 2 {
			if s, ok := call.Args[1].(*parser.Name); ok {
				return c.bindingFor(s.ID, ConfidenceCertain)
			}
		}
	case *parser.Name:
		if c.reg.Known(recv.ID) {
			return c.bindingFor(recv.ID, ConfidenceCertain)
		}
		if c.isFrameType(recv.ID) && len(call.Args) >= 2 {
			if s, ok := call.Args[1].(*parser.Name); ok {
				return c.bindingFor(s.ID, ConfidenceCertain)
			}
		}
	case *parser.Call:
		if inner, ok := recv.Func.(*parser.Name); ok && c.reg.Known(inner.ID) {
			return c.bindingFor(inner.ID, ConfidenceCertain)
		}
	}
	return nil
}

func (c *checker) concatBinding(e *env, call *parser.Call) *Binding {
	var bound []*Binding
	for _, n := range listNames(call) {
		if b := e.lookup(n); b.Known() {
			bound = append(bound, b)
		}
	}
	if len(bound) < 2 {
		return nil
	}
	acc := bound[0]
	for _, b := range bound[1:] {
		acc = c.composeBinding(call.Pos, acc, b)
		if !acc.Known() {
			return acc
		}
	}
	return acc
}

// composeBinding unions two frame schemas the way merge/concat do. A type
// conflict is reported at the combination site and the result goes unknown.
func (c *checker) composeBinding(pos parser.Pos, left, right *Binding) *Binding {
	def, err := schema.Compose(left.Def, right.Def, left.Def.Name+"_"+right.Def.Name)
	if err != nil {
		c.diags = append(c.diags, diag.Diagnostic{
			File:     c.file,
			Line:     pos.Line,
			Column:   pos.Col,
			Severity: diag.SeverityError,
			Code:     diag.CodeSchemaConflict,
			Message:  fmt.Sprintf("cannot combine %s and %s: %v", left.Def.Name, right.Def.Name, err),
		})
		return unbound()
	}
	extra := make(map[string]bool, len(left.Extra)+len(right.Extra))
	for k := range left.Extra {
		extra[k] = true
	}
	for k := range right.Extra {
		extra[k] = true
	}
	return &Binding{Def: def, Extra: extra, Conf: ConfidenceInferred, Line: left.Line}
}

// subsetBinding synthesizes the schema surviving a projection or drop.
// report controls whether unknown labels are flagged here; subscript
// projections are already covered by the read walk.
func (c *checker) subsetBinding(recv *Binding, labels []string, keep, report bool) *Binding {
	var def *schema.Definition
	var unknown []string
	if keep {
		def, unknown = recv.Def.SelectLabels(labels, "")
	} else {
		def, unknown = recv.Def.DropLabels(labels, "")
	}
	extra := make(map[string]bool)
	if keep {
		for _, u := range unknown {
			if recv.Extra[u] {
				extra[u] = true
			} else if report {
				c.reportUnknown(parser.Pos{Line: recv.Line}, u, recv)
			}
		}
	} else {
		dropped := make(map[string]bool, len(labels))
		for _, l := range labels {
			dropped[l] = true
		}
		for k := range recv.Extra {
			if !dropped[k] {
				extra[k] = true
			}
		}
		if report {
			for _, u := range unknown {
				if !recv.Extra[u] {
					c.reportUnknown(parser.Pos{Line: recv.Line}, u, recv)
				}
			}
		}
	}
	return &Binding{Def: def, Extra: extra, Conf: ConfidenceInferred, Line: recv.Line}
}
