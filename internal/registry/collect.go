package registry

import (
	"fmt"

	"github.com/maraichr/framelint/internal/parser"
	"github.com/maraichr/framelint/pkg/diag"
	"github.com/maraichr/framelint/pkg/schema"
)

// Collect gathers raw schema declarations from one parsed file and warns
// about column names that shadow frame methods. It is pure and safe to run
// concurrently across files.
func Collect(f *parser.File, opts Options) ([]Decl, []diag.Diagnostic) {
	c := &collector{file: f.Path, opts: opts}
	c.stmts(f.Body)
	return c.decls, c.diags
}

type collector struct {
	file  string
	opts  Options
	decls []Decl
	diags []diag.Diagnostic
}

// stmts walks module-level statements, descending into guard blocks but
// not into function bodies. Schemas local to a function are invisible to
// other files, and to the original runtime, alike.
func (c *collector) stmts(body []parser.Stmt) {
	for _, s := range body {
		switch st := s.(type) {
		case *parser.ClassDef:
			c.classDecl(st)
		case *parser.Assign:
			c.assignDecl(st)
		case *parser.If:
			c.stmts(st.Body)
			c.stmts(st.Else)
		case *parser.Try:
			c.stmts(st.Body)
			for _, h := range st.Handlers {
				c.stmts(h)
			}
			c.stmts(st.Else)
			c.stmts(st.Finally)
		case *parser.With:
			c.stmts(st.Body)
		}
	}
}

// classDecl records any class with bases; resolution later decides whether
// the base chain reaches a schema root.
func (c *collector) classDecl(cd *parser.ClassDef) {
	if cd.Name == "" || len(cd.Bases) == 0 {
		return
	}
	d := Decl{
		Kind: DeclClass,
		Name: cd.Name,
		File: c.file,
		Line: cd.Pos.Line,
		Col:  cd.Pos.Col,
	}
	for _, b := range cd.Bases {
		if name := baseName(b); name != "" {
			d.Bases = append(d.Bases, name)
		}
	}
	if len(d.Bases) == 0 {
		return
	}

	for _, s := range cd.Body {
		switch st := s.(type) {
		case *parser.Assign:
			c.bodyAssign(&d, st)
		case *parser.AnnAssign:
			c.bodyAnnAssign(&d, st)
		}
	}

	for _, col := range d.Columns {
		if schema.IsReservedFrameMethod(col.Name) {
			c.diags = append(c.diags, diag.Diagnostic{
				File:     c.file,
				Line:     cd.Pos.Line,
				Column:   cd.Pos.Col,
				Severity: diag.SeverityWarning,
				Code:     diag.CodeReservedColumn,
				Message: fmt.Sprintf(
					"column name '%s' in %s shadows a pandas/polars method under attribute access",
					col.Name, cd.Name),
				Suggestion: col.Name + "_value",
			})
		}
	}

	c.decls = append(c.decls, d)
}

// bodyAssign handles name = Column(...), ColumnSet, ColumnGroup, and the
// allow_extra_columns flag inside a class body.
func (c *collector) bodyAssign(d *Decl, st *parser.Assign) {
	if len(st.Targets) != 1 {
		return
	}
	name, ok := st.Targets[0].(*parser.Name)
	if !ok {
		return
	}
	if name.ID == "allow_extra_columns" {
		if b, ok := st.Value.(*parser.BoolLit); ok {
			v := b.Value
			d.AllowExtra = &v
		}
		return
	}
	call, ok := st.Value.(*parser.Call)
	if !ok {
		return
	}
	c.descriptor(d, name.ID, call, nil)
}

// bodyAnnAssign handles both annotation-style declarations (name: int) and
// annotated descriptors (name: int = Column(...)).
func (c *collector) bodyAnnAssign(d *Decl, st *parser.AnnAssign) {
	name, ok := st.Target.(*parser.Name)
	if !ok {
		return
	}
	if call, ok := st.Value.(*parser.Call); ok {
		c.descriptor(d, name.ID, call, st.Annotation)
		return
	}
	if st.Value != nil {
		return
	}
	// Bare annotation declares a plain column typed by the annotation.
	d.Columns = append(d.Columns, &schema.Column{
		Name: name.ID,
		Type: valueType(st.Annotation),
		Kind: schema.MembershipExact,
	})
}

// descriptor interprets a Column/ColumnSet/ColumnGroup call.
func (c *collector) descriptor(d *Decl, name string, call *parser.Call, ann parser.Expr) {
	switch callName(call.Func) {
	case "Column":
		col := &schema.Column{Name: name, Type: schema.TypeAny, Kind: schema.MembershipExact}
		if ann != nil {
			col.Type = valueType(ann)
		}
		for _, kw := range call.Keywords {
			switch kw.Name {
			case "type":
				col.Type = valueType(kw.Value)
			case "alias":
				if s, ok := kw.Value.(*parser.Str); ok {
					col.Alias = s.Value
				}
				// A DefinedLater alias falls back to the attribute name.
			case "nullable":
				if b, ok := kw.Value.(*parser.BoolLit); ok {
					col.Nullable = b.Value
				}
			}
		}
		d.Columns = append(d.Columns, col)

	case "ColumnSet":
		col := &schema.Column{Name: name, Type: schema.TypeAny, Kind: schema.MembershipMembers}
		for _, kw := range call.Keywords {
			switch kw.Name {
			case "type":
				col.Type = valueType(kw.Value)
			case "regex":
				if b, ok := kw.Value.(*parser.BoolLit); ok && b.Value {
					col.Kind = schema.MembershipRegex
				}
			case "nullable":
				if b, ok := kw.Value.(*parser.BoolLit); ok {
					col.Nullable = b.Value
				}
			case "members":
				switch v := kw.Value.(type) {
				case *parser.Str:
					col.Pattern = v.Value
				case *parser.List:
					for _, el := range v.Elts {
						if s, ok := el.(*parser.Str); ok {
							col.Members = append(col.Members, s.Value)
						}
					}
				default:
					// DefinedLater: members exist only at runtime.
					if isDefinedLater(kw.Value) {
						col.Dynamic = true
					}
				}
			}
		}
		if col.Pattern != "" {
			col.Kind = schema.MembershipRegex
		}
		d.Columns = append(d.Columns, col)

	case "ColumnGroup":
		g := &schema.Group{Name: name}
		for _, kw := range call.Keywords {
			if kw.Name != "members" {
				continue
			}
			if list, ok := kw.Value.(*parser.List); ok {
				for _, el := range list.Elts {
					switch m := el.(type) {
					case *parser.Str:
						g.Members = append(g.Members, m.Value)
					case *parser.Name:
						g.Members = append(g.Members, m.ID)
					case *parser.Attribute:
						g.Members = append(g.Members, m.Attr)
					}
				}
			}
		}
		d.Groups = append(d.Groups, g)
	}
}

// assignDecl recognizes module-level schema derivations: X = A + B,
// X = S.select([...]), and X = S.drop([...]).
func (c *collector) assignDecl(st *parser.Assign) {
	if len(st.Targets) != 1 {
		return
	}
	name, ok := st.Targets[0].(*parser.Name)
	if !ok {
		return
	}

	switch v := st.Value.(type) {
	case *parser.BinOp:
		if v.Op != "+" {
			return
		}
		left, lok := v.Left.(*parser.Name)
		right, rok := v.Right.(*parser.Name)
		if !lok || !rok {
			return
		}
		c.decls = append(c.decls, Decl{
			Kind:     DeclCompose,
			Name:     name.ID,
			File:     c.file,
			Line:     st.Pos.Line,
			Col:      st.Pos.Col,
			Operands: []string{left.ID, right.ID},
		})

	case *parser.Call:
		attr, ok := v.Func.(*parser.Attribute)
		if !ok {
			return
		}
		src, ok := attr.Value.(*parser.Name)
		if !ok {
			return
		}
		var kind DeclKind
		switch attr.Attr {
		case "select":
			kind = DeclSelect
		case "drop":
			kind = DeclDrop
		default:
			return
		}
		items, ok := memberItems(v, src.ID)
		if !ok {
			return
		}
		c.decls = append(c.decls, Decl{
			Kind:     kind,
			Name:     name.ID,
			File:     c.file,
			Line:     st.Pos.Line,
			Col:      st.Pos.Col,
			Operands: []string{src.ID},
			Items:    items,
		})
	}
}

// memberItems extracts the attribute names from select/drop arguments:
// S.select([S.a, S.b]) or S.drop(["a", "b"]). A member rooted at a
// different schema is kept with a marker so resolution can reject it.
func memberItems(call *parser.Call, srcSchema string) ([]string, bool) {
	var exprs []parser.Expr
	if len(call.Args) == 1 {
		if list, ok := call.Args[0].(*parser.List); ok {
			exprs = list.Elts
		} else {
			exprs = call.Args
		}
	} else {
		exprs = call.Args
	}
	if len(exprs) == 0 {
		return nil, false
	}
	var items []string
	for _, e := range exprs {
		switch m := e.(type) {
		case *parser.Str:
			items = append(items, m.Value)
		case *parser.Attribute:
			if root, ok := m.Value.(*parser.Name); ok && root.ID != srcSchema {
				items = append(items, root.ID+"."+m.Attr)
				continue
			}
			items = append(items, m.Attr)
		case *parser.Name:
			items = append(items, m.ID)
		default:
			return nil, false
		}
	}
	return items, true
}

func baseName(e parser.Expr) string {
	switch b := e.(type) {
	case *parser.Name:
		return b.ID
	case *parser.Attribute:
		return b.Attr
	case *parser.Subscript:
		return baseName(b.Value)
	}
	return ""
}

func callName(e parser.Expr) string {
	switch f := e.(type) {
	case *parser.Name:
		return f.ID
	case *parser.Attribute:
		return f.Attr
	}
	return ""
}

func isDefinedLater(e parser.Expr) bool {
	switch v := e.(type) {
	case *parser.Name:
		return v.ID == "DefinedLater"
	case *parser.Attribute:
		return v.Attr == "DefinedLater"
	}
	return false
}

func valueType(e parser.Expr) schema.ValueType {
	name := ""
	switch t := e.(type) {
	case *parser.Name:
		name = t.ID
	case *parser.Attribute:
		name = t.Attr
	case *parser.Str:
		name = t.Value
	}
	switch name {
	case "int":
		return schema.TypeInt
	case "float":
		return schema.TypeFloat
	case "str":
		return schema.TypeStr
	case "bool":
		return schema.TypeBool
	}
	return schema.TypeAny
}
