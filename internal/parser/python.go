package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// converter lowers a tree-sitter parse tree into the checker IR.
type converter struct {
	src []byte
}

func (c *converter) pos(n *sitter.Node) Pos {
	return Pos{Line: int(n.StartPoint().Row) + 1, Col: int(n.StartPoint().Column) + 1}
}

// block converts the statements of a module, class body, or suite.
func (c *converter) block(n *sitter.Node) []Stmt {
	var stmts []Stmt
	for i := 0; i < int(n.ChildCount()); i++ {
		stmts = append(stmts, c.stmt(n.Child(i))...)
	}
	return stmts
}

func (c *converter) stmt(n *sitter.Node) []Stmt {
	switch n.Type() {
	case "class_definition":
		return []Stmt{c.classDef(n)}
	case "function_definition":
		return []Stmt{c.funcDef(n)}
	case "decorated_definition":
		// Decorators are dropped; the wrapped definition is kept.
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			if child.Type() == "class_definition" || child.Type() == "function_definition" {
				return c.stmt(child)
			}
		}
		return nil
	case "expression_statement":
		return c.exprStatement(n)
	case "if_statement":
		return []Stmt{c.ifStmt(n)}
	case "for_statement":
		return []Stmt{c.forStmt(n)}
	case "while_statement":
		return []Stmt{c.whileStmt(n)}
	case "with_statement":
		return []Stmt{c.withStmt(n)}
	case "try_statement":
		return []Stmt{c.tryStmt(n)}
	case "return_statement":
		return []Stmt{c.returnStmt(n)}
	}
	return nil
}

// exprStatement unwraps assignments and bare expressions; the grammar nests
// assignment under expression_statement. Semicolon-joined statements share
// one node.
func (c *converter) exprStatement(n *sitter.Node) []Stmt {
	var out []Stmt
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "assignment":
			out = append(out, c.assignment(child))
		case "augmented_assignment":
			out = append(out, c.augAssign(child))
		default:
			if e := c.expr(child); e != nil {
				out = append(out, &ExprStmt{Pos: c.pos(child), Value: e})
			}
		}
	}
	return out
}

// assignment handles x = v, x: T = v, x: T, and chained a = b = v.
func (c *converter) assignment(n *sitter.Node) Stmt {
	pos := c.pos(n)
	var target, ann Expr
	var valueNode *sitter.Node

	if n.ChildCount() > 0 {
		target = c.expr(n.Child(0))
	}
	for i := 1; i < int(n.ChildCount()); i++ {
		switch n.Child(i).Type() {
		case ":":
			if i+1 < int(n.ChildCount()) {
				ann = c.typeExpr(n.Child(i + 1))
				i++
			}
		case "=":
			if i+1 < int(n.ChildCount()) {
				valueNode = n.Child(i + 1)
				i++
			}
		}
	}

	if ann != nil {
		var value Expr
		if valueNode != nil {
			value = c.expr(valueNode)
		}
		return &AnnAssign{Pos: pos, Target: target, Annotation: ann, Value: value}
	}

	targets := []Expr{target}
	for valueNode != nil && valueNode.Type() == "assignment" {
		inner := valueNode
		valueNode = nil
		if inner.ChildCount() > 0 {
			targets = append(targets, c.expr(inner.Child(0)))
		}
		for i := 1; i < int(inner.ChildCount()); i++ {
			if inner.Child(i).Type() == "=" && i+1 < int(inner.ChildCount()) {
				valueNode = inner.Child(i + 1)
				break
			}
		}
	}
	var value Expr
	if valueNode != nil {
		value = c.expr(valueNode)
	}
	return &Assign{Pos: pos, Targets: targets, Value: value}
}

func (c *converter) augAssign(n *sitter.Node) Stmt {
	a := &AugAssign{Pos: c.pos(n)}
	if n.ChildCount() >= 3 {
		a.Target = c.expr(n.Child(0))
		a.Op = n.Child(1).Content(c.src)
		a.Value = c.expr(n.Child(2))
	}
	return a
}

func (c *converter) classDef(n *sitter.Node) Stmt {
	def := &ClassDef{Pos: c.pos(n)}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "identifier":
			if def.Name == "" {
				def.Name = child.Content(c.src)
			}
		case "argument_list":
			for j := 0; j < int(child.ChildCount()); j++ {
				arg := child.Child(j)
				if arg.Type() == "keyword_argument" {
					continue
				}
				if e := c.expr(arg); e != nil {
					def.Bases = append(def.Bases, e)
				}
			}
		case "block":
			def.Body = c.block(child)
		}
	}
	return def
}

func (c *converter) funcDef(n *sitter.Node) Stmt {
	def := &FuncDef{Pos: c.pos(n)}
	sawArrow := false
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "identifier":
			if def.Name == "" {
				def.Name = child.Content(c.src)
			}
		case "parameters":
			def.Params = c.params(child)
		case "->":
			sawArrow = true
		case "type":
			if sawArrow && def.Returns == nil {
				def.Returns = c.typeExpr(child)
			}
		case "block":
			def.Body = c.block(child)
		}
	}
	return def
}

func (c *converter) params(n *sitter.Node) []Param {
	var params []Param
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "identifier":
			params = append(params, Param{Name: child.Content(c.src)})
		case "typed_parameter", "default_parameter", "typed_default_parameter":
			p := Param{}
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch gc.Type() {
				case "identifier":
					if p.Name == "" {
						p.Name = gc.Content(c.src)
					}
				case "type":
					p.Annotation = c.typeExpr(gc)
				}
			}
			if p.Name != "" {
				params = append(params, p)
			}
		}
	}
	return params
}

func (c *converter) ifStmt(n *sitter.Node) Stmt {
	stmt := &If{Pos: c.pos(n)}
	var clauses []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "block":
			stmt.Body = c.block(child)
		case "elif_clause", "else_clause":
			clauses = append(clauses, child)
		default:
			if stmt.Cond == nil {
				stmt.Cond = c.expr(child)
			}
		}
	}
	// elif chains nest; the trailing else attaches to the innermost If.
	cur := stmt
	for _, cl := range clauses {
		if cl.Type() == "else_clause" {
			cur.Else = c.clauseBlock(cl)
			continue
		}
		nested := &If{Pos: c.pos(cl)}
		for i := 0; i < int(cl.ChildCount()); i++ {
			child := cl.Child(i)
			if child.Type() == "block" {
				nested.Body = c.block(child)
			} else if nested.Cond == nil {
				nested.Cond = c.expr(child)
			}
		}
		cur.Else = []Stmt{nested}
		cur = nested
	}
	return stmt
}

func (c *converter) forStmt(n *sitter.Node) Stmt {
	stmt := &For{Pos: c.pos(n)}
	sawIn := false
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "in":
			sawIn = true
		case "block":
			stmt.Body = c.block(child)
		case "else_clause":
			stmt.Else = c.clauseBlock(child)
		default:
			e := c.expr(child)
			if e == nil {
				continue
			}
			if !sawIn && stmt.Target == nil {
				stmt.Target = e
			} else if sawIn && stmt.Iter == nil {
				stmt.Iter = e
			}
		}
	}
	return stmt
}

func (c *converter) whileStmt(n *sitter.Node) Stmt {
	stmt := &While{Pos: c.pos(n)}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "block":
			stmt.Body = c.block(child)
		case "else_clause":
			stmt.Else = c.clauseBlock(child)
		default:
			if stmt.Cond == nil {
				stmt.Cond = c.expr(child)
			}
		}
	}
	return stmt
}

func (c *converter) withStmt(n *sitter.Node) Stmt {
	stmt := &With{Pos: c.pos(n)}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "with_clause":
			for j := 0; j < int(child.ChildCount()); j++ {
				item := child.Child(j)
				if item.Type() != "with_item" {
					continue
				}
				for k := 0; k < int(item.ChildCount()); k++ {
					if e := c.expr(item.Child(k)); e != nil {
						stmt.Items = append(stmt.Items, e)
						break
					}
				}
			}
		case "block":
			stmt.Body = c.block(child)
		}
	}
	return stmt
}

func (c *converter) tryStmt(n *sitter.Node) Stmt {
	stmt := &Try{Pos: c.pos(n)}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "block":
			if stmt.Body == nil {
				stmt.Body = c.block(child)
			}
		case "except_clause", "except_group_clause":
			stmt.Handlers = append(stmt.Handlers, c.clauseBlock(child))
		case "else_clause":
			stmt.Else = c.clauseBlock(child)
		case "finally_clause":
			stmt.Finally = c.clauseBlock(child)
		}
	}
	return stmt
}

func (c *converter) returnStmt(n *sitter.Node) Stmt {
	stmt := &Return{Pos: c.pos(n)}
	for i := 0; i < int(n.ChildCount()); i++ {
		if e := c.expr(n.Child(i)); e != nil {
			stmt.Value = e
			break
		}
	}
	return stmt
}

// clauseBlock returns the block body of an else/except/finally clause.
func (c *converter) clauseBlock(n *sitter.Node) []Stmt {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "block" {
			return c.block(n.Child(i))
		}
	}
	return nil
}

func (c *converter) expr(n *sitter.Node) Expr {
	if n == nil || !n.IsNamed() || n.Type() == "comment" {
		return nil
	}
	pos := c.pos(n)
	switch n.Type() {
	case "identifier":
		return &Name{Pos: pos, ID: n.Content(c.src)}

	case "attribute":
		attr := &Attribute{Pos: pos}
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			if i == 0 {
				attr.Value = c.expr(child)
				continue
			}
			if child.Type() == "identifier" {
				attr.Attr = child.Content(c.src)
				attr.Pos = c.pos(child)
			}
		}
		return attr

	case "subscript":
		sub := &Subscript{Pos: pos}
		var indexes []Expr
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			if i == 0 {
				sub.Value = c.expr(child)
				continue
			}
			if e := c.expr(child); e != nil {
				indexes = append(indexes, e)
			}
		}
		switch len(indexes) {
		case 0:
		case 1:
			sub.Index = indexes[0]
			sub.Pos = indexes[0].Position()
		default:
			sub.Index = &Tuple{Pos: indexes[0].Position(), Elts: indexes}
			sub.Pos = indexes[0].Position()
		}
		return sub

	case "generic_type":
		// DataFrame[S] inside an annotation. The grammar gives generics in
		// type position their own node kind; lower it to the same Subscript
		// shape as expression position so bindings see one form.
		sub := &Subscript{Pos: pos}
		var indexes []Expr
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			if child.Type() == "type_parameter" {
				for j := 0; j < int(child.ChildCount()); j++ {
					if e := c.typeExpr(child.Child(j)); e != nil {
						indexes = append(indexes, e)
					}
				}
				continue
			}
			if sub.Value == nil {
				sub.Value = c.expr(child)
			}
		}
		switch len(indexes) {
		case 0:
		case 1:
			sub.Index = indexes[0]
			sub.Pos = indexes[0].Position()
		default:
			sub.Index = &Tuple{Pos: indexes[0].Position(), Elts: indexes}
			sub.Pos = indexes[0].Position()
		}
		return sub

	case "call":
		call := &Call{Pos: pos}
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			if i == 0 {
				call.Func = c.expr(child)
				continue
			}
			if child.Type() == "argument_list" {
				c.arguments(child, call)
			}
		}
		return call

	case "string":
		if hasInterpolation(n) {
			return c.opaque(n)
		}
		return &Str{Pos: pos, Value: unquote(n.Content(c.src))}

	case "concatenated_string":
		var parts []string
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			if child.Type() != "string" {
				continue
			}
			if hasInterpolation(child) {
				return c.opaque(n)
			}
			parts = append(parts, unquote(child.Content(c.src)))
		}
		return &Str{Pos: pos, Value: strings.Join(parts, "")}

	case "integer", "float":
		return &Num{Pos: pos, Raw: n.Content(c.src)}

	case "true":
		return &BoolLit{Pos: pos, Value: true}
	case "false":
		return &BoolLit{Pos: pos, Value: false}
	case "none":
		return &NoneLit{Pos: pos}

	case "list":
		l := &List{Pos: pos}
		for i := 0; i < int(n.ChildCount()); i++ {
			if e := c.expr(n.Child(i)); e != nil {
				l.Elts = append(l.Elts, e)
			}
		}
		return l

	case "tuple", "expression_list", "pattern_list", "tuple_pattern":
		t := &Tuple{Pos: pos}
		for i := 0; i < int(n.ChildCount()); i++ {
			if e := c.expr(n.Child(i)); e != nil {
				t.Elts = append(t.Elts, e)
			}
		}
		return t

	case "parenthesized_expression":
		for i := 0; i < int(n.ChildCount()); i++ {
			if e := c.expr(n.Child(i)); e != nil {
				return e
			}
		}
		return &Opaque{Pos: pos}

	case "binary_operator":
		if n.ChildCount() >= 3 {
			return &BinOp{
				Pos:   pos,
				Left:  c.expr(n.Child(0)),
				Op:    n.Child(1).Content(c.src),
				Right: c.expr(n.Child(2)),
			}
		}
		return c.opaque(n)

	case "type":
		return c.typeExpr(n)
	}

	return c.opaque(n)
}

// typeExpr unwraps the grammar's type wrapper around annotations.
func (c *converter) typeExpr(n *sitter.Node) Expr {
	if n.Type() == "type" {
		for i := 0; i < int(n.ChildCount()); i++ {
			if e := c.expr(n.Child(i)); e != nil {
				return e
			}
		}
		return nil
	}
	return c.expr(n)
}

func (c *converter) arguments(n *sitter.Node, call *Call) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == "keyword_argument" {
			kw := Keyword{}
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				if j == 0 && gc.Type() == "identifier" {
					kw.Name = gc.Content(c.src)
					continue
				}
				if e := c.expr(gc); e != nil {
					kw.Value = e
				}
			}
			call.Keywords = append(call.Keywords, kw)
			continue
		}
		if e := c.expr(child); e != nil {
			call.Args = append(call.Args, e)
		}
	}
}

// opaque keeps the sub-expressions of an unmodeled node so accesses nested
// inside it stay visible to the checker.
func (c *converter) opaque(n *sitter.Node) Expr {
	op := &Opaque{Pos: c.pos(n)}
	for i := 0; i < int(n.ChildCount()); i++ {
		if e := c.expr(n.Child(i)); e != nil {
			op.Parts = append(op.Parts, e)
		}
	}
	return op
}

func hasInterpolation(n *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "interpolation" {
			return true
		}
	}
	return false
}

// unquote strips string prefixes (r, b, u, f) and quotes from a literal.
func unquote(s string) string {
	i := 0
	for i < len(s) && s[i] != '"' && s[i] != '\'' {
		i++
	}
	s = s[i:]
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(s) >= 2*len(q) && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	return s
}
