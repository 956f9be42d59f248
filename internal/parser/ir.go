package parser

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) Position() Pos { return p }

// Node is any statement or expression in a parsed file.
type Node interface {
	Position() Pos
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// ClassDef is a class definition with its positional bases.
type ClassDef struct {
	Pos
	Name  string
	Bases []Expr
	Body  []Stmt
}

// FuncDef is a function or method definition.
type FuncDef struct {
	Pos
	Name    string
	Params  []Param
	Returns Expr // nil when unannotated
	Body    []Stmt
}

// Param is one function parameter.
type Param struct {
	Name       string
	Annotation Expr // nil when unannotated
}

// Assign is a plain assignment. Chained targets (a = b = v) are flattened
// into Targets.
type Assign struct {
	Pos
	Targets []Expr
	Value   Expr
}

// AnnAssign is an annotated assignment or bare annotated declaration.
type AnnAssign struct {
	Pos
	Target     Expr
	Annotation Expr
	Value      Expr // nil for x: T without a value
}

// AugAssign is an augmented assignment such as x += 1.
type AugAssign struct {
	Pos
	Target Expr
	Op     string
	Value  Expr
}

// If is a conditional; elif chains become nested Ifs in Else.
type If struct {
	Pos
	Cond Expr
	Body []Stmt
	Else []Stmt
}

// For is a for loop.
type For struct {
	Pos
	Target Expr
	Iter   Expr
	Body   []Stmt
	Else   []Stmt
}

// While is a while loop.
type While struct {
	Pos
	Cond Expr
	Body []Stmt
	Else []Stmt
}

// With is a with block. Context manager `as` targets are not tracked.
type With struct {
	Pos
	Items []Expr
	Body  []Stmt
}

// Try is a try block with handler bodies.
type Try struct {
	Pos
	Body     []Stmt
	Handlers [][]Stmt
	Else     []Stmt
	Finally  []Stmt
}

// Return is a return statement.
type Return struct {
	Pos
	Value Expr // nil for a bare return
}

// ExprStmt is an expression used as a statement.
type ExprStmt struct {
	Pos
	Value Expr
}

func (*ClassDef) stmtNode()  {}
func (*FuncDef) stmtNode()   {}
func (*Assign) stmtNode()    {}
func (*AnnAssign) stmtNode() {}
func (*AugAssign) stmtNode() {}
func (*If) stmtNode()        {}
func (*For) stmtNode()       {}
func (*While) stmtNode()     {}
func (*With) stmtNode()      {}
func (*Try) stmtNode()       {}
func (*Return) stmtNode()    {}
func (*ExprStmt) stmtNode()  {}

// Name is an identifier reference.
type Name struct {
	Pos
	ID string
}

// Attribute is value.Attr; Pos points at the attribute identifier.
type Attribute struct {
	Pos
	Value Expr
	Attr  string
}

// Subscript is value[Index]; Pos points at the index expression.
type Subscript struct {
	Pos
	Value Expr
	Index Expr
}

// Call is a call with positional and keyword arguments.
type Call struct {
	Pos
	Func     Expr
	Args     []Expr
	Keywords []Keyword
}

// Keyword is one name=value argument.
type Keyword struct {
	Name  string
	Value Expr
}

// Str is a plain string literal with quotes and prefixes stripped.
type Str struct {
	Pos
	Value string
}

// Num is a numeric literal, kept raw.
type Num struct {
	Pos
	Raw string
}

// BoolLit is True or False.
type BoolLit struct {
	Pos
	Value bool
}

// NoneLit is None.
type NoneLit struct {
	Pos
}

// List is a list display.
type List struct {
	Pos
	Elts []Expr
}

// Tuple is a tuple display or pattern.
type Tuple struct {
	Pos
	Elts []Expr
}

// BinOp is a binary arithmetic expression.
type BinOp struct {
	Pos
	Left  Expr
	Op    string
	Right Expr
}

// Opaque is any expression kind the checker does not model. Parts keeps
// the recognizable sub-expressions so nested accesses stay checkable.
type Opaque struct {
	Pos
	Parts []Expr
}

func (*Name) exprNode()      {}
func (*Attribute) exprNode() {}
func (*Subscript) exprNode() {}
func (*Call) exprNode()      {}
func (*Str) exprNode()       {}
func (*Num) exprNode()       {}
func (*BoolLit) exprNode()   {}
func (*NoneLit) exprNode()   {}
func (*List) exprNode()      {}
func (*Tuple) exprNode()     {}
func (*BinOp) exprNode()     {}
func (*Opaque) exprNode()    {}
