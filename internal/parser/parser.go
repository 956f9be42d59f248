package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// FileInput is one source file to parse.
type FileInput struct {
	Path    string
	Content []byte
}

// File is the parsed syntax of one source file. Files are immutable and
// shared between the schema collection and checking passes.
type File struct {
	Path string
	Body []Stmt
}

// SyntaxError reports the first invalid region of a file. A file that fails
// to parse is excluded from all later passes.
type SyntaxError struct {
	Path string
	Line int
	Col  int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: invalid syntax", e.Path, e.Line, e.Col)
}

// Parser turns Python sources into the checker IR. A Parser is not safe for
// concurrent use; create one per worker.
type Parser struct {
	ts *sitter.Parser
}

func New() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{ts: p}
}

func (p *Parser) Parse(input FileInput) (*File, error) {
	tree, err := p.ts.ParseCtx(context.Background(), nil, input.Content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", input.Path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		line, col := firstErrorPos(root)
		return nil, &SyntaxError{Path: input.Path, Line: line, Col: col}
	}

	c := &converter{src: input.Content}
	return &File{Path: input.Path, Body: c.block(root)}, nil
}

// firstErrorPos locates the first ERROR node under root. When the tree
// reports an error without an ERROR node, the root position is used.
func firstErrorPos(root *sitter.Node) (int, int) {
	var walk func(n *sitter.Node) *sitter.Node
	walk = func(n *sitter.Node) *sitter.Node {
		if n.Type() == "ERROR" {
			return n
		}
		if !n.HasError() {
			return nil
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if e := walk(n.Child(i)); e != nil {
				return e
			}
		}
		return nil
	}
	if e := walk(root); e != nil {
		return int(e.StartPoint().Row) + 1, int(e.StartPoint().Column) + 1
	}
	return int(root.StartPoint().Row) + 1, 1
}
