package analysis

import (
	"strings"

	"github.com/maraichr/framelint/internal/parser"
)

// frameTypes are the generic frame classes whose subscript names a schema,
// as in DataFrame[UserSchema].
var frameTypes = map[string]bool{
	"DataFrame":   true,
	"PandasFrame": true,
	"PolarsFrame": true,
}

// factoryMethods construct a schema-carrying frame and bind their result
// with certain confidence.
var factoryMethods = map[string]bool{
	"from_schema":  true,
	"from_pandas":  true,
	"from_polars":  true,
	"read_csv":     true,
	"read_parquet": true,
	"read_json":    true,
	"read_excel":   true,
}

// preservingMethods return a frame with the receiver's schema unchanged.
var preservingMethods = map[string]bool{
	"filter":      true,
	"head":        true,
	"tail":        true,
	"sort":        true,
	"sort_values": true,
	"sample":      true,
	"slice":       true,
	"limit":       true,
	"unique":      true,
	"copy":        true,
	"clone":       true,
	"fillna":      true,
	"fill_null":   true,
	"fill_nan":    true,
	"dropna":      true,
	"drop_nulls":  true,
	"reset_index": true,
	"groupby":     true,
	"group_by":    true,
	"agg":         true,
}

func (c *checker) isFrameType(name string) bool {
	if frameTypes[name] {
		return true
	}
	for _, t := range c.opts.ExtraFrameTypes {
		if t == name {
			return true
		}
	}
	return false
}

func (c *checker) isPreserving(name string) bool {
	if preservingMethods[name] {
		return true
	}
	for _, m := range c.opts.ExtraPreserving {
		if m == name {
			return true
		}
	}
	return false
}

// annotationSchema extracts the schema name from a frame type annotation:
// DataFrame[S], pd.DataFrame[S], Annotated[pd.DataFrame, S], and the quoted
// forms of all of these. Empty when the annotation is not frame-shaped.
func (c *checker) annotationSchema(ann parser.Expr) string {
	switch a := ann.(type) {
	case *parser.Subscript:
		head := ""
		switch v := a.Value.(type) {
		case *parser.Name:
			head = v.ID
		case *parser.Attribute:
			head = v.Attr
		}
		if c.isFrameType(head) {
			if s, ok := a.Index.(*parser.Name); ok {
				return s.ID
			}
			return ""
		}
		if head == "Annotated" {
			tup, ok := a.Index.(*parser.Tuple)
			if !ok || len(tup.Elts) < 2 {
				return ""
			}
			isFrame := false
			switch first := tup.Elts[0].(type) {
			case *parser.Name:
				isFrame = strings.Contains(first.ID, "DataFrame")
			case *parser.Attribute:
				isFrame = first.Attr == "DataFrame"
			}
			if !isFrame {
				return ""
			}
			if s, ok := tup.Elts[1].(*parser.Name); ok {
				return s.ID
			}
		}
		return ""
	case *parser.Str:
		return quotedSchema(a.Value)
	}
	return ""
}

// quotedSchema parses deferred string annotations like "DataFrame[S]" and
// "Annotated[pl.DataFrame, S]". Nested generics keep the last bracket part.
func quotedSchema(text string) string {
	for _, pattern := range []string{"DataFrame[", "PandasFrame[", "PolarsFrame["} {
		if !strings.Contains(text, pattern) {
			continue
		}
		start := strings.IndexByte(text, '[')
		end := strings.LastIndexByte(text, ']')
		if start < 0 || end <= start {
			return ""
		}
		inner := text[start+1 : end]
		parts := strings.Split(inner, ",")
		return strings.TrimSpace(parts[len(parts)-1])
	}
	if strings.Contains(text, "Annotated[") && strings.Contains(text, "DataFrame") {
		start := strings.Index(text, "Annotated[")
		inner := text[start+len("Annotated["):]
		end := strings.LastIndexByte(inner, ']')
		if end < 0 {
			return ""
		}
		parts := strings.Split(inner[:end], ",")
		if len(parts) >= 2 {
			return strings.TrimSpace(parts[1])
		}
	}
	return ""
}

// literalLabels extracts string labels from select/drop style arguments:
// positional strings, one list of strings, or a columns= keyword list.
// ok is false when any argument is not a literal label.
func literalLabels(call *parser.Call) ([]string, bool) {
	exprs := call.Args
	if len(call.Args) == 1 {
		if list, ok := call.Args[0].(*parser.List); ok {
			exprs = list.Elts
		}
	}
	if len(exprs) == 0 {
		for _, kw := range call.Keywords {
			if kw.Name != "columns" {
				continue
			}
			switch v := kw.Value.(type) {
			case *parser.List:
				exprs = v.Elts
			case *parser.Str:
				exprs = []parser.Expr{v}
			}
		}
	}
	if len(exprs) == 0 {
		return nil, false
	}
	labels := make([]string, 0, len(exprs))
	for _, e := range exprs {
		s, ok := e.(*parser.Str)
		if !ok {
			return nil, false
		}
		labels = append(labels, s.Value)
	}
	return labels, true
}

// listNames returns the identifier elements of concat-style arguments,
// either concat([a, b]) positionally or concat(objs=[a, b]).
func listNames(call *parser.Call) []string {
	var list *parser.List
	if len(call.Args) > 0 {
		list, _ = call.Args[0].(*parser.List)
	}
	if list == nil {
		for _, kw := range call.Keywords {
			if kw.Name == "objs" {
				list, _ = kw.Value.(*parser.List)
			}
		}
	}
	if list == nil {
		return nil
	}
	var names []string
	for _, el := range list.Elts {
		if n, ok := el.(*parser.Name); ok {
			names = append(names, n.ID)
		}
	}
	return names
}
