// Package export converts resolved schemas into runtime-checkable pandera
// documents. The conversion is pure and one-directional; nothing here feeds
// back into checking.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/maraichr/framelint/pkg/schema"
)

// Document is a pandera DataFrameSchema in its serialized form.
type Document struct {
	SchemaType string            `yaml:"schema_type" json:"schema_type"`
	Name       string            `yaml:"name" json:"name"`
	Columns    map[string]Column `yaml:"columns" json:"columns"`
	Strict     bool              `yaml:"strict" json:"strict"`
}

// Column is one pandera column spec. Regex marks a pattern-matched family
// keyed by its pattern instead of a fixed name.
type Column struct {
	DType    string `yaml:"dtype" json:"dtype"`
	Nullable bool   `yaml:"nullable" json:"nullable"`
	Required bool   `yaml:"required" json:"required"`
	Regex    bool   `yaml:"regex,omitempty" json:"regex,omitempty"`
}

// dtypes maps declared value types to pandera dtypes.
var dtypes = map[schema.ValueType]string{
	schema.TypeInt:   "int64",
	schema.TypeFloat: "float64",
	schema.TypeStr:   "str",
	schema.TypeBool:  "bool",
	schema.TypeAny:   "object",
}

// Pandera builds the runtime document for one resolved schema. Enumerated
// column sets expand to one entry per member; regex sets keep their pattern.
// Groups contribute no columns and do not survive export.
func Pandera(def *schema.Definition) *Document {
	doc := &Document{
		SchemaType: "dataframe",
		Name:       def.Name,
		Columns:    make(map[string]Column, len(def.Columns)),
		Strict:     !def.AllowExtra,
	}
	for _, c := range def.Columns {
		spec := Column{
			DType:    dtypes[c.Type],
			Nullable: c.Nullable,
			Required: !c.Nullable,
		}
		switch c.Kind {
		case schema.MembershipExact:
			doc.Columns[c.LookupKey()] = spec
		case schema.MembershipMembers:
			for _, m := range c.Members {
				doc.Columns[m] = spec
			}
		case schema.MembershipRegex:
			spec.Regex = true
			doc.Columns[c.Pattern] = spec
		}
	}
	return doc
}

// WriteYAML serializes the document as YAML.
func (d *Document) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// WriteJSON serializes the document as JSON.
func (d *Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
