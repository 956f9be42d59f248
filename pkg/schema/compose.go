package schema

import "fmt"

// ConflictError reports two schemas declaring the same column with
// different value types.
type ConflictError struct {
	Column  string
	TypeA   ValueType
	SchemaA string
	TypeB   ValueType
	SchemaB string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("column '%s' has conflicting types: %s (%s) vs %s (%s)",
		e.Column, e.TypeA, e.SchemaA, e.TypeB, e.SchemaB)
}

// Compose unions two schemas the way the runtime + operator does: columns
// from a in order, then columns from b that do not collide. A collision on
// attribute name or lookup key with a differing type is an error; with the
// same type the left column wins. Groups do not survive composition and the
// result accepts extra columns, both matching the runtime behavior.
func Compose(a, b *Definition, name string) (*Definition, error) {
	if name == "" {
		name = a.Name + "_" + b.Name
	}
	out := &Definition{Name: name, AllowExtra: true}

	byName := make(map[string]*Column)
	byKey := make(map[string]*Column)
	add := func(c *Column) {
		cc := c.Clone()
		out.Columns = append(out.Columns, cc)
		byName[cc.Name] = cc
		if cc.Kind == MembershipExact {
			byKey[cc.LookupKey()] = cc
		}
	}

	for _, c := range a.Columns {
		add(c)
	}

	// Every collision is examined before blaming, and the blame goes to the
	// lexicographically smallest shared label, so a+b and b+a fail on the
	// same column.
	var conflict *ConflictError
	for _, c := range b.Columns {
		prev := byName[c.Name]
		label := c.Name
		if prev == nil && c.Kind == MembershipExact {
			prev = byKey[c.LookupKey()]
			label = c.LookupKey()
		}
		if prev == nil {
			add(c)
			continue
		}
		if prev.Type != c.Type && (conflict == nil || label < conflict.Column) {
			conflict = &ConflictError{
				Column:  label,
				TypeA:   prev.Type,
				SchemaA: a.Name,
				TypeB:   c.Type,
				SchemaB: b.Name,
			}
		}
	}
	if conflict != nil {
		return nil, conflict
	}
	return out, nil
}

// Select returns the subset schema containing only the given attribute
// names, named name or X_Select by default. Members not declared on d are
// returned as unknown and omitted from the result.
func (d *Definition) Select(members []string, name string) (*Definition, []string) {
	if name == "" {
		name = d.Name + "_Select"
	}
	out := &Definition{Name: name, AllowExtra: d.AllowExtra}
	var unknown []string
	for _, m := range members {
		if c, ok := d.Attr(m); ok {
			out.Columns = append(out.Columns, c.Clone())
			continue
		}
		if g := d.group(m); g != nil {
			out.Groups = append(out.Groups, &Group{Name: g.Name, Members: append([]string(nil), g.Members...)})
			continue
		}
		unknown = append(unknown, m)
	}
	return out, unknown
}

// Drop returns the schema with the given attribute names removed, named
// name or X_Drop by default. Members not declared on d are returned as
// unknown and ignored.
func (d *Definition) Drop(members []string, name string) (*Definition, []string) {
	if name == "" {
		name = d.Name + "_Drop"
	}
	dropped := make(map[string]bool, len(members))
	var unknown []string
	for _, m := range members {
		if _, ok := d.Attr(m); !ok && d.group(m) == nil {
			unknown = append(unknown, m)
			continue
		}
		dropped[m] = true
	}
	out := &Definition{Name: name, AllowExtra: d.AllowExtra}
	for _, c := range d.Columns {
		if !dropped[c.Name] {
			out.Columns = append(out.Columns, c.Clone())
		}
	}
	for _, g := range d.Groups {
		if !dropped[g.Name] {
			out.Groups = append(out.Groups, &Group{Name: g.Name, Members: append([]string(nil), g.Members...)})
		}
	}
	return out, unknown
}

// SelectLabels returns the subset schema addressed by literal subscript
// labels, the df[["a","b"]] projection. Labels matching a column set or
// group are narrowed to exact columns; unknown labels are returned.
func (d *Definition) SelectLabels(labels []string, name string) (*Definition, []string) {
	if name == "" {
		name = d.Name + "_Select"
	}
	out := &Definition{Name: name, AllowExtra: d.AllowExtra}
	var unknown []string
	for _, label := range labels {
		c, ok := d.Lookup(label)
		if !ok {
			unknown = append(unknown, label)
			continue
		}
		if c == nil {
			// Group name: the projection keeps the member columns.
			if g := d.group(label); g != nil {
				for _, m := range g.Members {
					if mc, ok := d.Attr(m); ok {
						out.Columns = append(out.Columns, mc.Clone())
					}
				}
			}
			continue
		}
		if c.Kind == MembershipExact {
			out.Columns = append(out.Columns, c.Clone())
			continue
		}
		// Set member or pattern match: narrow to an exact column.
		out.Columns = append(out.Columns, &Column{
			Name:     label,
			Type:     c.Type,
			Nullable: c.Nullable,
			Kind:     MembershipExact,
		})
	}
	return out, unknown
}

// DropLabels returns the schema with the given subscript labels removed.
// Labels addressing a set or pattern leave the family in place; a single
// member cannot be carved out of it. Unknown labels are returned.
func (d *Definition) DropLabels(labels []string, name string) (*Definition, []string) {
	if name == "" {
		name = d.Name + "_Drop"
	}
	droppedKeys := make(map[string]bool)
	droppedGroups := make(map[string]bool)
	var unknown []string
	for _, label := range labels {
		c, ok := d.Lookup(label)
		if !ok {
			unknown = append(unknown, label)
			continue
		}
		if c == nil {
			droppedGroups[label] = true
			if g := d.group(label); g != nil {
				for _, m := range g.Members {
					if mc, ok := d.Attr(m); ok && mc.Kind == MembershipExact {
						droppedKeys[mc.LookupKey()] = true
					}
				}
			}
			continue
		}
		if c.Kind == MembershipExact {
			droppedKeys[c.LookupKey()] = true
		}
	}
	out := &Definition{Name: name, AllowExtra: d.AllowExtra}
	for _, c := range d.Columns {
		if c.Kind == MembershipExact && droppedKeys[c.LookupKey()] {
			continue
		}
		out.Columns = append(out.Columns, c.Clone())
	}
	for _, g := range d.Groups {
		if !droppedGroups[g.Name] {
			out.Groups = append(out.Groups, &Group{Name: g.Name, Members: append([]string(nil), g.Members...)})
		}
	}
	return out, unknown
}

func (d *Definition) group(name string) *Group {
	for _, g := range d.Groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Clone copies the column. The compiled pattern is shared; it is immutable.
func (c *Column) Clone() *Column {
	cc := *c
	cc.Members = append([]string(nil), c.Members...)
	return &cc
}

// Clone deep-copies the definition.
func (d *Definition) Clone() *Definition {
	out := &Definition{
		Name:       d.Name,
		File:       d.File,
		Line:       d.Line,
		AllowExtra: d.AllowExtra,
	}
	for _, c := range d.Columns {
		out.Columns = append(out.Columns, c.Clone())
	}
	for _, g := range d.Groups {
		out.Groups = append(out.Groups, &Group{Name: g.Name, Members: append([]string(nil), g.Members...)})
	}
	return out
}
