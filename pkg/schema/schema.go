package schema

import "regexp"

// ValueType is the declared primitive type of a column.
type ValueType string

const (
	TypeInt   ValueType = "int"
	TypeFloat ValueType = "float"
	TypeStr   ValueType = "str"
	TypeBool  ValueType = "bool"
	TypeAny   ValueType = "any"
)

// MembershipKind describes how a column declaration matches access labels.
type MembershipKind string

const (
	// MembershipExact matches the lookup key alone.
	MembershipExact MembershipKind = "exact"
	// MembershipMembers matches any label in an enumerated member list.
	MembershipMembers MembershipKind = "members"
	// MembershipRegex matches any label accepted by a pattern.
	MembershipRegex MembershipKind = "regex"
)

// Column is one declared column, or a column family when Kind is
// MembershipMembers or MembershipRegex. Dynamic marks a family whose
// members are only known at runtime; it matches any label.
type Column struct {
	Name     string         `json:"name"`
	Alias    string         `json:"alias,omitempty"`
	Type     ValueType      `json:"type"`
	Nullable bool           `json:"nullable,omitempty"`
	Kind     MembershipKind `json:"kind"`
	Members  []string       `json:"members,omitempty"`
	Pattern  string         `json:"pattern,omitempty"`
	Dynamic  bool           `json:"dynamic,omitempty"`

	re *regexp.Regexp
}

// LookupKey returns the label literal subscripts are matched against:
// the alias when one is declared, otherwise the attribute name.
func (c *Column) LookupKey() string {
	if c.Alias != "" {
		return c.Alias
	}
	return c.Name
}

// CompilePattern compiles the regex for MembershipRegex columns. Must be
// called once before Matches; an invalid pattern is reported to the caller.
func (c *Column) CompilePattern() error {
	if c.Kind != MembershipRegex || c.Pattern == "" {
		return nil
	}
	re, err := regexp.Compile(c.Pattern)
	if err != nil {
		return err
	}
	c.re = re
	return nil
}

// Matches reports whether a literal label addresses this column.
func (c *Column) Matches(label string) bool {
	if c.Dynamic {
		return true
	}
	switch c.Kind {
	case MembershipExact:
		return c.LookupKey() == label
	case MembershipMembers:
		for _, m := range c.Members {
			if m == label {
				return true
			}
		}
		return false
	case MembershipRegex:
		return c.re != nil && c.re.MatchString(label)
	}
	return false
}

// Group is a named bundle of member column names, addressable as one label.
type Group struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Definition is a resolved frame schema. Definitions are immutable once the
// registry freezes; checkers overlay per-variable state instead of mutating.
type Definition struct {
	Name       string    `json:"name"`
	File       string    `json:"file,omitempty"`
	Line       int       `json:"line,omitempty"`
	Columns    []*Column `json:"columns"`
	Groups     []*Group  `json:"groups,omitempty"`
	AllowExtra bool      `json:"allow_extra_columns"`
}

// Lookup resolves a literal subscript label: exact lookup keys first, then
// member and pattern matches, then set and group names.
func (d *Definition) Lookup(label string) (*Column, bool) {
	for _, c := range d.Columns {
		if c.Kind == MembershipExact && c.LookupKey() == label {
			return c, true
		}
	}
	for _, c := range d.Columns {
		if c.Kind != MembershipExact && c.Matches(label) {
			return c, true
		}
	}
	for _, c := range d.Columns {
		if c.Kind != MembershipExact && c.Name == label {
			return c, true
		}
	}
	for _, g := range d.Groups {
		if g.Name == label {
			return nil, true
		}
	}
	return nil, false
}

// HasAttr reports whether an attribute-style access resolves. Attributes
// match declared names only; aliases redirect subscript labels, not the
// class attributes themselves.
func (d *Definition) HasAttr(name string) bool {
	for _, c := range d.Columns {
		if c.Name == name {
			return true
		}
	}
	for _, g := range d.Groups {
		if g.Name == name {
			return true
		}
	}
	return false
}

// Attr returns the column declared under an attribute name.
func (d *Definition) Attr(name string) (*Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// SubscriptLabels returns every label a literal subscript could legally use:
// lookup keys, enumerated set members, and group names.
func (d *Definition) SubscriptLabels() []string {
	var labels []string
	for _, c := range d.Columns {
		switch c.Kind {
		case MembershipExact:
			labels = append(labels, c.LookupKey())
		case MembershipMembers:
			labels = append(labels, c.Members...)
		}
	}
	for _, g := range d.Groups {
		labels = append(labels, g.Name)
	}
	return labels
}

// AttrNames returns every name an attribute access could legally use.
func (d *Definition) AttrNames() []string {
	var names []string
	for _, c := range d.Columns {
		names = append(names, c.Name)
	}
	for _, g := range d.Groups {
		names = append(names, g.Name)
	}
	return names
}
