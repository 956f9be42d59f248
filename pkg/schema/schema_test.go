package schema

import "testing"

func TestLookupResolutionOrder(t *testing.T) {
	family := &Column{Name: "metrics", Pattern: `m_\d+`, Type: TypeFloat, Kind: MembershipRegex}
	if err := family.CompilePattern(); err != nil {
		t.Fatalf("compile: %v", err)
	}
	d := &Definition{
		Name: "S",
		Columns: []*Column{
			{Name: "email", Alias: "email_address", Type: TypeStr, Kind: MembershipExact},
			{Name: "tags", Members: []string{"tag_a", "tag_b"}, Type: TypeStr, Kind: MembershipMembers},
			family,
		},
		Groups: []*Group{{Name: "all_tags", Members: []string{"tags"}}},
	}

	tests := []struct {
		label string
		ok    bool
	}{
		{"email_address", true}, // alias is the subscript key
		{"email", false},        // the attribute name is not
		{"tag_a", true},
		{"tag_c", false},
		{"m_12", true},
		{"m_x", false},
		{"tags", true},     // the set's own name is addressable
		{"all_tags", true}, // group names are addressable
		{"nothing", false},
	}
	for _, tt := range tests {
		if _, ok := d.Lookup(tt.label); ok != tt.ok {
			t.Errorf("Lookup(%q) = %v, want %v", tt.label, ok, tt.ok)
		}
	}
}

func TestHasAttrUsesDeclaredNames(t *testing.T) {
	d := &Definition{
		Name: "S",
		Columns: []*Column{
			{Name: "email", Alias: "email_address", Type: TypeStr, Kind: MembershipExact},
		},
		Groups: []*Group{{Name: "contact", Members: []string{"email"}}},
	}
	if !d.HasAttr("email") {
		t.Error("declared name should resolve as an attribute")
	}
	if d.HasAttr("email_address") {
		t.Error("alias should not resolve as an attribute")
	}
	if !d.HasAttr("contact") {
		t.Error("group name should resolve as an attribute")
	}
}

func TestDynamicColumnSetMatchesAnything(t *testing.T) {
	c := &Column{Name: "extras", Kind: MembershipMembers, Dynamic: true}
	if !c.Matches("whatever") {
		t.Error("dynamic set should match any label")
	}
}

func TestCloneIsDeep(t *testing.T) {
	d := &Definition{
		Name:    "S",
		Columns: []*Column{{Name: "a", Members: []string{"x"}, Kind: MembershipMembers}},
		Groups:  []*Group{{Name: "g", Members: []string{"a"}}},
	}
	c := d.Clone()
	c.Columns[0].Members[0] = "changed"
	c.Groups[0].Members[0] = "changed"
	if d.Columns[0].Members[0] != "x" || d.Groups[0].Members[0] != "a" {
		t.Error("clone shares member slices with the original")
	}
}
