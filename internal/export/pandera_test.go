package export

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/maraichr/framelint/pkg/schema"
)

func testSchema() *schema.Definition {
	return &schema.Definition{
		Name: "UserSchema",
		Columns: []*schema.Column{
			{Name: "user_id", Type: schema.TypeInt, Kind: schema.MembershipExact},
			{Name: "email", Alias: "email_address", Type: schema.TypeStr, Nullable: true, Kind: schema.MembershipExact},
			{Name: "legs", Members: []string{"leg_a", "leg_b"}, Type: schema.TypeStr, Kind: schema.MembershipMembers},
			{Name: "sensors", Pattern: `sensor_\d+`, Type: schema.TypeFloat, Kind: schema.MembershipRegex},
		},
		Groups:     []*schema.Group{{Name: "ids", Members: []string{"user_id"}}},
		AllowExtra: false,
	}
}

func TestPandera(t *testing.T) {
	doc := Pandera(testSchema())

	if doc.SchemaType != "dataframe" {
		t.Errorf("schema_type = %q", doc.SchemaType)
	}
	if !doc.Strict {
		t.Error("allow_extra_columns=false should export strict=true")
	}

	// Aliased columns export under their lookup key.
	email, ok := doc.Columns["email_address"]
	if !ok {
		t.Fatal("aliased column not keyed by its alias")
	}
	if email.DType != "str" || !email.Nullable || email.Required {
		t.Errorf("email spec = %+v", email)
	}
	if _, ok := doc.Columns["email"]; ok {
		t.Error("attribute name exported alongside the alias")
	}

	if got := doc.Columns["user_id"].DType; got != "int64" {
		t.Errorf("user_id dtype = %q", got)
	}

	// Enumerated sets expand; regex sets keep the pattern with regex: true.
	if _, ok := doc.Columns["leg_a"]; !ok {
		t.Error("set member leg_a missing")
	}
	sensors, ok := doc.Columns[`sensor_\d+`]
	if !ok || !sensors.Regex {
		t.Errorf("regex family spec = %+v (present=%v)", sensors, ok)
	}

	// Groups contribute no columns.
	if _, ok := doc.Columns["ids"]; ok {
		t.Error("group exported as a column")
	}
}

func TestWriteYAMLRoundTrips(t *testing.T) {
	doc := Pandera(testSchema())
	var buf bytes.Buffer
	if err := doc.WriteYAML(&buf); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	var decoded Document
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Name != "UserSchema" || len(decoded.Columns) != len(doc.Columns) {
		t.Errorf("round trip lost content: %+v", decoded)
	}
	if !strings.Contains(buf.String(), "schema_type: dataframe") {
		t.Errorf("yaml missing schema_type:\n%s", buf.String())
	}
}
