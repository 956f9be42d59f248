package schema

import (
	"testing"

	"github.com/agnivade/levenshtein"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestSuggestPicksClosest(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		want       string
	}{
		{"emai", []string{"email", "emails"}, "email"},
		{"user_idd", []string{"user_id", "user_ids"}, "user_id"},
		{"completely_off", []string{"email", "user_id"}, ""},
		{"id", []string{"ids", "ts"}, "ids"}, // short names get a bound of 1
		{"id", []string{"ab", "ts"}, ""},     // distance 2 on a 2-rune name: too far
		{"abc", []string{"abd", "abe"}, "abd"},
		{"col", []string{"cols", "colx", "acol"}, "acol"}, // ties break lexicographically after length
	}
	for _, tt := range tests {
		if got := Suggest(tt.name, tt.candidates); got != tt.want {
			t.Errorf("Suggest(%q, %v) = %q, want %q", tt.name, tt.candidates, got, tt.want)
		}
	}
}

func TestSuggestTieBreaksAreDeterministic(t *testing.T) {
	// Same distance, same length: lexicographic order decides, regardless
	// of candidate order.
	forward := Suggest("emak", []string{"emab", "emac"})
	reverse := Suggest("emak", []string{"emac", "emab"})
	if forward != "emab" || reverse != "emab" {
		t.Errorf("tie-break unstable: %q vs %q", forward, reverse)
	}
}

func TestSuggestSkipsIdentical(t *testing.T) {
	// The unknown name itself is never suggested back.
	if got := Suggest("email", []string{"email", "emails"}); got != "emails" {
		t.Errorf("got %q, want emails", got)
	}
}

func TestSuggestDistanceBoundProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	identifier := gen.RegexMatch(`[a-z][a-z_]{0,9}`)

	properties.Property("a suggestion is within the bound and never the name itself", prop.ForAll(
		func(name string, candidates []string) bool {
			got := Suggest(name, candidates)
			if got == "" {
				return true
			}
			bound := 2
			if len([]rune(name)) < 3 {
				bound = 1
			}
			return got != name && levenshtein.ComputeDistance(name, got) <= bound
		},
		identifier,
		gen.SliceOf(identifier),
	))

	properties.TestingRun(t)
}

func TestDefinitionSuggestUsesAllAddressableNames(t *testing.T) {
	d := &Definition{
		Name: "S",
		Columns: []*Column{
			{Name: "email", Alias: "email_address", Type: TypeStr, Kind: MembershipExact},
			{Name: "legs", Members: []string{"leg_a", "leg_b"}, Type: TypeStr, Kind: MembershipMembers},
		},
		Groups: []*Group{{Name: "contact", Members: []string{"email"}}},
	}

	// Subscript suggestions draw on lookup keys, set members, group names.
	if got := d.SuggestLabel("email_addres"); got != "email_address" {
		t.Errorf("alias suggestion = %q", got)
	}
	if got := d.SuggestLabel("leg_c"); got != "leg_a" {
		t.Errorf("member suggestion = %q", got)
	}
	if got := d.SuggestLabel("contacts"); got != "contact" {
		t.Errorf("group suggestion = %q", got)
	}

	// Attribute suggestions draw on declared names, not aliases.
	if got := d.SuggestAttr("emial"); got != "email" {
		t.Errorf("attr suggestion = %q", got)
	}
}
