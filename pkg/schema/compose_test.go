package schema

import (
	"errors"
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func exact(name string, t ValueType) *Column {
	return &Column{Name: name, Type: t, Kind: MembershipExact}
}

func def(name string, cols ...*Column) *Definition {
	return &Definition{Name: name, Columns: cols, AllowExtra: true}
}

func columnNames(d *Definition) []string {
	names := make([]string, 0, len(d.Columns))
	for _, c := range d.Columns {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

func TestComposeUnionDeduplicates(t *testing.T) {
	a := def("A", exact("id", TypeInt), exact("a_col", TypeStr))
	b := def("B", exact("id", TypeInt), exact("b_col", TypeStr))

	combined, err := Compose(a, b, "Combined")
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	got := columnNames(combined)
	want := []string{"a_col", "b_col", "id"}
	if len(got) != len(want) {
		t.Fatalf("columns = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("columns = %v, want %v", got, want)
		}
	}
}

func TestComposeConflictNamesColumn(t *testing.T) {
	a := def("A", exact("id", TypeInt))
	b := def("B", exact("id", TypeStr))

	_, err := Compose(a, b, "")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Column != "id" {
		t.Errorf("conflict column = %q, want id", conflict.Column)
	}
}

func TestComposeConflictBlameIsOrderIndependent(t *testing.T) {
	// Two conflicting columns; both orders must blame the smaller label, not
	// whichever the right operand declares first.
	a := def("A", exact("id", TypeInt), exact("ts", TypeStr))
	b := def("B", exact("ts", TypeInt), exact("id", TypeStr))

	var ab, ba *ConflictError
	_, errAB := Compose(a, b, "")
	_, errBA := Compose(b, a, "")
	if !errors.As(errAB, &ab) || !errors.As(errBA, &ba) {
		t.Fatalf("expected ConflictError both ways, got %v / %v", errAB, errBA)
	}
	if ab.Column != "id" || ba.Column != "id" {
		t.Errorf("blamed columns = %q / %q, want id both ways", ab.Column, ba.Column)
	}
}

func TestComposeDefaultName(t *testing.T) {
	a := def("A", exact("x", TypeInt))
	b := def("B", exact("y", TypeInt))
	combined, err := Compose(a, b, "")
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if combined.Name != "A_B" {
		t.Errorf("name = %q, want A_B", combined.Name)
	}
}

func TestComposeAliasCollision(t *testing.T) {
	a := def("A", &Column{Name: "email", Alias: "contact", Type: TypeStr, Kind: MembershipExact})
	b := def("B", &Column{Name: "contact", Type: TypeInt, Kind: MembershipExact})

	// b's "contact" lands on a's alias lookup key with a different type.
	if _, err := Compose(a, b, ""); err == nil {
		t.Fatal("expected a lookup-key conflict")
	}
}

// genSchema builds small random schemas over a shared column-name pool so
// collisions actually occur.
func genSchema(name string) gopter.Gen {
	pool := []string{"id", "ts", "email", "score", "label", "flag"}
	types := []ValueType{TypeInt, TypeFloat, TypeStr, TypeBool}
	return gen.SliceOf(gen.IntRange(0, len(pool)*len(types)-1)).Map(func(picks []int) *Definition {
		d := &Definition{Name: name, AllowExtra: true}
		used := make(map[string]bool)
		for _, p := range picks {
			col := pool[p%len(pool)]
			if used[col] {
				continue
			}
			used[col] = true
			d.Columns = append(d.Columns, exact(col, types[(p/len(pool))%len(types)]))
		}
		return d
	})
}

func TestComposeOrderIndependence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("verdict and column set are order-independent", prop.ForAll(
		func(a, b *Definition) bool {
			ab, errAB := Compose(a, b, "AB")
			ba, errBA := Compose(b, a, "BA")
			if (errAB == nil) != (errBA == nil) {
				return false
			}
			if errAB != nil {
				var ca, cb *ConflictError
				// Both orders must blame the same column.
				return errors.As(errAB, &ca) && errors.As(errBA, &cb) && ca.Column == cb.Column
			}
			na, nb := columnNames(ab), columnNames(ba)
			if len(na) != len(nb) {
				return false
			}
			for i := range na {
				if na[i] != nb[i] {
					return false
				}
			}
			return true
		},
		genSchema("A"),
		genSchema("B"),
	))

	properties.Property("associativity of the success verdict", prop.ForAll(
		func(a, b, c *Definition) bool {
			left := composeChain(composePair(a, b), c)
			right := composeChain(a, composePair(b, c))
			return (left == nil) == (right == nil) &&
				(left == nil || equalNames(left, right))
		},
		genSchema("A"),
		genSchema("B"),
		genSchema("C"),
	))

	properties.TestingRun(t)
}

func composePair(a, b *Definition) *Definition {
	d, err := Compose(a, b, "")
	if err != nil {
		return nil
	}
	return d
}

func composeChain(a, c *Definition) *Definition {
	if a == nil || c == nil {
		return nil
	}
	return composePair(a, c)
}

func equalNames(a, b *Definition) bool {
	na, nb := columnNames(a), columnNames(b)
	if len(na) != len(nb) {
		return false
	}
	for i := range na {
		if na[i] != nb[i] {
			return false
		}
	}
	return true
}

func TestSelectAndDrop(t *testing.T) {
	d := def("S", exact("a", TypeInt), exact("b", TypeStr), exact("c", TypeFloat))

	sel, unknown := d.Select([]string{"a", "c", "nope"}, "")
	if sel.Name != "S_Select" {
		t.Errorf("select name = %q", sel.Name)
	}
	if len(sel.Columns) != 2 {
		t.Errorf("select kept %d columns, want 2", len(sel.Columns))
	}
	if len(unknown) != 1 || unknown[0] != "nope" {
		t.Errorf("select unknown = %v", unknown)
	}

	drop, unknown := d.Drop([]string{"b"}, "Trimmed")
	if drop.Name != "Trimmed" {
		t.Errorf("drop name = %q", drop.Name)
	}
	if len(drop.Columns) != 2 || len(unknown) != 0 {
		t.Errorf("drop result: %v unknown %v", columnNames(drop), unknown)
	}
	if _, ok := drop.Attr("b"); ok {
		t.Error("dropped column still present")
	}
}

func TestSelectLabelsNarrowsFamilies(t *testing.T) {
	family := &Column{Name: "sensors", Pattern: `sensor_\d+`, Type: TypeFloat, Kind: MembershipRegex}
	if err := family.CompilePattern(); err != nil {
		t.Fatalf("compile: %v", err)
	}
	d := def("S", exact("id", TypeInt), family)

	sel, unknown := d.SelectLabels([]string{"sensor_7", "id"}, "")
	if len(unknown) != 0 {
		t.Fatalf("unknown = %v", unknown)
	}
	col, ok := sel.Lookup("sensor_7")
	if !ok || col == nil || col.Kind != MembershipExact {
		t.Errorf("family member not narrowed to an exact column: %+v", col)
	}
	if _, ok := sel.Lookup("sensor_8"); ok {
		t.Error("projection should not keep the whole family")
	}
}
