package analysis

import (
	"strings"
	"testing"

	"github.com/maraichr/framelint/internal/parser"
	"github.com/maraichr/framelint/internal/registry"
	"github.com/maraichr/framelint/pkg/diag"
)

// checkSource runs the full single-file pipeline: parse, collect, resolve,
// freeze, check. Returned diagnostics are the checker's only.
func checkSource(t *testing.T, src string) []diag.Diagnostic {
	t.Helper()
	p := parser.New()
	f, err := p.Parse(parser.FileInput{Path: "app.py", Content: []byte(src)})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	decls, _ := registry.Collect(f, registry.Options{})
	reg, _ := registry.Resolve(decls, registry.Options{})
	reg.Freeze()
	return Check(f, reg, Options{})
}

func wantNone(t *testing.T, diags []diag.Diagnostic) {
	t.Helper()
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got: %v", diags)
	}
}

func wantOne(t *testing.T, diags []diag.Diagnostic, code diag.Code) diag.Diagnostic {
	t.Helper()
	var found []diag.Diagnostic
	for _, d := range diags {
		if d.Code == code {
			found = append(found, d)
		}
	}
	if len(found) != 1 {
		t.Fatalf("expected exactly one %s, got %d in %v", code, len(found), diags)
	}
	return found[0]
}

const userSchema = `
class UserSchema(BaseSchema):
    user_id = Column(type=int)
    email = Column(type=str)
`

func TestKnownColumnAccess(t *testing.T) {
	diags := checkSource(t, userSchema+`
def handle(df: DataFrame[UserSchema]):
    a = df["email"]
    b = df.user_id
    return a, b
`)
	wantNone(t, diags)
}

func TestUnknownColumnWithSuggestion(t *testing.T) {
	diags := checkSource(t, userSchema+`
def handle(df: DataFrame[UserSchema]):
    return df["emai"]
`)
	d := wantOne(t, diags, diag.CodeUnknownColumn)
	if d.Suggestion != "email" {
		t.Errorf("suggestion = %q, want email", d.Suggestion)
	}
	if d.Line != 7 {
		t.Errorf("line = %d, want 7", d.Line)
	}
}

func TestSuggestionPrefersCloserName(t *testing.T) {
	diags := checkSource(t, `
class LogSchema(BaseSchema):
    email = Column(type=str)
    emails = Column(type=str)

def handle(df: DataFrame[LogSchema]):
    return df["emai"]
`)
	d := wantOne(t, diags, diag.CodeUnknownColumn)
	if d.Suggestion != "email" {
		t.Errorf("suggestion = %q, want email (distance 1 beats distance 2)", d.Suggestion)
	}
}

func TestFarNameGetsNoSuggestion(t *testing.T) {
	diags := checkSource(t, userSchema+`
def handle(df: DataFrame[UserSchema]):
    return df["completely_different"]
`)
	d := wantOne(t, diags, diag.CodeUnknownColumn)
	if d.Suggestion != "" {
		t.Errorf("unexpected suggestion %q for a distant name", d.Suggestion)
	}
}

func TestUndeclaredMutation(t *testing.T) {
	src := `
class Strict(BaseSchema):
    user_id = Column(type=int)
    allow_extra_columns = False

def handle(df: DataFrame[Strict]):
    df["new_col"] = 1
    return df["new_col"]
`
	diags := checkSource(t, src)
	wantOne(t, diags, diag.CodeUndeclaredColumnMutation)
	// The follow-up read of the written column is not re-flagged.
	for _, d := range diags {
		if d.Code == diag.CodeUnknownColumn {
			t.Errorf("written column re-flagged as unknown: %v", d)
		}
	}
}

func TestMutationAllowedWithExtraColumns(t *testing.T) {
	diags := checkSource(t, userSchema+`
def handle(df: DataFrame[UserSchema]):
    df["new_col"] = 1
`)
	wantNone(t, diags)
}

func TestDeclaredMutationIsFine(t *testing.T) {
	diags := checkSource(t, `
class Strict(BaseSchema):
    user_id = Column(type=int)
    allow_extra_columns = False

def handle(df: DataFrame[Strict]):
    df["user_id"] = 0
`)
	wantNone(t, diags)
}

func TestAliasRedirection(t *testing.T) {
	src := `
class Contact(BaseSchema):
    email = Column(type=str, alias="email_address")

def handle(df: DataFrame[Contact]):
    ok = df["email_address"]
    bad = df["email"]
    return ok, bad
`
	diags := checkSource(t, src)
	d := wantOne(t, diags, diag.CodeUnknownColumn)
	if !strings.Contains(d.Message, "'email'") {
		t.Errorf("wrong column flagged: %s", d.Message)
	}
}

func TestRegexColumnSet(t *testing.T) {
	src := `
class Sensors(BaseSchema):
    readings = ColumnSet(members=r"sensor_\d+", type=float, regex=True)

def handle(df: DataFrame[Sensors]):
    a = df["sensor_1"]
    b = df["sensor_42"]
    c = df["sensor_x"]
    return a, b, c
`
	diags := checkSource(t, src)
	d := wantOne(t, diags, diag.CodeUnknownColumn)
	if !strings.Contains(d.Message, "'sensor_x'") {
		t.Errorf("wrong column flagged: %s", d.Message)
	}
}

func TestMemberColumnSetAndGroup(t *testing.T) {
	src := `
class Trades(BaseSchema):
    price = Column(type=float)
    volume = Column(type=float)
    legs = ColumnSet(members=["leg_a", "leg_b"], type=str)
    numeric = ColumnGroup(members=[price, volume])

def handle(df: DataFrame[Trades]):
    a = df["leg_a"]
    g = df["numeric"]
    bad = df["leg_c"]
    return a, g, bad
`
	diags := checkSource(t, src)
	d := wantOne(t, diags, diag.CodeUnknownColumn)
	if !strings.Contains(d.Message, "'leg_c'") {
		t.Errorf("wrong column flagged: %s", d.Message)
	}
}

func TestQuotedAnnotation(t *testing.T) {
	diags := checkSource(t, userSchema+`
def handle(df: "DataFrame[UserSchema]"):
    return df["emial"]
`)
	wantOne(t, diags, diag.CodeUnknownColumn)
}

func TestAnnotatedVariable(t *testing.T) {
	diags := checkSource(t, userSchema+`
def handle(raw):
    df: DataFrame[UserSchema] = transform(raw)
    return df["emial"]
`)
	wantOne(t, diags, diag.CodeUnknownColumn)
}

func TestFactoryCallBindings(t *testing.T) {
	diags := checkSource(t, userSchema+`
def handle(raw):
    a = UserSchema.from_pandas(raw)
    b = UserSchema.read_csv("users.csv")
    c = PandasFrame.from_schema(raw, UserSchema)
    d = pd.read_csv("users.csv", schema=UserSchema)
    return a["nope"], b["nope"], c["nope"], d["nope"]
`)
	if got := len(diags); got != 4 {
		t.Fatalf("expected 4 unknown-column errors, got %d: %v", got, diags)
	}
}

func TestReturnAnnotationBindsCallResult(t *testing.T) {
	diags := checkSource(t, userSchema+`
def load() -> DataFrame[UserSchema]:
    return UserSchema.read_csv("users.csv")

def handle():
    df = load()
    return df["emial"]
`)
	wantOne(t, diags, diag.CodeUnknownColumn)
}

func TestPreservingChainKeepsSchema(t *testing.T) {
	diags := checkSource(t, userSchema+`
def handle(df: DataFrame[UserSchema]):
    out = df.sort_values("user_id").head(10).copy()
    return out["emial"]
`)
	wantOne(t, diags, diag.CodeUnknownColumn)
}

func TestBooleanIndexingKeepsSchema(t *testing.T) {
	diags := checkSource(t, userSchema+`
def handle(df: DataFrame[UserSchema]):
    subset = df[df.user_id > 0]
    return subset["emial"]
`)
	wantOne(t, diags, diag.CodeUnknownColumn)
}

func TestProjectionNarrowsSchema(t *testing.T) {
	diags := checkSource(t, userSchema+`
def handle(df: DataFrame[UserSchema]):
    ids = df[["user_id"]]
    return ids["email"]
`)
	d := wantOne(t, diags, diag.CodeUnknownColumn)
	if !strings.Contains(d.Message, "'email'") {
		t.Errorf("wrong column flagged: %s", d.Message)
	}
}

func TestDropRemovesColumn(t *testing.T) {
	diags := checkSource(t, userSchema+`
def handle(df: DataFrame[UserSchema]):
    trimmed = df.drop(columns=["email"])
    return trimmed["email"]
`)
	wantOne(t, diags, diag.CodeUnknownColumn)
}

func TestMergeUnionsSchemas(t *testing.T) {
	src := `
class A(BaseSchema):
    id = Column(type=int)
    left_only = Column(type=str)

class B(BaseSchema):
    id = Column(type=int)
    right_only = Column(type=str)

def handle(a: DataFrame[A], b: DataFrame[B]):
    merged = a.merge(b, on="id")
    x = merged["left_only"]
    y = merged["right_only"]
    bad = merged["neither"]
    return x, y, bad
`
	diags := checkSource(t, src)
	d := wantOne(t, diags, diag.CodeUnknownColumn)
	if !strings.Contains(d.Message, "'neither'") {
		t.Errorf("wrong column flagged: %s", d.Message)
	}
}

func TestMergeConflictReportedOnce(t *testing.T) {
	src := `
class A(BaseSchema):
    id = Column(type=int)

class B(BaseSchema):
    id = Column(type=str)

def handle(a: DataFrame[A], b: DataFrame[B]):
    merged = a.merge(b, on="id")
    return merged["anything"]
`
	diags := checkSource(t, src)
	d := wantOne(t, diags, diag.CodeSchemaConflict)
	if !strings.Contains(d.Message, "'id'") {
		t.Errorf("conflict should name the column: %s", d.Message)
	}
	// The conflicted result is unknown; accesses on it stay unflagged.
	for _, d := range diags {
		if d.Code == diag.CodeUnknownColumn {
			t.Errorf("access on conflicted merge result flagged: %v", d)
		}
	}
}

func TestConcatUnionsSchemas(t *testing.T) {
	src := `
class A(BaseSchema):
    id = Column(type=int)
    a_col = Column(type=str)

class B(BaseSchema):
    id = Column(type=int)
    b_col = Column(type=str)

def handle(a: DataFrame[A], b: DataFrame[B]):
    both = concat([a, b])
    x = both["a_col"]
    bad = both["c_col"]
    return x, bad
`
	diags := checkSource(t, src)
	d := wantOne(t, diags, diag.CodeUnknownColumn)
	if !strings.Contains(d.Message, "'c_col'") {
		t.Errorf("wrong column flagged: %s", d.Message)
	}
}

func TestBranchDivergenceDowngradesToUnknown(t *testing.T) {
	src := `
class A(BaseSchema):
    a_col = Column(type=int)

class B(BaseSchema):
    b_col = Column(type=int)

def handle(a: DataFrame[A], b: DataFrame[B], flag):
    if flag:
        df = a
    else:
        df = b
    return df["a_col"]
`
	wantNone(t, checkSource(t, src))
}

func TestBranchAgreementKeepsSchema(t *testing.T) {
	src := userSchema + `
def handle(a: DataFrame[UserSchema], b: DataFrame[UserSchema], flag):
    if flag:
        df = a
    else:
        df = b
    return df["emial"]
`
	wantOne(t, checkSource(t, src), diag.CodeUnknownColumn)
}

func TestReassignmentOverwritesForwardOnly(t *testing.T) {
	src := `
class A(BaseSchema):
    a_col = Column(type=int)

class B(BaseSchema):
    b_col = Column(type=int)

def handle(a: DataFrame[A], b: DataFrame[B]):
    df = a
    x = df["a_col"]
    df = b
    y = df["a_col"]
    return x, y
`
	diags := checkSource(t, src)
	d := wantOne(t, diags, diag.CodeUnknownColumn)
	if d.Line != 12 {
		t.Errorf("error at line %d, want 12 (after the reassignment only)", d.Line)
	}
}

func TestUnboundVariableNeverFlagged(t *testing.T) {
	diags := checkSource(t, userSchema+`
def handle(df):
    return df["whatever"]
`)
	wantNone(t, diags)
}

func TestComputedSubscriptSkipped(t *testing.T) {
	diags := checkSource(t, userSchema+`
def handle(df: DataFrame[UserSchema], key):
    return df[key]
`)
	wantNone(t, diags)
}

func TestSchemaColumnSubscript(t *testing.T) {
	diags := checkSource(t, userSchema+`
class Other(BaseSchema):
    other_col = Column(type=int)

def handle(df: DataFrame[UserSchema]):
    ok = df[UserSchema.email]
    bad = df[Other.other_col]
    return ok, bad
`)
	wantOne(t, diags, diag.CodeUnknownColumn)
}

func TestDirectSchemaAttributeTypo(t *testing.T) {
	diags := checkSource(t, userSchema+`
def handle(df: DataFrame[UserSchema]):
    return df[UserSchema.emial]
`)
	d := wantOne(t, diags, diag.CodeUnknownColumn)
	if d.Suggestion != "email" {
		t.Errorf("suggestion = %q, want email", d.Suggestion)
	}
}

func TestReservedMethodAttributeNotFlagged(t *testing.T) {
	diags := checkSource(t, userSchema+`
def handle(df: DataFrame[UserSchema]):
    return df.describe()
`)
	wantNone(t, diags)
}

func TestUnresolvedSchemaSuppressesCascade(t *testing.T) {
	// Broken inherits from a cyclic pair; bindings to it go unknown, so no
	// reference errors pile on top of the schema error.
	src := `
class Broken(Broken, BaseSchema):
    x = Column(type=int)

def handle(df: DataFrame[Broken]):
    return df["definitely_not_there"]
`
	diags := checkSource(t, src)
	for _, d := range diags {
		if d.Code == diag.CodeUnknownColumn {
			t.Errorf("cascade from unresolved schema: %v", d)
		}
	}
}

func TestAugmentedSubscriptWrite(t *testing.T) {
	diags := checkSource(t, `
class Strict(BaseSchema):
    total = Column(type=int)
    allow_extra_columns = False

def handle(df: DataFrame[Strict]):
    df["total"] += 1
    df["missing"] += 1
`)
	wantOne(t, diags, diag.CodeUndeclaredColumnMutation)
}
