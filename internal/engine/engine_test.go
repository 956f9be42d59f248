package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/maraichr/framelint/internal/config"
	"github.com/maraichr/framelint/internal/parser"
	"github.com/maraichr/framelint/pkg/diag"
)

func testEngine(jobs int) *Engine {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return New(&config.Config{Jobs: jobs}, logger)
}

func input(path, src string) parser.FileInput {
	return parser.FileInput{Path: path, Content: []byte(src)}
}

func TestRunAcrossFiles(t *testing.T) {
	// The schema lives in one file, the access in another; phase 1 makes it
	// visible project-wide before any checking starts.
	schemas := input("schemas.py", `
class UserSchema(BaseSchema):
    user_id = Column(type=int)
    email = Column(type=str)
`)
	app := input("app.py", `
from schemas import UserSchema

def handle(df: DataFrame[UserSchema]):
    return df["emai"]
`)
	res := testEngine(4).Run(context.Background(), []parser.FileInput{app, schemas})
	if res.Internal != nil {
		t.Fatalf("internal: %v", res.Internal)
	}
	if len(res.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %v", res.Diagnostics)
	}
	d := res.Diagnostics[0]
	if d.Code != diag.CodeUnknownColumn || d.File != "app.py" || d.Suggestion != "email" {
		t.Errorf("unexpected diagnostic: %+v", d)
	}
}

func TestParseErrorDoesNotAbortRun(t *testing.T) {
	broken := input("broken.py", "def broken(:\n")
	good := input("good.py", `
class S(BaseSchema):
    a = Column(type=int)

def handle(df: DataFrame[S]):
    return df["b"]
`)
	res := testEngine(2).Run(context.Background(), []parser.FileInput{broken, good})
	if res.Internal != nil {
		t.Fatalf("internal: %v", res.Internal)
	}
	var codes []diag.Code
	for _, d := range res.Diagnostics {
		codes = append(codes, d.Code)
	}
	if len(codes) != 2 || codes[0] != diag.CodeParseError || codes[1] != diag.CodeUnknownColumn {
		t.Fatalf("codes = %v, want [PARSE_ERROR UNKNOWN_COLUMN]", codes)
	}
}

func TestEveryFileFailingToParseStillReports(t *testing.T) {
	// A run where nothing survives phase 1 must still finish and report the
	// parse errors, not die in phase 2.
	inputs := []parser.FileInput{
		input("bad1.py", "def broken(:\n"),
		input("bad2.py", "class (:\n"),
	}
	res := testEngine(4).Run(context.Background(), inputs)
	if res.Internal != nil {
		t.Fatalf("internal: %v", res.Internal)
	}
	if len(res.Diagnostics) != 2 {
		t.Fatalf("diagnostics = %v", res.Diagnostics)
	}
	for _, d := range res.Diagnostics {
		if d.Code != diag.CodeParseError {
			t.Errorf("unexpected diagnostic: %+v", d)
		}
	}
}

func TestNoFilesIsAWarning(t *testing.T) {
	res := testEngine(1).Run(context.Background(), nil)
	if res.Internal != nil {
		t.Fatalf("internal: %v", res.Internal)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Code != diag.CodeNoFiles {
		t.Fatalf("diagnostics = %v", res.Diagnostics)
	}
	if res.Diagnostics[0].Severity != diag.SeverityWarning {
		t.Error("NO_FILES should be a warning, not an error")
	}
	if OutcomeOf(res, false) != OutcomeSuccess {
		t.Error("warnings alone should not fail a non-strict run")
	}
	if OutcomeOf(res, true) != OutcomeFindings {
		t.Error("strict mode should fail on warnings")
	}
}

func TestDiagnosticOrderIsStable(t *testing.T) {
	inputs := []parser.FileInput{
		input("b.py", "def f(df: \"DataFrame[S]\"):\n    return df[\"x\"], df[\"y\"]\n"),
		input("a.py", "class S(BaseSchema):\n    a = Column(type=int)\n\ndef g(df: DataFrame[S]):\n    return df[\"z\"]\n"),
	}
	res := testEngine(3).Run(context.Background(), inputs)
	files := make([]string, 0, len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		files = append(files, fmt.Sprintf("%s:%d", d.File, d.Line))
	}
	want := []string{"a.py:5", "b.py:2", "b.py:2"}
	if !reflect.DeepEqual(files, want) {
		t.Fatalf("order = %v, want %v", files, want)
	}
}

func TestIdempotenceProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	identifier := gen.RegexMatch(`[a-z][a-z_]{0,8}`)

	properties.Property("two runs on identical input produce identical output", prop.ForAll(
		func(col1, col2, access string, jobs int) bool {
			src := fmt.Sprintf(`
class S(BaseSchema):
    %s = Column(type=int)
    %s = Column(type=str)

def handle(df: DataFrame[S]):
    return df[%q], df[%q]
`, col1, col2, access, col1)
			inputs := []parser.FileInput{input("gen.py", src), input("other.py", "x = 1\n")}
			first := testEngine(jobs).Run(context.Background(), inputs)
			second := testEngine(jobs).Run(context.Background(), inputs)
			if first.Internal != nil || second.Internal != nil {
				return false
			}
			return reflect.DeepEqual(first.Diagnostics, second.Diagnostics)
		},
		identifier,
		identifier,
		identifier,
		gen.IntRange(1, 8),
	))

	properties.TestingRun(t)
}

func TestLinterCheckFilesFiltersToSubmitted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir+"/schemas.py", `
class S(BaseSchema):
    a = Column(type=int)

def bad(df: DataFrame[S]):
    return df["typo_here"]
`)

	linter, err := NewLinter(context.Background(), testEngine(2), []string{dir + "/schemas.py"})
	if err != nil {
		t.Fatalf("new linter: %v", err)
	}
	if _, ok := linter.Schema("S"); !ok {
		t.Fatal("project schema not resolved")
	}

	res, err := linter.CheckFiles(context.Background(), []parser.FileInput{
		input("buffer.py", "def f(df: \"DataFrame[S]\"):\n    return df[\"ab\"]\n"),
	})
	if err != nil {
		t.Fatalf("check files: %v", err)
	}
	// The project file's own finding is excluded; only the buffer's remains.
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].File != "buffer.py" {
		t.Fatalf("diagnostics = %v", res.Diagnostics)
	}
	if res.Diagnostics[0].Suggestion != "a" {
		t.Errorf("suggestion = %q, want a", res.Diagnostics[0].Suggestion)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
