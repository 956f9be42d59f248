package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/maraichr/framelint/pkg/diag"
)

func sample() *Report {
	return &Report{
		RunID: "test-run",
		Diagnostics: []diag.Diagnostic{
			{
				File: "app.py", Line: 12, Column: 8,
				Severity: diag.SeverityError, Code: diag.CodeUnknownColumn,
				Message:    "column 'emai' does not exist in UserSchema (did you mean 'email'?)",
				Suggestion: "email",
			},
			{
				File: "schemas.py", Line: 3,
				Severity: diag.SeverityWarning, Code: diag.CodeReservedColumn,
				Message: "column name 'count' in Stats shadows a pandas/polars method under attribute access",
			},
		},
		Files:   2,
		Elapsed: 42 * time.Millisecond,
	}
}

func TestWriteHuman(t *testing.T) {
	var buf bytes.Buffer
	sample().WriteHuman(&buf, false)
	out := buf.String()

	for _, want := range []string{
		"✗ app.py:12:8 error: column 'emai' does not exist in UserSchema (did you mean 'email'?)",
		"! schemas.py:3 warning:",
		"✗ Found 1 error and 1 warning in 2 files (42ms)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("human output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("color codes emitted with color disabled")
	}
}

func TestWriteHumanSuccess(t *testing.T) {
	var buf bytes.Buffer
	r := &Report{Files: 3, Elapsed: 7 * time.Millisecond}
	r.WriteHuman(&buf, false)
	if got := buf.String(); got != "✓ Checked 3 files in 7ms\n" {
		t.Errorf("summary = %q", got)
	}
}

func TestJSONMatchesHumanContent(t *testing.T) {
	r := sample()
	var buf bytes.Buffer
	if err := r.WriteJSON(&buf); err != nil {
		t.Fatalf("write json: %v", err)
	}
	var decoded []diag.Diagnostic
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != len(r.Diagnostics) {
		t.Fatalf("json has %d diagnostics, human path has %d", len(decoded), len(r.Diagnostics))
	}
	for i := range decoded {
		if decoded[i] != r.Diagnostics[i] {
			t.Errorf("diagnostic %d diverged: %+v vs %+v", i, decoded[i], r.Diagnostics[i])
		}
	}
}

func TestJSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := (&Report{}).WriteJSON(&buf); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("empty report = %q, want []", got)
	}
}
