// Package report renders a run's diagnostics. The human and JSON renderings
// are both projections of the same ordered diagnostic slice; neither adds or
// removes findings.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/maraichr/framelint/pkg/diag"
)

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiGreen  = "\x1b[32m"
	ansiReset  = "\x1b[0m"
)

// Report is one run's renderable outcome.
type Report struct {
	RunID       string
	Diagnostics []diag.Diagnostic
	Files       int
	Elapsed     time.Duration
}

// Errors and Warnings count findings by severity.
func (r *Report) Errors() int {
	e, _ := diag.Counts(r.Diagnostics)
	return e
}

func (r *Report) Warnings() int {
	_, w := diag.Counts(r.Diagnostics)
	return w
}

// WriteHuman renders one block per diagnostic plus a summary line.
func (r *Report) WriteHuman(w io.Writer, color bool) {
	for _, d := range r.Diagnostics {
		mark := "✗"
		tint := ansiRed
		if d.Severity == diag.SeverityWarning {
			mark = "!"
			tint = ansiYellow
		}
		loc := d.File
		if loc == "" {
			loc = "<run>"
		}
		if d.Line > 0 {
			loc = fmt.Sprintf("%s:%d", loc, d.Line)
			if d.Column > 0 {
				loc = fmt.Sprintf("%s:%d", loc, d.Column)
			}
		}
		if color {
			fmt.Fprintf(w, "%s%s%s %s %s: %s\n", tint, mark, ansiReset, loc, d.Severity, d.Message)
		} else {
			fmt.Fprintf(w, "%s %s %s: %s\n", mark, loc, d.Severity, d.Message)
		}
	}
	if len(r.Diagnostics) > 0 {
		fmt.Fprintln(w)
	}
	r.writeSummary(w, color)
}

func (r *Report) writeSummary(w io.Writer, color bool) {
	elapsed := r.Elapsed.Round(time.Millisecond)
	if elapsed == 0 {
		elapsed = r.Elapsed
	}
	errors, warnings := diag.Counts(r.Diagnostics)
	switch {
	case errors > 0:
		line := fmt.Sprintf("✗ Found %d %s in %d %s (%s)",
			errors, plural(errors, "error"), r.Files, plural(r.Files, "file"), elapsed)
		if warnings > 0 {
			line = fmt.Sprintf("✗ Found %d %s and %d %s in %d %s (%s)",
				errors, plural(errors, "error"), warnings, plural(warnings, "warning"),
				r.Files, plural(r.Files, "file"), elapsed)
		}
		if color {
			fmt.Fprintf(w, "%s%s%s\n", ansiRed, line, ansiReset)
		} else {
			fmt.Fprintln(w, line)
		}
	case warnings > 0:
		line := fmt.Sprintf("! Found %d %s in %d %s (%s)",
			warnings, plural(warnings, "warning"), r.Files, plural(r.Files, "file"), elapsed)
		if color {
			fmt.Fprintf(w, "%s%s%s\n", ansiYellow, line, ansiReset)
		} else {
			fmt.Fprintln(w, line)
		}
	default:
		line := fmt.Sprintf("✓ Checked %d %s in %s", r.Files, plural(r.Files, "file"), elapsed)
		if color {
			fmt.Fprintf(w, "%s%s%s\n", ansiGreen, line, ansiReset)
		} else {
			fmt.Fprintln(w, line)
		}
	}
}

// WriteJSON renders the machine-readable form: the ordered diagnostic array,
// nothing computed beyond it.
func (r *Report) WriteJSON(w io.Writer) error {
	ds := r.Diagnostics
	if ds == nil {
		ds = []diag.Diagnostic{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ds)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
