package diag

import "sort"

// Severity classifies how a finding affects the run outcome.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Code is a machine-readable diagnostic code.
type Code string

// File-level codes.
const (
	CodeParseError Code = "PARSE_ERROR"
)

// Schema declaration codes.
const (
	CodeSchemaConflict Code = "SCHEMA_CONFLICT"
	CodeSchemaCycle    Code = "SCHEMA_CYCLE"
	CodeReservedColumn Code = "RESERVED_COLUMN"
)

// Reference codes.
const (
	CodeUnknownColumn            Code = "UNKNOWN_COLUMN"
	CodeUndeclaredColumnMutation Code = "UNDECLARED_COLUMN_MUTATION"
)

// Run-level codes.
const (
	CodeNoFiles Code = "NO_FILES"
)

// Diagnostic is a single finding at a source location. Line and Column are
// 1-based; Column may be 0 when the finding covers a whole line.
type Diagnostic struct {
	File       string   `json:"file"`
	Line       int      `json:"line"`
	Column     int      `json:"column"`
	Severity   Severity `json:"severity"`
	Code       Code     `json:"code"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Sort orders diagnostics by file, line, column, code, then message.
// Identical inputs always produce identical output order.
func Sort(ds []Diagnostic) {
	sort.Slice(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
}

// Counts returns the number of error and warning diagnostics.
func Counts(ds []Diagnostic) (errors, warnings int) {
	for _, d := range ds {
		switch d.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		}
	}
	return errors, warnings
}
