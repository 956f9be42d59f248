package mcptools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maraichr/framelint/internal/engine"
	"github.com/maraichr/framelint/internal/parser"
	"github.com/maraichr/framelint/pkg/diag"
)

// CheckFilesParams are the parameters for the check_files tool.
type CheckFilesParams struct {
	Files []CheckFileInput `json:"files"`
}

// CheckFileInput is one source buffer to check.
type CheckFileInput struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// CheckFilesHandler implements the check_files MCP tool.
type CheckFilesHandler struct {
	linter *engine.Linter
	logger *slog.Logger
}

func NewCheckFilesHandler(linter *engine.Linter, logger *slog.Logger) *CheckFilesHandler {
	return &CheckFilesHandler{linter: linter, logger: logger}
}

// Handle checks the submitted buffers against the project schemas and
// renders the diagnostics.
func (h *CheckFilesHandler) Handle(ctx context.Context, params CheckFilesParams) (string, error) {
	if len(params.Files) == 0 {
		return "", fmt.Errorf("at least one file is required")
	}
	inputs := make([]parser.FileInput, 0, len(params.Files))
	for _, f := range params.Files {
		if f.Path == "" {
			return "", fmt.Errorf("every file needs a path")
		}
		inputs = append(inputs, parser.FileInput{Path: f.Path, Content: []byte(f.Content)})
	}

	res, err := h.linter.CheckFiles(ctx, inputs)
	if err != nil {
		return "", fmt.Errorf("check files: %w", err)
	}

	if len(res.Diagnostics) == 0 {
		return fmt.Sprintf("✓ No column errors in %d file(s).", len(inputs)), nil
	}

	errors, warnings := diag.Counts(res.Diagnostics)
	rb := NewResponseBuilder(0)
	rb.AddHeader(fmt.Sprintf("**Findings** (%d errors, %d warnings)", errors, warnings))

	shown := 0
	for _, d := range res.Diagnostics {
		line := fmt.Sprintf("- `%s:%d:%d` %s [%s]: %s", d.File, d.Line, d.Column, d.Severity, d.Code, d.Message)
		if !rb.AddLine(line) {
			break
		}
		shown++
	}

	return rb.Finalize(shown, len(res.Diagnostics)), nil
}
