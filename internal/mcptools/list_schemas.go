package mcptools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maraichr/framelint/internal/engine"
)

// ListSchemasParams are the parameters for the list_schemas tool.
type ListSchemasParams struct {
	Limit int `json:"limit,omitempty"`
}

// ListSchemasHandler implements the list_schemas MCP tool.
type ListSchemasHandler struct {
	linter *engine.Linter
	logger *slog.Logger
}

func NewListSchemasHandler(linter *engine.Linter, logger *slog.Logger) *ListSchemasHandler {
	return &ListSchemasHandler{linter: linter, logger: logger}
}

// Handle lists every resolved schema in the project.
func (h *ListSchemasHandler) Handle(ctx context.Context, params ListSchemasParams) (string, error) {
	if params.Limit <= 0 {
		params.Limit = 100
	}

	names := h.linter.SchemaNames()
	if len(names) == 0 {
		return "No schemas found in this project.", nil
	}

	rb := NewResponseBuilder(0)
	rb.AddHeader(fmt.Sprintf("**Schemas** (%d found)", len(names)))

	shown := 0
	for _, name := range names {
		if shown >= params.Limit {
			break
		}
		def, ok := h.linter.Schema(name)
		if !ok {
			continue
		}
		loc := ""
		if def.File != "" {
			loc = fmt.Sprintf(" — %s:%d", def.File, def.Line)
		}
		if !rb.AddLine(fmt.Sprintf("- **%s** (%d columns)%s", def.Name, len(def.Columns), loc)) {
			break
		}
		shown++
	}

	return rb.Finalize(shown, len(names)), nil
}
