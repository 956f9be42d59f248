package mcptools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maraichr/framelint/internal/engine"
	"github.com/maraichr/framelint/pkg/schema"
)

// GetSchemaParams are the parameters for the get_schema tool.
type GetSchemaParams struct {
	Name string `json:"name"`
}

// GetSchemaHandler implements the get_schema MCP tool.
type GetSchemaHandler struct {
	linter *engine.Linter
	logger *slog.Logger
}

func NewGetSchemaHandler(linter *engine.Linter, logger *slog.Logger) *GetSchemaHandler {
	return &GetSchemaHandler{linter: linter, logger: logger}
}

// Handle renders one schema's columns, aliases, families, and groups.
func (h *GetSchemaHandler) Handle(ctx context.Context, params GetSchemaParams) (string, error) {
	if params.Name == "" {
		return "", fmt.Errorf("name is required")
	}
	def, ok := h.linter.Schema(params.Name)
	if !ok {
		suggestion := schema.Suggest(params.Name, h.linter.SchemaNames())
		if suggestion != "" {
			return "", fmt.Errorf("schema '%s' not found (did you mean '%s'?)", params.Name, suggestion)
		}
		return "", fmt.Errorf("schema '%s' not found", params.Name)
	}

	rb := NewResponseBuilder(0)
	loc := ""
	if def.File != "" {
		loc = fmt.Sprintf(" — %s:%d", def.File, def.Line)
	}
	rb.AddHeader(fmt.Sprintf("**%s**%s", def.Name, loc))

	shown := 0
	for _, c := range def.Columns {
		if !rb.AddLine(columnLine(c)) {
			break
		}
		shown++
	}
	for _, g := range def.Groups {
		if !rb.AddLine(fmt.Sprintf("- `%s` group: %s", g.Name, strings.Join(g.Members, ", "))) {
			break
		}
		shown++
	}
	if !def.AllowExtra {
		rb.AddLine("")
		rb.AddLine("Extra columns are **not** allowed; undeclared writes are errors.")
	}

	return rb.Finalize(shown, len(def.Columns)+len(def.Groups)), nil
}

func columnLine(c *schema.Column) string {
	var notes []string
	if c.Alias != "" {
		notes = append(notes, fmt.Sprintf("alias `%s`", c.Alias))
	}
	if c.Nullable {
		notes = append(notes, "nullable")
	}
	switch c.Kind {
	case schema.MembershipMembers:
		if c.Dynamic {
			notes = append(notes, "dynamic member set")
		} else {
			notes = append(notes, "members: "+strings.Join(c.Members, ", "))
		}
	case schema.MembershipRegex:
		notes = append(notes, fmt.Sprintf("pattern `%s`", c.Pattern))
	}
	line := fmt.Sprintf("- `%s` %s", c.Name, c.Type)
	if len(notes) > 0 {
		line += " (" + strings.Join(notes, "; ") + ")"
	}
	return line
}
