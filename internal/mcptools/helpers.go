// Package mcptools serves the engine's contracts over the Model Context
// Protocol, so coding agents can look up schemas and check buffers without
// shelling out to the CLI.
package mcptools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolHandler produces the Markdown body of one tool response.
type ToolHandler[P any] interface {
	Handle(ctx context.Context, params P) (string, error)
}

// WrapHandler adapts a handler to the SDK callback shape. Handler errors
// (unknown schema, missing params) become in-band tool errors so the agent
// sees the message instead of a protocol failure; absent params run with the
// zero value.
func WrapHandler[P any](h ToolHandler[P]) func(context.Context, *sdkmcp.CallToolRequest, *P) (*sdkmcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, params *P) (*sdkmcp.CallToolResult, any, error) {
		var p P
		if params != nil {
			p = *params
		}
		text, err := h.Handle(ctx, p)
		if err != nil {
			return textResult(err.Error(), true), nil, nil
		}
		return textResult(text, false), nil, nil
	}
}

func textResult(text string, isErr bool) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		IsError: isErr,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: text}},
	}
}
