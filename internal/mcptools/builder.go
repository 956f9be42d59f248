package mcptools

import (
	"fmt"
	"strings"
)

const defaultMaxTokens = 4000

// ResponseBuilder constructs token-budgeted Markdown responses for MCP tools.
type ResponseBuilder struct {
	buf           strings.Builder
	tokenEstimate int
	maxTokens     int
	truncated     bool
}

// NewResponseBuilder creates a builder with the given token budget.
// If maxTokens <= 0, defaultMaxTokens is used.
func NewResponseBuilder(maxTokens int) *ResponseBuilder {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &ResponseBuilder{maxTokens: maxTokens}
}

// AddHeader writes a header line to the response.
func (rb *ResponseBuilder) AddHeader(text string) {
	line := text + "\n\n"
	rb.buf.WriteString(line)
	rb.tokenEstimate += len(line) / 4
}

// AddLine writes a single line to the response, returning false if budget exceeded.
func (rb *ResponseBuilder) AddLine(text string) bool {
	line := text + "\n"
	cost := len(line) / 4
	if rb.tokenEstimate+cost > rb.maxTokens {
		rb.truncated = true
		return false
	}
	rb.buf.WriteString(line)
	rb.tokenEstimate += cost
	return true
}

// Finalize appends a truncation note when items were cut and returns the
// response text.
func (rb *ResponseBuilder) Finalize(shown, total int) string {
	if rb.truncated || shown < total {
		rb.buf.WriteString(fmt.Sprintf("\n_Showing %d of %d items (truncated to fit response budget)._\n", shown, total))
	}
	return rb.buf.String()
}
