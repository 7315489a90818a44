package protocol

import (
	"encoding/json"
	"fmt"
)

// Tool is a tool descriptor
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// ListToolsResult is the result of tools/list
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

// CallToolParams are the parameters of tools/call
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Content is a single content block of a tool call result
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallToolResult is the result of a successful tools/call
type CallToolResult struct {
	Content []Content `json:"content"`
}

// ToolResult is the uniform outcome of a tool executor.
// Success implies Error is empty; failure implies Data is nil.
type ToolResult struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// NewToolSuccess builds a successful result
func NewToolSuccess(data interface{}, message string) ToolResult {
	return ToolResult{Success: true, Data: data, Message: message}
}

// NewToolError builds a failed result
func NewToolError(msg string) ToolResult {
	return ToolResult{Success: false, Error: msg}
}

// NewToolErrorf builds a failed result with a formatted message
func NewToolErrorf(format string, args ...interface{}) ToolResult {
	return NewToolError(fmt.Sprintf(format, args...))
}

// TextResult renders a tool result as a single indented JSON text block
func (r ToolResult) TextResult() (*CallToolResult, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return &CallToolResult{
		Content: []Content{{Type: "text", Text: string(data)}},
	}, nil
}
