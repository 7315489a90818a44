package server

import (
	"context"
	"encoding/json"

	"github.com/ajitpratap0/hudu-mcp/pkg/protocol"
	"github.com/ajitpratap0/hudu-mcp/pkg/tools"
)

// ToolsProvider serves tools/list and tools/call.
//
// Call returns an error wrapping tools.ErrUnknownTool when name is not
// registered. Tool-level failures are reported through the ToolResult and
// never as an error.
type ToolsProvider interface {
	List() []protocol.Tool
	Call(ctx context.Context, name string, arguments json.RawMessage) (protocol.ToolResult, error)
}

// ResourcesProvider serves resources/list and resources/read
type ResourcesProvider interface {
	ListResources(ctx context.Context) []protocol.Resource
	ReadResource(ctx context.Context, uri string) (*protocol.ReadResourceResult, error)
}

var (
	_ ToolsProvider     = (*tools.Registry)(nil)
	_ ResourcesProvider = (*ResourceProvider)(nil)
)
