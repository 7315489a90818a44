// Package tools maps "resource + action" tool calls onto the Hudu gateway.
//
// The Registry is built once with NewRegistry and never mutated afterwards.
// Each tool has an Executor that validates its arguments, performs at most
// one gateway call (two or more only for search), and reports the outcome as
// a protocol.ToolResult. Executors never return Go errors: gateway failures
// become ToolResult errors prefixed with the tool's context.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/ajitpratap0/hudu-mcp/pkg/hudu"
	"github.com/ajitpratap0/hudu-mcp/pkg/logging"
	"github.com/ajitpratap0/hudu-mcp/pkg/pagination"
	"github.com/ajitpratap0/hudu-mcp/pkg/protocol"
)

// ErrUnknownTool is returned by Call for names that were never registered
var ErrUnknownTool = errors.New("unknown tool")

// Gateway is the part of the Hudu client used by executors
type Gateway interface {
	List(ctx context.Context, collection string, filters hudu.Filters) ([]json.RawMessage, error)
	Get(ctx context.Context, collection string, id int64) (json.RawMessage, error)
	Create(ctx context.Context, collection string, fields map[string]interface{}) (json.RawMessage, error)
	Update(ctx context.Context, collection string, id int64, fields map[string]interface{}) (json.RawMessage, error)
	Delete(ctx context.Context, collection string, id int64) error
	Archive(ctx context.Context, collection string, id int64) (json.RawMessage, error)
	Unarchive(ctx context.Context, collection string, id int64) (json.RawMessage, error)
	Action(ctx context.Context, collection string, id int64, action string) (json.RawMessage, error)

	APIInfo(ctx context.Context) (json.RawMessage, error)
	DeleteActivityLogs(ctx context.Context, datetime string, deleteUnassigned *bool) error
	CardJump(ctx context.Context, filters hudu.Filters) ([]json.RawMessage, error)
	CardLookup(ctx context.Context, filters hudu.Filters) ([]json.RawMessage, error)
	CompanyJump(ctx context.Context, filters hudu.Filters) ([]json.RawMessage, error)

	CompanyAssets(ctx context.Context, companyID int64, filters hudu.Filters) ([]json.RawMessage, error)
	CompanyAsset(ctx context.Context, companyID, assetID int64) (json.RawMessage, error)
	ArchiveCompanyAsset(ctx context.Context, companyID, assetID int64) (json.RawMessage, error)
	UnarchiveCompanyAsset(ctx context.Context, companyID, assetID int64) (json.RawMessage, error)
	MoveAssetLayout(ctx context.Context, companyID, assetID, layoutID int64) (json.RawMessage, error)
}

var _ Gateway = (*hudu.Client)(nil)

// Executor runs one tool against the gateway
type Executor func(ctx context.Context, args map[string]interface{}, gw Gateway) protocol.ToolResult

// Definition pairs a descriptor with its executor
type Definition struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
	Execute     Executor
}

type entry struct {
	tool    protocol.Tool
	execute Executor
}

// Registry is the immutable tool table
type Registry struct {
	gateway Gateway
	logger  logging.Logger
	extra   []Definition

	tools []protocol.Tool
	index map[string]entry
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger handed to executors that log
func WithLogger(logger logging.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithDefinitions registers additional tools after the built-in set
func WithDefinitions(defs ...Definition) Option {
	return func(r *Registry) {
		r.extra = append(r.extra, defs...)
	}
}

// NewRegistry builds the tool table. Every schema is resolved up front so a
// malformed descriptor fails at startup rather than on first use.
func NewRegistry(gw Gateway, opts ...Option) (*Registry, error) {
	if gw == nil {
		return nil, errors.New("tools: nil gateway")
	}

	r := &Registry{
		gateway: gw,
		logger:  logging.NewNop(),
		index:   make(map[string]entry),
	}
	for _, opt := range opts {
		opt(r)
	}

	defs := append(builtinDefinitions(r.logger), r.extra...)
	r.tools = make([]protocol.Tool, 0, len(defs))
	for _, def := range defs {
		if err := r.register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) register(def Definition) error {
	if def.Name == "" || def.Execute == nil {
		return fmt.Errorf("tools: definition %q is incomplete", def.Name)
	}
	if _, dup := r.index[def.Name]; dup {
		return fmt.Errorf("tools: duplicate tool %q", def.Name)
	}

	schema := def.Schema
	if schema == nil {
		schema = objectSchema(nil)
	}
	if _, err := schema.Resolve(&jsonschema.ResolveOptions{ValidateDefaults: true}); err != nil {
		return fmt.Errorf("tools: invalid schema for %q: %w", def.Name, err)
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("tools: failed to encode schema for %q: %w", def.Name, err)
	}

	tool := protocol.Tool{Name: def.Name, Description: def.Description, InputSchema: raw}
	r.tools = append(r.tools, tool)
	r.index[def.Name] = entry{tool: tool, execute: def.Execute}
	return nil
}

// List returns the descriptors in registration order
func (r *Registry) List() []protocol.Tool {
	out := make([]protocol.Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Lookup returns the descriptor registered under name
func (r *Registry) Lookup(name string) (protocol.Tool, bool) {
	e, ok := r.index[name]
	return e.tool, ok
}

// Len returns the number of registered tools
func (r *Registry) Len() int {
	return len(r.tools)
}

// Call decodes rawArgs and runs the named tool. Unknown names fail with
// ErrUnknownTool before any executor runs.
func (r *Registry) Call(ctx context.Context, name string, rawArgs json.RawMessage) (protocol.ToolResult, error) {
	e, ok := r.index[name]
	if !ok {
		return protocol.ToolResult{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	args, err := decodeArguments(rawArgs)
	if err != nil {
		return protocol.NewToolErrorf("Invalid arguments: %v", err), nil
	}
	if err := pagination.Normalize(args); err != nil {
		return protocol.NewToolErrorf("Invalid arguments: %v", err), nil
	}
	return e.execute(ctx, args, r.gateway), nil
}

// decodeArguments accepts an object, null or nothing. Numbers stay json.Number
// so large ids survive the round trip.
func decodeArguments(raw json.RawMessage) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string]interface{}{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var args map[string]interface{}
	if err := dec.Decode(&args); err != nil {
		return nil, errors.New("arguments must be a JSON object")
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	return args, nil
}

func builtinDefinitions(logger logging.Logger) []Definition {
	var defs []Definition
	for _, rt := range resourceTools() {
		defs = append(defs, rt.definition(), rt.queryDefinition())
	}
	return append(defs,
		adminTool(),
		navigationTool(),
		searchTool(logger),
		companyAssetsTool(),
	)
}
