package protocol

import "encoding/json"

// Protocol methods served by the dispatcher
const (
	MethodInitialize    = "initialize"
	MethodInitialized   = "notifications/initialized"
	MethodPing          = "ping"
	MethodListTools     = "tools/list"
	MethodCallTool      = "tools/call"
	MethodListResources = "resources/list"
	MethodReadResource  = "resources/read"
)

// SupportedMethods lists the callable methods advertised by discovery documents
var SupportedMethods = []string{
	MethodInitialize,
	MethodListResources,
	MethodReadResource,
	MethodListTools,
	MethodCallTool,
	MethodPing,
}

// DefaultProtocolVersion is used when the client does not request one
const DefaultProtocolVersion = "2025-06-18"

// ClientInfo identifies the connecting client
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// ServerInfo identifies this server
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// CapabilityOptions is the per-capability settings object
type CapabilityOptions struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ServerCapabilities advertises what the server supports
type ServerCapabilities struct {
	Resources *CapabilityOptions `json:"resources,omitempty"`
	Tools     *CapabilityOptions `json:"tools,omitempty"`
}

// DefaultCapabilities returns the tools and resources capabilities
func DefaultCapabilities() ServerCapabilities {
	return ServerCapabilities{
		Resources: &CapabilityOptions{},
		Tools:     &CapabilityOptions{},
	}
}

// InitializeParams are the parameters of initialize
type InitializeParams struct {
	ProtocolVersion string          `json:"protocolVersion,omitempty"`
	Capabilities    json.RawMessage `json:"capabilities,omitempty"`
	ClientInfo      *ClientInfo     `json:"clientInfo,omitempty"`
}

// InitializeResult is the result of initialize
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      ServerInfo         `json:"serverInfo"`
}

// EmptyResult is returned by ping and answered notifications
type EmptyResult struct{}
