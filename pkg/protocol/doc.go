// Package protocol defines the JSON-RPC envelopes and MCP payloads exchanged
// by the Hudu MCP server.
//
// # Envelopes
//
// A Request whose id key is absent is a notification and never receives a
// response. A Request whose id is present, even as null, is a call:
//
//	{"jsonrpc":"2.0","method":"notifications/initialized"}          // notification
//	{"jsonrpc":"2.0","id":null,"method":"notifications/initialized"} // call, answered with {}
//
// Decoding a Request validates the envelope: jsonrpc must be "2.0", method
// must be a string, and id, when present, must be null, a string or a number.
// Violations wrap ErrInvalidRequest.
//
// # Payloads
//
// Tool, Resource and their list/call/read results mirror the MCP wire shapes.
// ToolResult is the uniform outcome produced by every tool executor.
package protocol
