// Package hudumcp serves a Hudu IT documentation instance to MCP clients.
//
// Every Hudu collection is exposed twice: as tools that create, read, update
// and delete records, and as read-only resources addressed by hudu:// URIs.
// The server speaks JSON-RPC 2.0 over stdio or HTTP.
//
// # Packages
//
//   - pkg/hudu: REST gateway for the Hudu API
//   - pkg/tools: tool registry mapping tool calls onto the gateway
//   - pkg/server: JSON-RPC dispatcher, resource provider and HTTP handler
//   - pkg/transport: stdio and HTTP transports
//   - pkg/protocol: JSON-RPC and MCP wire types
//   - pkg/errors: error codes, categories and JSON-RPC conversion
//   - pkg/config: environment configuration
//   - pkg/logging: structured logger
//   - pkg/observability: Prometheus metrics and OpenTelemetry tracing
//   - pkg/pagination: page bounds for list tools
//
// # Running
//
// The hudu-mcp command reads its configuration from the environment:
//
//	HUDU_BASE_URL=https://docs.example.com HUDU_API_KEY=... hudu-mcp
//
// With no port configured it serves stdio. Setting MCP_SERVER_PORT or passing
// --transport http selects HTTP, and so does MCP_ENVIRONMENT=production:
//
//	hudu-mcp --transport http --port 3000
//
// # Embedding
//
// The dispatcher can be wired by hand:
//
//	client, err := hudu.NewClient(hudu.Config{BaseURL: baseURL, APIKey: key})
//	if err != nil {
//		return err
//	}
//	registry, err := tools.NewRegistry(client)
//	if err != nil {
//		return err
//	}
//	srv := server.New(
//		server.WithToolsProvider(registry),
//		server.WithResourcesProvider(server.NewResourceProvider(client, nil)),
//	)
//	return transport.NewStdioTransport(nil, nil, srv).Run(ctx)
package hudumcp
