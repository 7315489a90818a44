// Package server implements the protocol side of the Hudu MCP server.
//
// Server is the dispatcher: it validates JSON-RPC envelopes, routes the
// supported methods to a ToolsProvider and a ResourcesProvider and builds
// the response envelopes. Notifications (envelopes without an id) are
// processed but never answered.
//
// ResourceProvider maps hudu://<kind>/list and hudu://<kind>/<id> URIs onto
// the Hudu API. HTTPHandler exposes the dispatcher over HTTP together with
// the discovery, health and keep-alive documents and an SSE keep-alive stream.
//
//	registry, err := tools.NewRegistry(client)
//	if err != nil {
//	    return err
//	}
//	srv := server.New(
//	    server.WithToolsProvider(registry),
//	    server.WithResourcesProvider(server.NewResourceProvider(client, logger)),
//	    server.WithLogger(logger),
//	)
//	http.ListenAndServe(":3000", server.NewHTTPHandler(srv))
package server
