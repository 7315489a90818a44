// Command hudu-mcp exposes a Hudu instance as MCP tools and resources over
// stdio or HTTP.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand(os.Getenv).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hudu-mcp:", err)
		os.Exit(1)
	}
}
