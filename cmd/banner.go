package cmd

import (
	"net"

	"github.com/sfbilling/sfbilling/pkg/types"
	"github.com/spf13/cobra"
)

const asciiArt = `
        __ _     _ _ _ _
  ___  / _| |__ (_) | (_)_ __   __ _
 / __|| |_| '_ \| | | | | '_ \ / _' |
 \__ \|  _| |_) | | | | | | | | (_| |
 |___/|_| |_.__/|_|_|_|_|_| |_|\__, |
                               |___/
`

// printBanner prints the startup banner with the server's endpoints and tools.
func printBanner(cmd *cobra.Command, addr string, kind recordStoreKind, tools []types.ToolDefinition) {
	base := "http://" + addr
	if host, port, err := net.SplitHostPort(addr); err == nil && host == "" {
		base = "http://" + net.JoinHostPort("localhost", port)
	}

	cmd.Print(asciiArt)
	cmd.Printf("sfbilling server listening on %s (record store: %s)\n", addr, kind)
	cmd.Printf("Health check:   %s/health\n", base)
	cmd.Printf("Tools endpoint: %s/api/tools\n", base)
	cmd.Printf("MCP endpoint:   %s/mcp\n\n", base)

	cmd.Println("Available tools:")
	for _, t := range tools {
		cmd.Printf("  - %s: %s\n", t.Name, t.Description)
	}
	cmd.Println()
}
