package main

import (
	repmcp "github.com/claude/repcoach/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var mcpServerURL string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve MCP over stdio, backed by a remote RepCoach server",
	Long: `Runs an MCP server on stdin/stdout for desktop assistants. Every tool call
is forwarded to the RepCoach REST API at --server, typically reached over
Tailscale.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := repmcp.NewHTTPClient(mcpServerURL)
		s := repmcp.New(client.Backends(), Version, newLogger())
		return server.ServeStdio(s)
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpServerURL, "server", "http://repcoach", "base URL of the RepCoach server")
}
