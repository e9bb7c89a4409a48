package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "homey-mcp",
	Short: "Expose a Homey smart-home hub as MCP tools",
	Long: `homey-mcp speaks the Model Context Protocol over stdio and lets an
assistant list and control Homey devices, zones and flows through the
hub's local Web API. Credentials come from HOMEY_API_TOKEN and HOMEY_LOCAL_IP.`,
	// Errors are already logged by the subcommands.
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(`{{printf "homey-mcp version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newToolsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newVersionCmd())
}
