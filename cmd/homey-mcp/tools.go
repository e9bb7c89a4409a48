package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/comigor/homey-mcp/pkg/tools"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(tools.NewCatalog().List())
		},
	}
}
