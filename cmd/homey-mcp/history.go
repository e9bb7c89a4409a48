package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/comigor/homey-mcp/internal/config"
	"github.com/comigor/homey-mcp/internal/history"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recent tool calls from the journal",
		Long: `Reads the tool-call journal configured by HISTORY_DB_PATH (or
history.db_path in config.yaml) and prints the newest entries as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.History.DBPath == "" {
				return errors.New("history is disabled: set HISTORY_DB_PATH")
			}

			journal, err := history.Open(cfg.History.DBPath)
			if err != nil {
				return err
			}
			defer journal.Close()

			entries, err := journal.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []history.Entry{}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries, 0 for all")
	return cmd
}
